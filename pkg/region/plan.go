package region

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// Declaration is one statically allocated object: a table, buffer or block
// of state, tagged with its category.
type Declaration struct {
	Name     string
	Category string
	Size     int
}

// Assignment is the placement of one declaration.
type Assignment struct {
	Declaration

	Region string
	Offset int

	// Placed is Size rounded up to the region's alignment.
	Placed int

	// Demoted is set when the preferred region was full and the
	// declaration fell back to primary memory. Preferred names the region
	// it was turned away from.
	Demoted   bool
	Preferred string
}

// Overflow describes a region whose aggregate exceeds its capacity.
type Overflow struct {
	Region   string
	Capacity int
	Required int
}

// CapacityError lists every region that overflowed during Plan.
type CapacityError struct {
	Overflows []Overflow
}

func (e *CapacityError) Error() string {
	parts := make([]string, len(e.Overflows))
	for i, o := range e.Overflows {
		parts[i] = fmt.Sprintf("%s needs %d of %d bytes (+%d)", o.Region, o.Required, o.Capacity, o.Required-o.Capacity)
	}
	return reserr.ErrCapacityExceeded.Error() + ": " + strings.Join(parts, "; ")
}

func (e *CapacityError) Unwrap() error {
	return reserr.ErrCapacityExceeded
}

// Layout is the immutable outcome of a successful Plan.
type Layout struct {
	registry    *Registry
	assignments []Assignment
	byName      map[string]int
	usage       map[string]int
}

// Plan places every declaration and checks region capacities. It is the
// build-time validation pass: any overflow or attribute violation fails the
// whole plan and no layout is returned.
//
// Declarations are placed in order. A declaration whose category only
// prefers persistence is demoted to primary memory when its region cannot
// take it; everything else stays where the policy put it, so an overflow is
// reported rather than silently relocated.
func (p *Policy) Plan(decls []Declaration) (*Layout, error) {
	layout := &Layout{
		registry:    p.registry,
		assignments: make([]Assignment, 0, len(decls)),
		byName:      make(map[string]int, len(decls)),
		usage:       make(map[string]int),
	}
	primary := p.registry.Primary()

	for _, d := range decls {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: declaration without a name", reserr.ErrPlacementViolation)
		}
		if d.Size < 0 {
			return nil, fmt.Errorf("%w: declaration %q has negative size %d", reserr.ErrPlacementViolation, d.Name, d.Size)
		}
		if _, dup := layout.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate declaration %q", reserr.ErrPlacementViolation, d.Name)
		}

		c := p.Category(d.Category)
		r, err := p.place(c)
		if err != nil {
			return nil, fmt.Errorf("declaration %q: %w", d.Name, err)
		}

		a := Assignment{Declaration: d}
		if c.Persistence == PersistencePreferred && !r.Primary &&
			layout.usage[r.Name]+r.alignUp(d.Size) > r.Capacity {
			p.logger.Debug("📉 Demoting declaration to primary memory",
				"declaration", d.Name, "preferred", r.Name, "primary", primary.Name)
			a.Demoted = true
			a.Preferred = r.Name
			r = primary
		}

		if c.Mutable && r.ReadOnly {
			return nil, fmt.Errorf("%w: mutable %q in read-only region %q", reserr.ErrPlacementViolation, d.Name, r.Name)
		}
		if c.Persistence == PersistenceRequired && !r.Persistent {
			return nil, fmt.Errorf("%w: %q requires persistence but %q is volatile", reserr.ErrPlacementViolation, d.Name, r.Name)
		}

		a.Region = r.Name
		a.Placed = r.alignUp(d.Size)
		a.Offset = layout.usage[r.Name]
		layout.usage[r.Name] += a.Placed

		layout.byName[d.Name] = len(layout.assignments)
		layout.assignments = append(layout.assignments, a)

		p.logger.Trace("📐 Placed declaration",
			"declaration", d.Name, "category", c.Name, "region", r.Name, "offset", a.Offset, "size", a.Placed)
	}

	var overflows []Overflow
	for _, r := range p.registry.regions {
		if used := layout.usage[r.Name]; used > r.Capacity {
			overflows = append(overflows, Overflow{Region: r.Name, Capacity: r.Capacity, Required: used})
		}
	}
	if len(overflows) > 0 {
		err := &CapacityError{Overflows: overflows}
		p.logger.Error("❌ Placement does not fit", "error", err)
		return nil, err
	}

	return layout, nil
}

// Assignments returns every placement in declaration order.
func (l *Layout) Assignments() []Assignment {
	out := make([]Assignment, len(l.assignments))
	copy(out, l.assignments)
	return out
}

// Lookup returns the placement of the named declaration.
func (l *Layout) Lookup(name string) (Assignment, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Assignment{}, false
	}
	return l.assignments[i], true
}

// RegionOf returns the region holding the named declaration.
func (l *Layout) RegionOf(name string) (Region, bool) {
	a, ok := l.Lookup(name)
	if !ok {
		return Region{}, false
	}
	return l.registry.Lookup(a.Region)
}

// Usage returns the bytes placed in a region.
func (l *Layout) Usage(region string) int {
	return l.usage[region]
}

// Free returns the unused bytes of a region.
func (l *Layout) Free(region string) int {
	r, ok := l.registry.Lookup(region)
	if !ok {
		return 0
	}
	return r.Capacity - l.usage[region]
}

// Used returns the bytes placed across every region.
func (l *Layout) Used() int {
	used := 0
	for _, n := range l.usage {
		used += n
	}
	return used
}

// Demotions returns the declarations that fell back to primary memory.
func (l *Layout) Demotions() []Assignment {
	var out []Assignment
	for _, a := range l.assignments {
		if a.Demoted {
			out = append(out, a)
		}
	}
	return out
}

// WriteReport prints a per-region usage summary followed by every
// placement.
func (l *Layout) WriteReport(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "REGION\tATTRS\tUSED\tCAPACITY\tFREE")
	for _, r := range l.registry.regions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", r.Name, attrs(r), l.usage[r.Name], r.Capacity, r.Capacity-l.usage[r.Name])
	}
	total := l.registry.TotalCapacity()
	fmt.Fprintf(tw, "total\t\t%d\t%d\t%d\n", l.Used(), total, total-l.Used())
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "DECLARATION\tCATEGORY\tREGION\tOFFSET\tSIZE")
	for _, a := range l.assignments {
		region := a.Region
		if a.Demoted {
			region += " (from " + a.Preferred + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t0x%05x\t%d\n", a.Name, a.Category, region, a.Offset, a.Placed)
	}

	return tw.Flush()
}

func attrs(r Region) string {
	s := r.Latency.String()
	if r.ReadOnly {
		s += ",ro"
	} else {
		s += ",rw"
	}
	if r.Persistent {
		s += ",persistent"
	}
	if r.Primary {
		s += ",primary"
	}
	return s
}
