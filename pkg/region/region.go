// Package region catalogs the physical memory pools of the target and decides,
// ahead of time, which pool each piece of static data lives in.
//
// Nothing here moves data at runtime. A Policy maps data categories to
// regions and Plan is the build-time pass that proves every region's
// capacity holds; a failed Plan is the equivalent of a link error.
package region

import (
	"fmt"
	"sort"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// Latency is the access latency class of a region relative to primary
// working memory.
type Latency int

const (
	Fast Latency = iota
	Slow
)

func (l Latency) String() string {
	switch l {
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	}
	return "undefined"
}

// ParseLatency parses "fast" or "slow".
func ParseLatency(s string) (Latency, error) {
	switch s {
	case "fast", "":
		return Fast, nil
	case "slow":
		return Slow, nil
	}
	return Fast, fmt.Errorf("%w: unknown latency %q", reserr.ErrInvalidRegistry, s)
}

// Region is one physical memory pool.
type Region struct {
	Name     string
	Capacity int
	Latency  Latency

	// ReadOnly regions can only hold data that is never written.
	ReadOnly bool

	// Persistent regions keep their contents across a low-power cycle.
	Persistent bool

	// Primary marks the main working memory. Exactly one region is primary.
	Primary bool

	// Align is the access granularity; placed sizes are rounded up to it.
	Align int

	Description string
}

// Mutable reports whether the region accepts writes.
func (r Region) Mutable() bool {
	return !r.ReadOnly
}

func (r Region) alignment() int {
	if r.Align <= 0 {
		return 1
	}
	return r.Align
}

// alignUp rounds n up to the region's access granularity.
func (r Region) alignUp(n int) int {
	a := r.alignment()
	return (n + a - 1) / a * a
}

func (r Region) String() string {
	return fmt.Sprintf("%s(%d bytes,%s)", r.Name, r.Capacity, attrs(r))
}

// Registry is an immutable catalog of regions.
type Registry struct {
	regions []Region
	byName  map[string]int
	primary int
}

// NewRegistry validates and freezes a set of regions.
func NewRegistry(regions ...Region) (*Registry, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", reserr.ErrInvalidRegistry)
	}

	reg := &Registry{
		regions: make([]Region, len(regions)),
		byName:  make(map[string]int, len(regions)),
		primary: -1,
	}
	copy(reg.regions, regions)

	for i, r := range reg.regions {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: region %d has no name", reserr.ErrInvalidRegistry, i)
		}
		if _, dup := reg.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", reserr.ErrInvalidRegistry, r.Name)
		}
		if r.Capacity <= 0 {
			return nil, fmt.Errorf("%w: region %q has capacity %d", reserr.ErrInvalidRegistry, r.Name, r.Capacity)
		}
		if r.Primary {
			if reg.primary >= 0 {
				return nil, fmt.Errorf("%w: regions %q and %q are both primary",
					reserr.ErrInvalidRegistry, reg.regions[reg.primary].Name, r.Name)
			}
			if r.ReadOnly {
				return nil, fmt.Errorf("%w: primary region %q is read-only", reserr.ErrInvalidRegistry, r.Name)
			}
			reg.primary = i
		}
		reg.byName[r.Name] = i
	}

	if reg.primary < 0 {
		return nil, fmt.Errorf("%w: no primary region", reserr.ErrInvalidRegistry)
	}

	return reg, nil
}

// MustRegistry is NewRegistry for catalogs known to be valid.
func MustRegistry(regions ...Region) *Registry {
	reg, err := NewRegistry(regions...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Regions returns the catalog in declaration order.
func (reg *Registry) Regions() []Region {
	out := make([]Region, len(reg.regions))
	copy(out, reg.regions)
	return out
}

// Lookup returns the named region.
func (reg *Registry) Lookup(name string) (Region, bool) {
	i, ok := reg.byName[name]
	if !ok {
		return Region{}, false
	}
	return reg.regions[i], true
}

// Primary returns the primary working-memory region.
func (reg *Registry) Primary() Region {
	return reg.regions[reg.primary]
}

// TotalCapacity sums the capacity of every region.
func (reg *Registry) TotalCapacity() int {
	total := 0
	for _, r := range reg.regions {
		total += r.Capacity
	}
	return total
}

// filter returns the regions matching keep, ordered by less.
func (reg *Registry) filter(keep func(Region) bool, less func(a, b Region) bool) []Region {
	var out []Region
	for _, r := range reg.regions {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
