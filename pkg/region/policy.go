package region

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/logging"
)

// Policy maps categories to regions of one registry.
type Policy struct {
	registry   *Registry
	categories map[string]Category
	logger     hclog.Logger
}

// NewPolicy builds a policy over reg with the built-in categories plus
// extra. An extra category with a built-in name replaces the built-in.
func NewPolicy(reg *Registry, extra ...Category) (*Policy, error) {
	return NewPolicyWithLogger(reg, nil, extra...)
}

// NewPolicyWithLogger is NewPolicy with a custom logger.
func NewPolicyWithLogger(reg *Registry, logger hclog.Logger, extra ...Category) (*Policy, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", reserr.ErrInvalidRegistry)
	}

	p := &Policy{
		registry:   reg,
		categories: make(map[string]Category),
		logger:     logging.OrNull(logger),
	}
	for _, c := range Builtins() {
		p.categories[c.Name] = c
	}
	for _, c := range extra {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: category without a name", reserr.ErrInvalidRegistry)
		}
		if c.Pin != "" {
			if _, ok := reg.Lookup(c.Pin); !ok {
				return nil, fmt.Errorf("%w: category %q pinned to unknown region %q",
					reserr.ErrInvalidRegistry, c.Name, c.Pin)
			}
		}
		p.categories[c.Name] = c
	}

	return p, nil
}

// Registry returns the registry the policy places into.
func (p *Policy) Registry() *Registry {
	return p.registry
}

// Category returns the named category. Unknown names resolve to Default.
func (p *Policy) Category(name string) Category {
	if c, ok := p.categories[name]; ok {
		return c
	}
	return p.categories[Default]
}

// Place returns the region data of the named category must occupy,
// ignoring capacity. Capacity is only enforced by Plan.
func (p *Policy) Place(category string) (Region, error) {
	return p.place(p.Category(category))
}

func (p *Policy) place(c Category) (Region, error) {
	if c.Pin != "" {
		r, _ := p.registry.Lookup(c.Pin)
		if !c.admits(r) {
			return Region{}, fmt.Errorf("%w: category %q pinned to %s", reserr.ErrPlacementViolation, c.Name, r)
		}
		return r, nil
	}

	var candidates []Region
	switch c.Rule {
	case RuleBulk:
		candidates = p.registry.filter(
			func(r Region) bool { return c.admits(r) && !r.Primary },
			byOrder(largestFirst, fastFirst),
		)
	case RuleWritable:
		candidates = p.registry.filter(
			func(r Region) bool { return c.admits(r) && !r.Primary && r.Mutable() },
			byOrder(volatileFirst, largestFirst),
		)
	case RuleSlowPersistent:
		candidates = p.registry.filter(
			func(r Region) bool { return c.admits(r) && !r.Primary && r.Persistent },
			byOrder(slowFirst, mutableFirst, largestFirst),
		)
	case RuleFastPersistent:
		candidates = p.registry.filter(
			func(r Region) bool { return c.admits(r) && !r.Primary && r.Persistent },
			byOrder(fastFirst, mutableFirst, largestFirst),
		)
	}

	if len(candidates) > 0 {
		return candidates[0], nil
	}

	primary := p.registry.Primary()
	if !c.admits(primary) {
		return Region{}, fmt.Errorf("%w: no region satisfies category %q", reserr.ErrPlacementViolation, c.Name)
	}
	return primary, nil
}

// Orderings used by the rules. Each returns -1, 0 or 1.
type ordering func(a, b Region) int

func byOrder(orders ...ordering) func(a, b Region) bool {
	return func(a, b Region) bool {
		for _, o := range orders {
			if c := o(a, b); c != 0 {
				return c < 0
			}
		}
		return false
	}
}

func largestFirst(a, b Region) int {
	switch {
	case a.Capacity > b.Capacity:
		return -1
	case a.Capacity < b.Capacity:
		return 1
	}
	return 0
}

func fastFirst(a, b Region) int {
	return preferTrue(a.Latency == Fast, b.Latency == Fast)
}

func slowFirst(a, b Region) int {
	return preferTrue(a.Latency == Slow, b.Latency == Slow)
}

func volatileFirst(a, b Region) int {
	return preferTrue(!a.Persistent, !b.Persistent)
}

func mutableFirst(a, b Region) int {
	return preferTrue(a.Mutable(), b.Mutable())
}

func preferTrue(a, b bool) int {
	switch {
	case a && !b:
		return -1
	case b && !a:
		return 1
	}
	return 0
}
