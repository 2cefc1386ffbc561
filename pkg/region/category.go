package region

import (
	"fmt"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// Persistence says how strongly a category wants to survive a low-power
// cycle.
type Persistence int

const (
	// PersistenceNone has no preference.
	PersistenceNone Persistence = iota
	// PersistencePreferred asks for a persistent region but may be demoted
	// to primary memory when the persistent region is full.
	PersistencePreferred
	// PersistenceRequired must never be placed in a volatile region.
	PersistenceRequired
)

func (p Persistence) String() string {
	switch p {
	case PersistenceNone:
		return "none"
	case PersistencePreferred:
		return "preferred"
	case PersistenceRequired:
		return "required"
	}
	return "undefined"
}

// ParsePersistence parses "none", "preferred" or "required".
func ParsePersistence(s string) (Persistence, error) {
	switch s {
	case "none", "":
		return PersistenceNone, nil
	case "preferred":
		return PersistencePreferred, nil
	case "required":
		return PersistenceRequired, nil
	}
	return PersistenceNone, fmt.Errorf("%w: unknown persistence %q", reserr.ErrInvalidRegistry, s)
}

// Rule is the region selection strategy of a category.
type Rule int

const (
	// RulePrimary always selects primary working memory.
	RulePrimary Rule = iota
	// RuleBulk selects the largest pool off the primary allocation path.
	RuleBulk
	// RuleWritable selects the largest mutable pool off the primary path.
	RuleWritable
	// RuleSlowPersistent selects the slower persistent pool.
	RuleSlowPersistent
	// RuleFastPersistent selects the faster persistent pool.
	RuleFastPersistent
)

var ruleNames = map[Rule]string{
	RulePrimary:        "primary",
	RuleBulk:           "bulk",
	RuleWritable:       "writable",
	RuleSlowPersistent: "slow-persistent",
	RuleFastPersistent: "fast-persistent",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return "undefined"
}

// ParseRule parses a rule name as printed by Rule.String.
func ParseRule(s string) (Rule, error) {
	if s == "" {
		return RulePrimary, nil
	}
	for rule, name := range ruleNames {
		if name == s {
			return rule, nil
		}
	}
	return RulePrimary, fmt.Errorf("%w: unknown rule %q", reserr.ErrInvalidRegistry, s)
}

// Category describes a kind of data by its access pattern.
type Category struct {
	Name        string
	Mutable     bool
	Persistence Persistence
	Rule        Rule

	// Pin forces a region by name, bypassing Rule. Attribute checks still
	// apply.
	Pin string
}

// Built-in category names.
const (
	StaticTable  = "static-table"
	MutableTable = "mutable-table"
	ColdBuffer   = "cold-buffer"
	HotBuffer    = "hot-buffer"
	HotScalar    = "hot-scalar"
	Default      = "default"
)

// Builtins returns the built-in categories.
func Builtins() []Category {
	return []Category{
		// Large lookup/config tables read in bulk and never written.
		{Name: StaticTable, Rule: RuleBulk},
		// Tables the application rewrites at runtime (state tables, cheats).
		{Name: MutableTable, Mutable: true, Rule: RuleWritable},
		// Rarely touched buffers that must outlive deep sleep.
		{Name: ColdBuffer, Mutable: true, Persistence: PersistenceRequired, Rule: RuleSlowPersistent},
		// Frequently touched small buffers that would like to outlive sleep.
		{Name: HotBuffer, Mutable: true, Persistence: PersistencePreferred, Rule: RuleFastPersistent},
		// Loop state in the hottest code path.
		{Name: HotScalar, Mutable: true, Rule: RulePrimary},
		{Name: Default, Mutable: true, Rule: RulePrimary},
	}
}

// admits reports whether r satisfies the hard attributes of c.
func (c Category) admits(r Region) bool {
	if c.Mutable && r.ReadOnly {
		return false
	}
	if c.Persistence == PersistenceRequired && !r.Persistent {
		return false
	}
	return true
}
