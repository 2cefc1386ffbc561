package region

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Manifest is the declarative placement table: an optional region catalog,
// extra categories, and the declarations to place. It decodes from TOML or
// YAML.
type Manifest struct {
	// Target selects a built-in catalog when Regions is empty. Only
	// "esp32" is known.
	Target string `toml:"target" yaml:"target"`

	Regions      []RegionSpec      `toml:"region" yaml:"regions"`
	Categories   []CategorySpec    `toml:"category" yaml:"categories"`
	Declarations []DeclarationSpec `toml:"declaration" yaml:"declarations"`
}

// RegionSpec is a region as written in a manifest.
type RegionSpec struct {
	Name        string `toml:"name" yaml:"name"`
	Capacity    int    `toml:"capacity" yaml:"capacity"`
	Latency     string `toml:"latency" yaml:"latency"`
	ReadOnly    bool   `toml:"read_only" yaml:"read_only"`
	Persistent  bool   `toml:"persistent" yaml:"persistent"`
	Primary     bool   `toml:"primary" yaml:"primary"`
	Align       int    `toml:"align" yaml:"align"`
	Description string `toml:"description" yaml:"description"`
}

// CategorySpec is a category as written in a manifest.
type CategorySpec struct {
	Name        string `toml:"name" yaml:"name"`
	Mutable     bool   `toml:"mutable" yaml:"mutable"`
	Persistence string `toml:"persistence" yaml:"persistence"`
	Rule        string `toml:"rule" yaml:"rule"`
	Pin         string `toml:"pin" yaml:"pin"`
}

// DeclarationSpec is a declaration as written in a manifest.
type DeclarationSpec struct {
	Name     string `toml:"name" yaml:"name"`
	Category string `toml:"category" yaml:"category"`
	Size     int    `toml:"size" yaml:"size"`
}

// Policy builds the registry and policy the manifest describes.
func (m *Manifest) Policy(logger hclog.Logger) (*Policy, error) {
	reg, err := m.registry()
	if err != nil {
		return nil, err
	}

	extra := make([]Category, 0, len(m.Categories))
	for _, spec := range m.Categories {
		persistence, err := ParsePersistence(spec.Persistence)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", spec.Name, err)
		}
		rule, err := ParseRule(spec.Rule)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", spec.Name, err)
		}
		extra = append(extra, Category{
			Name:        spec.Name,
			Mutable:     spec.Mutable,
			Persistence: persistence,
			Rule:        rule,
			Pin:         spec.Pin,
		})
	}

	return NewPolicyWithLogger(reg, logger, extra...)
}

// DeclarationList returns the manifest's declarations.
func (m *Manifest) DeclarationList() []Declaration {
	out := make([]Declaration, len(m.Declarations))
	for i, d := range m.Declarations {
		out[i] = Declaration{Name: d.Name, Category: d.Category, Size: d.Size}
	}
	return out
}

func (m *Manifest) registry() (*Registry, error) {
	if len(m.Regions) == 0 {
		switch m.Target {
		case "", "esp32":
			return ESP32(), nil
		default:
			return nil, fmt.Errorf("unknown target %q", m.Target)
		}
	}

	regions := make([]Region, 0, len(m.Regions))
	for _, spec := range m.Regions {
		latency, err := ParseLatency(spec.Latency)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", spec.Name, err)
		}
		regions = append(regions, Region{
			Name:        spec.Name,
			Capacity:    spec.Capacity,
			Latency:     latency,
			ReadOnly:    spec.ReadOnly,
			Persistent:  spec.Persistent,
			Primary:     spec.Primary,
			Align:       spec.Align,
			Description: spec.Description,
		})
	}
	return NewRegistry(regions...)
}
