// Package image lays out flash images: a partition table plus the contents
// of each partition, ready to be written to the chip or mapped on a host.
package image

import (
	"fmt"
	"path/filepath"

	"github.com/provide-io/xipres/internal/manifest"
	"github.com/provide-io/xipres/pkg/partition"
)

// DefaultFlashSize is the size of the common 4 MiB module.
const DefaultFlashSize = 4 << 20

// Manifest describes an image to build.
//
// Partitions are written at their declared offsets. Sources are read
// relative to Dir, decoded through their operations chain, and must fit
// their partition. Unused flash is left erased (0xFF).
type Manifest struct {
	FlashSize   uint32          `toml:"flash_size" yaml:"flash_size"`
	TableOffset uint32          `toml:"table_offset" yaml:"table_offset"`
	NoChecksum  bool            `toml:"no_md5" yaml:"no_md5"`
	Partitions  []PartitionSpec `toml:"partition" yaml:"partitions"`

	// Dir resolves relative sources (set at load time).
	Dir string `toml:"-" yaml:"-"`
}

// PartitionSpec is one partition as written in a manifest.
type PartitionSpec struct {
	Label     string `toml:"label" yaml:"label"`
	Type      string `toml:"type" yaml:"type"`
	SubType   string `toml:"subtype" yaml:"subtype"`
	Offset    uint32 `toml:"offset" yaml:"offset"`
	Size      uint32 `toml:"size" yaml:"size"`
	ReadOnly  bool   `toml:"read_only" yaml:"read_only"`
	Encrypted bool   `toml:"encrypted" yaml:"encrypted"`

	// Source is the file written into the partition, if any.
	Source string `toml:"source" yaml:"source"`

	// Operations is the chain the source is stored with ("gzip", "bzip2",
	// "raw"). Empty infers it from the source's extension.
	Operations string `toml:"operations" yaml:"operations"`

	// Magic, when set, must prefix the decoded source.
	Magic string `toml:"magic" yaml:"magic"`
}

// LoadManifest reads a TOML or YAML image manifest.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if err := manifest.Load(path, &m); err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	m.Dir = dir
	m.defaults()
	return &m, nil
}

// DefaultManifest is the stock layout of the port: NVS, PHY calibration,
// a 2 MiB factory app and the WAD from 0x210000 to the end of flash.
func DefaultManifest(wadPath string) *Manifest {
	m := &Manifest{
		Partitions: []PartitionSpec{
			{Label: "nvs", Type: "data", SubType: "nvs", Offset: 0x9000, Size: 0x6000},
			{Label: "phy_init", Type: "data", SubType: "phy", Offset: 0xf000, Size: 0x1000},
			{Label: "factory", Type: "app", SubType: "factory", Offset: 0x10000, Size: 0x200000},
			{
				Label:    "wad",
				Type:     "asset",
				SubType:  "wad",
				Offset:   partition.DefaultAssetOffset,
				Size:     DefaultFlashSize - partition.DefaultAssetOffset,
				ReadOnly: true,
				Source:   wadPath,
				Magic:    "IWAD",
			},
		},
	}
	m.defaults()
	return m
}

func (m *Manifest) defaults() {
	if m.FlashSize == 0 {
		m.FlashSize = DefaultFlashSize
	}
	if m.TableOffset == 0 {
		m.TableOffset = partition.DefaultTableOffset
	}
}

func (m *Manifest) table() (*partition.Table, error) {
	t := &partition.Table{Checksummed: !m.NoChecksum}

	for _, spec := range m.Partitions {
		typ, err := partition.ParseType(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("partition %q: %w", spec.Label, err)
		}
		sub, err := partition.ParseSubType(typ, spec.SubType)
		if err != nil {
			return nil, fmt.Errorf("partition %q: %w", spec.Label, err)
		}

		var flags uint32
		if spec.ReadOnly {
			flags |= partition.FlagReadOnly
		}
		if spec.Encrypted {
			flags |= partition.FlagEncrypted
		}

		t.Entries = append(t.Entries, partition.Entry{
			Type:    typ,
			SubType: sub,
			Offset:  spec.Offset,
			Size:    spec.Size,
			Label:   spec.Label,
			Flags:   flags,
		})
	}
	return t, nil
}
