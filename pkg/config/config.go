// Package config holds the resource layer's runtime settings.
//
// Settings come from defaults, then a TOML or YAML file, then XIPRES_*
// environment variables, then command-line flags. Each layer only overrides
// what it sets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/xipres/internal/manifest"
	"github.com/provide-io/xipres/pkg/checksum"
	"github.com/provide-io/xipres/pkg/logging"
	"github.com/provide-io/xipres/pkg/partition"
	"github.com/provide-io/xipres/pkg/xipfs"
)

// Environment variables
const (
	EnvImage            = "XIPRES_IMAGE"
	EnvTableOffset      = "XIPRES_TABLE_OFFSET"
	EnvPartitionType    = "XIPRES_PARTITION_TYPE"
	EnvPartitionSubType = "XIPRES_PARTITION_SUBTYPE"
	EnvPartitionLabel   = "XIPRES_PARTITION_LABEL"
	EnvLength           = "XIPRES_LENGTH"
	EnvMagic            = "XIPRES_MAGIC"
	EnvLogicalName      = "XIPRES_LOGICAL_NAME"
	EnvChecksum         = "XIPRES_EXPECTED_CHECKSUM"
	EnvConfigDir        = "XIPRES_CONFIG_DIR"
)

// DefaultLogicalName is the file name the engine asks for.
const DefaultLogicalName = "doom1.wad"

// FileNames are the config file names Discover looks for.
var FileNames = []string{"xipres.toml", "xipres.yaml", "xipres.yml"}

// Config is the full set of settings.
type Config struct {
	// Image is the flash image path on a host build.
	Image string `toml:"image" yaml:"image"`

	TableOffset uint32    `toml:"table_offset" yaml:"table_offset"`
	Partition   Partition `toml:"partition" yaml:"partition"`

	// Length limits the mapped blob; 0 maps the whole partition.
	Length uint32 `toml:"length" yaml:"length"`

	Magic       string `toml:"magic" yaml:"magic"`
	LogicalName string `toml:"logical_name" yaml:"logical_name"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`

	// ExpectedChecksum, when set, must match the mapped blob.
	ExpectedChecksum string `toml:"expected_checksum" yaml:"expected_checksum"`
}

// Partition selects the asset partition. A non-empty Label wins over the
// type pair.
type Partition struct {
	Type    uint8  `toml:"type" yaml:"type"`
	SubType uint8  `toml:"subtype" yaml:"subtype"`
	Label   string `toml:"label" yaml:"label"`
}

// Default returns the settings of the stock build.
func Default() Config {
	return Config{
		TableOffset: partition.DefaultTableOffset,
		Partition: Partition{
			Type:    uint8(partition.TypeAsset),
			SubType: uint8(partition.SubTypeAsset),
		},
		Magic:       xipfs.DefaultMagic,
		LogicalName: DefaultLogicalName,
		LogLevel:    logging.GetLogLevel(),
	}
}

// Load returns Default overlaid with the file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := manifest.Load(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from XIPRES_* variables read through getenv
// (os.Getenv when nil).
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvImage, &c.Image},
		{EnvPartitionLabel, &c.Partition.Label},
		{EnvMagic, &c.Magic},
		{EnvLogicalName, &c.LogicalName},
		{logging.EnvLogLevel, &c.LogLevel},
		{EnvChecksum, &c.ExpectedChecksum},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	u32s := []struct {
		key string
		dst *uint32
	}{
		{EnvTableOffset, &c.TableOffset},
		{EnvLength, &c.Length},
	}
	for _, u := range u32s {
		if v := getenv(u.key); v != "" {
			n, err := strconv.ParseUint(v, 0, 32)
			if err != nil {
				return fmt.Errorf("%s: %w", u.key, err)
			}
			*u.dst = uint32(n)
		}
	}

	u8s := []struct {
		key string
		dst *uint8
	}{
		{EnvPartitionType, &c.Partition.Type},
		{EnvPartitionSubType, &c.Partition.SubType},
	}
	for _, u := range u8s {
		if v := getenv(u.key); v != "" {
			n, err := strconv.ParseUint(v, 0, 8)
			if err != nil {
				return fmt.Errorf("%s: %w", u.key, err)
			}
			*u.dst = uint8(n)
		}
	}

	return nil
}

// Validate rejects settings the resource layer cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.TableOffset%partition.DataAlignment != 0 {
		problems = append(problems, fmt.Sprintf("table_offset 0x%x is not 0x%x aligned", c.TableOffset, partition.DataAlignment))
	}
	if len(c.Magic) != 4 {
		problems = append(problems, fmt.Sprintf("magic %q must be 4 bytes", c.Magic))
	}

	name := strings.TrimPrefix(c.LogicalName, "/")
	if name == "" || strings.Contains(name, "/") {
		problems = append(problems, fmt.Sprintf("logical_name %q must be a plain file name", c.LogicalName))
	}
	if len(c.Partition.Label) > partition.LabelSize {
		problems = append(problems, fmt.Sprintf("partition label %q longer than %d bytes", c.Partition.Label, partition.LabelSize))
	}

	level := strings.TrimPrefix(strings.TrimPrefix(c.LogLevel, "json"), ":")
	if level != "" && hclog.LevelFromString(level) == hclog.NoLevel {
		problems = append(problems, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}

	if c.ExpectedChecksum != "" {
		if _, _, err := checksum.Parse(c.ExpectedChecksum); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Dir returns the per-user config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", "xipres")
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "xipres")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "xipres")
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "xipres")
		}
	}

	return filepath.Join(os.TempDir(), "xipres")
}

// Discover finds a config file at or above startDir, then in Dir. It
// returns "" when there is none.
func Discover(startDir string) (string, error) {
	path, err := manifest.Find(startDir, FileNames...)
	if err != nil || path != "" {
		return path, err
	}

	for _, name := range FileNames {
		candidate := filepath.Join(Dir(), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}
