package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	t.Setenv("XIPRES_LOG_LEVEL", "")
	cfg := Default()

	assert.Equal(t, uint32(0x8000), cfg.TableOffset)
	assert.Equal(t, uint8(0x42), cfg.Partition.Type)
	assert.Equal(t, uint8(0x06), cfg.Partition.SubType)
	assert.Equal(t, "IWAD", cfg.Magic)
	assert.Equal(t, "doom1.wad", cfg.LogicalName)
	assert.Equal(t, "warn", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"xipres.toml": `
image = "build/flash.bin"
table_offset = 0x9000
length = 1296860
expected_checksum = "adler32:deadbeef"

[partition]
label = "wad"
`,
		"xipres.yaml": `
image: build/flash.bin
table_offset: 0x9000
length: 1296860
expected_checksum: "adler32:deadbeef"
partition:
  label: wad
`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "build/flash.bin", cfg.Image)
			assert.Equal(t, uint32(0x9000), cfg.TableOffset)
			assert.Equal(t, uint32(1296860), cfg.Length)
			assert.Equal(t, "wad", cfg.Partition.Label)

			// untouched fields keep their defaults
			assert.Equal(t, uint8(0x42), cfg.Partition.Type)
			assert.Equal(t, "IWAD", cfg.Magic)
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xipres.toml")
	require.NoError(t, os.WriteFile(path, []byte("imagee = \"x\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvImage:            "/tmp/flash.bin",
		EnvTableOffset:      "0x10000",
		EnvPartitionType:    "0x40",
		EnvPartitionSubType: "1",
		EnvLength:           "4096",
		EnvMagic:            "PWAD",
		EnvLogicalName:      "/freedoom1.wad",
		"XIPRES_LOG_LEVEL":  "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/flash.bin", cfg.Image)
	assert.Equal(t, uint32(0x10000), cfg.TableOffset)
	assert.Equal(t, uint8(0x40), cfg.Partition.Type)
	assert.Equal(t, uint8(1), cfg.Partition.SubType)
	assert.Equal(t, uint32(4096), cfg.Length)
	assert.Equal(t, "PWAD", cfg.Magic)
	assert.Equal(t, "/freedoom1.wad", cfg.LogicalName)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvBadNumbers(t *testing.T) {
	for key, value := range map[string]string{
		EnvTableOffset:   "lots",
		EnvPartitionType: "0x100",
		EnvLength:        "-1",
	} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(envMap(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{name: "unaligned table", mutate: func(c *Config) { c.TableOffset = 0x8100 }, message: "table_offset"},
		{name: "short magic", mutate: func(c *Config) { c.Magic = "WAD" }, message: "magic"},
		{name: "empty name", mutate: func(c *Config) { c.LogicalName = "/" }, message: "logical_name"},
		{name: "nested name", mutate: func(c *Config) { c.LogicalName = "wads/doom1.wad" }, message: "logical_name"},
		{name: "long label", mutate: func(c *Config) { c.Partition.Label = "a-very-long-partition" }, message: "label"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, message: "log_level"},
		{name: "bad checksum", mutate: func(c *Config) { c.ExpectedChecksum = "crc:00" }, message: "checksum"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	cfg := Default()
	cfg.LogLevel = "json:trace"
	assert.NoError(t, cfg.Validate())
}

func TestDiscover(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	root := t.TempDir()
	nested := filepath.Join(root, "firmware", "build")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "xipres.toml"), nil, 0o644))

	path, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "xipres.toml"), path)
}

func TestDiscoverFallsBackToConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xipres.yaml"), nil, 0o644))

	path, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "xipres.yaml"), path)
	assert.Equal(t, dir, Dir())
}
