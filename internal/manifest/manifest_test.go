package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string   `toml:"name" yaml:"name"`
	Size    int      `toml:"size" yaml:"size"`
	Regions []string `toml:"regions" yaml:"regions"`
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatOf("xipres.toml"))
	assert.Equal(t, FormatYAML, FormatOf("a/b/xipres.YAML"))
	assert.Equal(t, FormatYAML, FormatOf("x.yml"))
	assert.Equal(t, FormatUnknown, FormatOf("x.json"))
	assert.Equal(t, "toml", FormatTOML.String())
}

func TestLoadBothFormats(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"m.toml": "name = \"wad\"\nsize = 1296860\nregions = [\"dram\", \"iram\"]\n",
		"m.yaml": "name: wad\nsize: 1296860\nregions: [dram, iram]\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			var s sample
			require.NoError(t, Load(path, &s))
			assert.Equal(t, sample{Name: "wad", Size: 1296860, Regions: []string{"dram", "iram"}}, s)
		})
	}
}

func TestUnknownKeysFail(t *testing.T) {
	var s sample
	err := Decode([]byte("name = \"wad\"\nsiez = 3\n"), FormatTOML, &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "siez")

	err = Decode([]byte("name: wad\nsiez: 3\n"), FormatYAML, &s)
	require.Error(t, err)
}

func TestEmptyYAML(t *testing.T) {
	var s sample
	require.NoError(t, Decode(nil, FormatYAML, &s))
	assert.Equal(t, sample{}, s)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	var s sample

	assert.Error(t, Load(filepath.Join(dir, "missing.toml"), &s))

	path := filepath.Join(dir, "m.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	assert.Error(t, Load(path, &s))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("name = "), 0o644))
	assert.Error(t, Load(bad, &s))
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "xipres.yaml"), nil, 0o644))

	path, err := Find(nested, "xipres.toml", "xipres.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "xipres.yaml"), path)
}
