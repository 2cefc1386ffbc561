// Package manifest decodes the TOML and YAML files that configure the
// resource layer, picking the format from the file extension.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a manifest encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatUnknown
}

// Load reads path and decodes it into v. Unknown keys are an error, so a
// misspelt field fails loudly instead of silently keeping its default.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := Decode(data, FormatOf(path), v); err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}
	return nil
}

// Decode decodes data in the given format into v.
func Decode(data []byte, format Format, v any) error {
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}

	return fmt.Errorf("unsupported manifest format (want .toml, .yaml or .yml)")
}

// Find walks up from startDir looking for the first of names and returns
// its path, or "" when none exists.
func Find(startDir string, names ...string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
