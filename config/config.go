// Package config reads conversion options files.
//
// Files are TOML (.toml) or YAML (.yaml, .yml). Keys left out of a file keep
// their default value.
//
//	cell_size = 0.5
//	padding = 1
//	center_origin = true
//	cell_pixels = 4
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/voxmesh/export"
	"github.com/voxelsplace/voxmesh/mesh"
)

// Load reads the options file at path on top of mesh.DefaultOptions.
func Load(path string) (mesh.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mesh.Options{}, err
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses options in the format named by ext and validates them.
func Decode(data []byte, ext string) (mesh.Options, error) {
	opts := mesh.DefaultOptions()
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return mesh.Options{}, fmt.Errorf("toml options: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document leaves the defaults.
		if err := dec.Decode(&opts); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return mesh.Options{}, fmt.Errorf("yaml options: %w", err)
		}
	default:
		return mesh.Options{}, fmt.Errorf("unsupported options file extension %q", ext)
	}
	if err := opts.Validate(); err != nil {
		return mesh.Options{}, err
	}
	return opts, nil
}

// Save writes opts as TOML, or YAML when path ends in .yaml or .yml. The file
// is replaced atomically.
func Save(path string, opts mesh.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(opts)
	default:
		data, err = toml.Marshal(opts)
	}
	if err != nil {
		return err
	}
	return export.WriteFile(path, data)
}
