package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxmesh/export"
	"github.com/voxelsplace/voxmesh/mesh"
)

func TestDecode_TOML(t *testing.T) {
	opts, err := Decode([]byte("cell_size = 0.5\npadding = 2\n"), ".toml")
	require.NoError(t, err)
	assert.Equal(t, mesh.Options{CellSize: 0.5, Padding: 2, CellPixels: 1}, opts)
}

func TestDecode_YAML(t *testing.T) {
	opts, err := Decode([]byte("center_origin: true\ncell_pixels: 4\n"), ".YML")
	require.NoError(t, err)
	assert.Equal(t, mesh.Options{CellSize: 1, CenterOrigin: true, CellPixels: 4}, opts)

	opts, err = Decode(nil, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, mesh.DefaultOptions(), opts)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("cell_size = -1\n"), ".toml")
	assert.ErrorIs(t, err, mesh.ErrInvalidOptions)

	_, err = Decode([]byte("scale = 2\n"), ".toml")
	assert.Error(t, err)

	_, err = Decode([]byte("scale: 2\n"), ".yaml")
	assert.Error(t, err)

	_, err = Decode([]byte("{}"), ".json")
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	want := mesh.Options{CellSize: 0.25, Padding: 1, CenterOrigin: true, CellPixels: 3}
	for _, name := range []string{"opts.toml", "opts.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Save(path, want))
		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, os.IsNotExist(err))
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.toml")
	assert.ErrorIs(t, Save(path, mesh.Options{CellSize: 0, CellPixels: 1}), mesh.ErrInvalidOptions)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	err = Save(filepath.Join(dir, "missing", "opts.yaml"), mesh.DefaultOptions())
	assert.ErrorIs(t, err, export.ErrIO)
}
