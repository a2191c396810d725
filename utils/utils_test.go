package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxmesh/export"
	"github.com/voxelsplace/voxmesh/mesh"
	"github.com/voxelsplace/voxmesh/palette"
	"github.com/voxelsplace/voxmesh/vopl"
	"github.com/voxelsplace/voxmesh/vox"
)

func writeVOX(t *testing.T, dir string) string {
	t.Helper()
	vol, err := vox.NewVolume(4, 3, 2)
	require.NoError(t, err)
	for x := 0; x < 4; x++ {
		for z := 0; z < 2; z++ {
			require.NoError(t, vol.Set(x, 0, z, 1))
		}
	}
	require.NoError(t, vol.Set(1, 1, 0, 5))
	data, err := vox.Encode(vol, vox.DefaultPalette())
	require.NoError(t, err)
	path := filepath.Join(dir, "scene.vox")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeVOPL(t *testing.T, dir, name string, fill uint8) string {
	t.Helper()
	g := new(vopl.Grid)
	for x := 0; x < 3; x++ {
		g[0][x][0] = fill
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, vopl.Encode(g), 0o644))
	return path
}

func TestRunVOX2OBJ(t *testing.T) {
	dir := t.TempDir()
	in := writeVOX(t, dir)
	out := filepath.Join(dir, "out", "scene.obj")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))

	require.NoError(t, RunVOX2OBJ(context.Background(), in, out, DefaultSettings()))
	for _, ext := range []string{".obj", ".mtl", ".png"} {
		_, err := os.Stat(export.SiblingPath(out, ext))
		assert.NoError(t, err, ext)
	}
}

func TestRunVOX2STL(t *testing.T) {
	dir := t.TempDir()
	in := writeVOX(t, dir)
	out := filepath.Join(dir, "scene.stl")

	require.NoError(t, RunVOX2STL(context.Background(), in, out, false, DefaultSettings()))
	bin, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(bin, []byte("solid")))

	require.NoError(t, RunVOX2STL(context.Background(), in, out, true, DefaultSettings()))
	ascii, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(ascii, []byte("solid scene\n")))
}

func TestRunVOX2GLB(t *testing.T) {
	dir := t.TempDir()
	in := writeVOX(t, dir)
	out := filepath.Join(dir, "scene.glb")
	require.NoError(t, RunVOX2GLB(context.Background(), in, out, DefaultSettings()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "glTF", string(data[:4]))
}

func TestRunVOX2OBJ_PaletteOverride(t *testing.T) {
	dir := t.TempDir()
	in := writeVOX(t, dir)

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < 256; i++ {
		img.SetNRGBA(i%16, i/16, color.NRGBA{R: uint8(i), G: 10, B: 20, A: 255})
	}
	palPath := filepath.Join(dir, "palette.png")
	f, err := os.Create(palPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	s := DefaultSettings()
	s.PalettePath = palPath
	out := filepath.Join(dir, "scene.obj")
	require.NoError(t, RunVOX2OBJ(context.Background(), in, out, s))

	pal, err := palette.Load(palPath)
	require.NoError(t, err)
	vol, _, err := vox.Parse(mustRead(t, in))
	require.NoError(t, err)
	m, err := mesh.Convert(vol, pal, s.Options)
	require.NoError(t, err)
	want, err := export.EncodePNG(m.Atlas.Image)
	require.NoError(t, err)
	assert.Equal(t, want, mustRead(t, export.SiblingPath(out, ".png")))

	s.PalettePath = filepath.Join(dir, "missing.png")
	assert.Error(t, RunVOX2OBJ(context.Background(), in, out, s))
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.vox")
	require.NoError(t, os.WriteFile(bad, []byte("VOX \x96\x00\x00\x00"), 0o644))
	ctx := context.Background()

	err := RunVOX2OBJ(ctx, bad, filepath.Join(dir, "x.obj"), DefaultSettings())
	assert.ErrorIs(t, err, vox.ErrMalformedFormat)
	_, statErr := os.Stat(filepath.Join(dir, "x.obj"))
	assert.True(t, os.IsNotExist(statErr))

	in := writeVOX(t, dir)
	err = RunVOX2GLB(ctx, in, filepath.Join(dir, "missing", "x.glb"), DefaultSettings())
	assert.ErrorIs(t, err, export.ErrIO)

	s := DefaultSettings()
	s.Options.CellSize = 0
	assert.ErrorIs(t, RunVOX2STL(ctx, in, filepath.Join(dir, "x.stl"), false, s), mesh.ErrInvalidOptions)
}

func TestRunInfo(t *testing.T) {
	in := writeVOX(t, t.TempDir())
	var buf bytes.Buffer
	require.NoError(t, RunInfo(context.Background(), in, DefaultSettings(), &buf))
	out := buf.String()
	assert.Contains(t, out, "size:        4x3x2\n")
	assert.Contains(t, out, "voxels:      9\n")
	assert.Contains(t, out, "  +Y: ")
	assert.Contains(t, out, "fingerprint: ")
}

func TestRunVOPL2OBJ(t *testing.T) {
	dir := t.TempDir()
	in := writeVOPL(t, dir, "chunk.vopl", 4)
	out := filepath.Join(dir, "chunk.obj")
	require.NoError(t, RunVOPL2OBJ(context.Background(), in, out, DefaultSettings()))
	obj := string(mustRead(t, out))
	// A 3x1x1 bar merges into six quads.
	assert.Equal(t, 12, strings.Count(obj, "\nf "))
}

func TestVOPLPack_Commands(t *testing.T) {
	dir := t.TempDir()
	a := writeVOPL(t, dir, "a.vopl", 2)
	b := writeVOPL(t, dir, "b.vopl", 7)
	ctx := context.Background()

	for _, tc := range []struct {
		comp vopl.Compression
		cdc  bool
	}{
		{vopl.CompressZlib, false},
		{vopl.CompressZstd, true},
		{vopl.CompressNone, true},
	} {
		pack := filepath.Join(dir, "chunks.voplpack")
		require.NoError(t, RunVOPL2VOPLPACK(pack, []string{a, b}, tc.comp, tc.cdc))

		objDir := filepath.Join(dir, "obj")
		require.NoError(t, RunVOPLPACK2OBJ(ctx, pack, objDir, DefaultSettings()))
		for _, name := range []string{"a", "b"} {
			for _, ext := range []string{".obj", ".mtl", ".png"} {
				_, err := os.Stat(filepath.Join(objDir, name+ext))
				assert.NoError(t, err, name+ext)
			}
		}

		voplDir := filepath.Join(dir, "vopl")
		require.NoError(t, RunVOPLPACK2VOPL(pack, voplDir))
		assert.Equal(t, mustRead(t, a), mustRead(t, filepath.Join(voplDir, "a.vopl")))
		assert.Equal(t, mustRead(t, b), mustRead(t, filepath.Join(voplDir, "b.vopl")))
	}

	assert.Error(t, RunVOPL2VOPLPACK(filepath.Join(dir, "x.voplpack"), nil, vopl.CompressZlib, false))
}

func TestEntryStem(t *testing.T) {
	assert.Equal(t, "a", entryStem("a.vopl"))
	assert.Equal(t, "b", entryStem("../../x/b.vopl"))
	assert.Equal(t, "c", entryStem("c"))
}

func TestVOPLPack_DuplicateStems(t *testing.T) {
	dir := t.TempDir()
	file := mustRead(t, writeVOPL(t, dir, "a.vopl", 2))

	p := new(vopl.Pack)
	require.NoError(t, p.Add("a.vopl", file))
	require.NoError(t, p.Add("x/a.vopl", file))
	data, err := p.Marshal(vopl.LayoutRaw, vopl.CompressZlib)
	require.NoError(t, err)
	pack := filepath.Join(dir, "dup.voplpack")
	require.NoError(t, os.WriteFile(pack, data, 0o644))

	objDir := filepath.Join(dir, "obj")
	assert.ErrorContains(t, RunVOPLPACK2OBJ(context.Background(), pack, objDir, DefaultSettings()), "both map to")
	voplDir := filepath.Join(dir, "vopl")
	assert.ErrorContains(t, RunVOPLPACK2VOPL(pack, voplDir), "both map to")
	for _, d := range []string{objDir, voplDir} {
		_, err := os.Stat(d)
		assert.True(t, os.IsNotExist(err), d)
	}

	other := filepath.Join(dir, "x")
	require.NoError(t, os.Mkdir(other, 0o755))
	b := writeVOPL(t, other, "a.vopl", 5)
	err = RunVOPL2VOPLPACK(filepath.Join(dir, "out.voplpack"), []string{filepath.Join(dir, "a.vopl"), b}, vopl.CompressNone, false)
	assert.ErrorContains(t, err, "both map to")

	_, err = entryStems([]vopl.Entry{{Name: ".vopl"}})
	assert.Error(t, err)
}
