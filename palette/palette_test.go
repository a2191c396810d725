package palette

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/voxelsplace/voxmesh/vox"
)

func swatch(i int) color.NRGBA {
	return color.NRGBA{R: uint8(i), G: uint8(255 - i), B: uint8(i / 2), A: 255}
}

func gridImage(cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16*cell, 16*cell))
	for y := 0; y < 16*cell; y++ {
		for x := 0; x < 16*cell; x++ {
			img.SetNRGBA(x, y, swatch(x/cell+16*(y/cell)))
		}
	}
	return img
}

func TestFromImage_Grid(t *testing.T) {
	for _, cell := range []int{1, 4} {
		pal, err := FromImage(gridImage(cell))
		require.NoError(t, err)
		require.Len(t, pal, vox.PaletteSize)
		assert.Equal(t, color.NRGBA{}, pal[0])
		assert.Equal(t, swatch(1), pal[1])
		assert.Equal(t, swatch(17), pal[17])
		assert.Equal(t, swatch(255), pal[255])
	}
}

func TestFromImage_Strip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 1))
	for x := 0; x < 256; x++ {
		img.SetNRGBA(x, 0, swatch(x))
	}
	pal, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, swatch(200), pal[200])
}

func TestFromImage_BadShape(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 8, 8),
		image.Rect(0, 0, 16, 32),
		image.Rect(0, 0, 20, 20),
		image.Rect(0, 0, 128, 1),
	} {
		_, err := FromImage(image.NewNRGBA(r))
		assert.ErrorIs(t, err, vox.ErrMalformedFormat, r.String())
	}
}

func TestDecode_Formats(t *testing.T) {
	img := gridImage(2)

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	pal, err := Decode(&pngBuf)
	require.NoError(t, err)
	assert.Equal(t, swatch(42), pal[42])

	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, img))
	pal, err = Decode(&bmpBuf)
	require.NoError(t, err)
	assert.Equal(t, swatch(42), pal[42])
}

func TestDecode_NotAnImage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("VOX \x96\x00\x00\x00")))
	assert.ErrorIs(t, err, vox.ErrMalformedFormat)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gridImage(1)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	pal, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, swatch(3), pal[3])

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
