// Package palette loads palette override images.
//
// A palette image is a 16x16 grid of swatches read row-major, so color index
// i is the swatch at column i%16, row i/16. Square images whose side is a
// multiple of 16 are sampled at swatch centers. A 256x1 strip is also
// accepted and read left to right.
package palette

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"

	"github.com/voxelsplace/voxmesh/vox"
)

const gridSide = 16

var supported = map[string]bool{
	"png": true,
	"gif": true,
	"jpg": true,
	"bmp": true,
}

// Load reads a palette image from a file.
func Load(path string) (vox.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a palette image. The format is sniffed from its header.
func Decode(r io.Reader) (vox.Palette, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	kind, err := filetype.Image(data)
	if err != nil || !supported[kind.Extension] {
		return nil, fmt.Errorf("%w: unsupported palette image type %q", vox.ErrMalformedFormat, kind.Extension)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s palette: %w", vox.ErrMalformedFormat, kind.Extension, err)
	}
	return FromImage(img)
}

// FromImage reads the 256 swatches of img.
func FromImage(img image.Image) (vox.Palette, error) {
	b := img.Bounds()
	pal := make(vox.Palette, vox.PaletteSize)
	switch {
	case b.Dx() == vox.PaletteSize && b.Dy() == 1:
		for i := range pal {
			pal[i] = nrgba(img.At(b.Min.X+i, b.Min.Y))
		}
	case b.Dx() == b.Dy() && b.Dx() >= gridSide && b.Dx()%gridSide == 0:
		cell := b.Dx() / gridSide
		for i := range pal {
			col, row := i%gridSide, i/gridSide
			pal[i] = nrgba(img.At(b.Min.X+col*cell+cell/2, b.Min.Y+row*cell+cell/2))
		}
	default:
		return nil, fmt.Errorf("%w: palette image is %dx%d, want 16x16 swatches or 256x1", vox.ErrMalformedFormat, b.Dx(), b.Dy())
	}
	// Index 0 is the empty voxel.
	pal[0] = color.NRGBA{}
	return pal, nil
}

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
