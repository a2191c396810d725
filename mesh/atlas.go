package mesh

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/voxelsplace/voxmesh/vox"
)

// ErrPaletteIndexOutOfRange is returned when a quad's color has no palette entry.
var ErrPaletteIndexOutOfRange = errors.New("palette index out of range")

// AtlasColumns is the number of cells per atlas row.
const AtlasColumns = 16

// Atlas is a texture with one flat-colored cell per palette entry, laid out
// row-major, AtlasColumns cells per row.
type Atlas struct {
	Image *image.NRGBA

	Entries    int // palette length
	Rows       int
	CellPixels int
	Padding    int
}

// BuildAtlas paints one cell per palette entry. Each cell is CellPixels wide
// plus Padding pixels of the same color on every side.
func BuildAtlas(pal vox.Palette, opts Options) *Atlas {
	a := &Atlas{
		Entries:    len(pal),
		Rows:       (len(pal) + AtlasColumns - 1) / AtlasColumns,
		CellPixels: opts.CellPixels,
		Padding:    opts.Padding,
	}
	side := a.cellSide()
	a.Image = image.NewNRGBA(image.Rect(0, 0, AtlasColumns*side, a.Rows*side))
	for i, c := range pal {
		col, row := i%AtlasColumns, i/AtlasColumns
		r := image.Rect(col*side, row*side, (col+1)*side, (row+1)*side)
		draw.Draw(a.Image, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
	return a
}

func (a *Atlas) cellSide() int { return a.CellPixels + 2*a.Padding }

// UV returns the texture coordinates of the interior of color's cell, in
// quad corner order, with v pointing up from the bottom of the image.
func (a *Atlas) UV(color uint8) ([4][2]float32, error) {
	i := int(color)
	if i >= a.Entries {
		return [4][2]float32{}, fmt.Errorf("%w: color %d, palette has %d entries", ErrPaletteIndexOutOfRange, i, a.Entries)
	}
	side := a.cellSide()
	w := float32(a.Image.Rect.Dx())
	h := float32(a.Image.Rect.Dy())

	x0 := float32((i%AtlasColumns)*side + a.Padding)
	y0 := float32((i/AtlasColumns)*side + a.Padding)
	u0, u1 := x0/w, (x0+float32(a.CellPixels))/w
	vTop := 1 - y0/h
	vBottom := 1 - (y0+float32(a.CellPixels))/h
	return [4][2]float32{{u0, vBottom}, {u1, vBottom}, {u1, vTop}, {u0, vTop}}, nil
}
