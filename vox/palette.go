package vox

import (
	"fmt"
	"image/color"
)

// PaletteSize is the number of entries in a full palette.
const PaletteSize = 256

// Palette maps color indices to colors. Index 0 is the empty voxel and is
// transparent in palettes built by this package.
type Palette []color.NRGBA

// NewPalette copies colors into a palette, rejecting empty or oversized tables.
func NewPalette(colors []color.NRGBA) (Palette, error) {
	if len(colors) == 0 || len(colors) > PaletteSize {
		return nil, fmt.Errorf("%w: palette of %d entries", ErrMalformedFormat, len(colors))
	}
	p := make(Palette, len(colors))
	copy(p, colors)
	return p, nil
}

// Color returns the color for index i. ok is false past the end of the palette.
func (p Palette) Color(i int) (c color.NRGBA, ok bool) {
	if i < 0 || i >= len(p) {
		return color.NRGBA{}, false
	}
	return p[i], true
}

// Truncate returns the first n entries, or the palette itself when it is shorter.
func (p Palette) Truncate(n int) Palette {
	if n >= len(p) {
		return p
	}
	return p[:n]
}

// DefaultPalette returns the palette MagicaVoxel uses when a file carries no
// RGBA chunk: the 6x6x6 web cube without black, then ramps of red, green,
// blue and gray.
func DefaultPalette() Palette {
	p := make(Palette, 0, PaletteSize)
	p = append(p, color.NRGBA{})

	levels := [6]uint8{0xff, 0xcc, 0x99, 0x66, 0x33, 0x00}
	for _, b := range levels {
		for _, g := range levels {
			for _, r := range levels {
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				p = append(p, color.NRGBA{R: r, G: g, B: b, A: 0xff})
			}
		}
	}

	ramp := [10]uint8{0xee, 0xdd, 0xbb, 0xaa, 0x88, 0x77, 0x55, 0x44, 0x22, 0x11}
	for _, v := range ramp {
		p = append(p, color.NRGBA{R: v, A: 0xff})
	}
	for _, v := range ramp {
		p = append(p, color.NRGBA{G: v, A: 0xff})
	}
	for _, v := range ramp {
		p = append(p, color.NRGBA{B: v, A: 0xff})
	}
	for _, v := range ramp {
		p = append(p, color.NRGBA{R: v, G: v, B: v, A: 0xff})
	}
	return p
}
