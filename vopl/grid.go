package vopl

import (
	"fmt"

	"github.com/voxelsplace/voxmesh/vox"
)

// Size is the edge of a chunk in voxels.
const Size = 16

const cells = Size * Size * Size

// Grid is one chunk, indexed [y][x][z].
type Grid [Size][Size][Size]uint8

// Volume copies the solid cells of g into a 16x16x16 volume with the same
// axes: x right, y up, z toward the viewer.
func (g *Grid) Volume() (*vox.Volume, error) {
	vol, err := vox.NewVolume(Size, Size, Size)
	if err != nil {
		return nil, err
	}
	for y := range Size {
		for x := range Size {
			for z := range Size {
				if c := g[y][x][z]; c != 0 {
					if err := vol.Set(x, y, z, c); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return vol, nil
}

// GridFromVolume copies vol into a chunk. vol must fit in 16x16x16.
func GridFromVolume(vol *vox.Volume) (*Grid, error) {
	if vol.Width > Size || vol.Height > Size || vol.Depth > Size {
		return nil, fmt.Errorf("volume %dx%dx%d does not fit a %d^3 chunk", vol.Width, vol.Height, vol.Depth, Size)
	}
	g := new(Grid)
	vol.Each(func(x, y, z int, c uint8) {
		g[y][x][z] = c
	})
	return g, nil
}

func (g *Grid) maxColor() uint8 {
	var m uint8
	for y := range Size {
		for x := range Size {
			for z := range Size {
				m = max(m, g[y][x][z])
			}
		}
	}
	return m
}
