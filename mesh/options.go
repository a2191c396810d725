package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid conversion options")

// Options controls placement and atlas layout.
type Options struct {
	// CellSize is the world size of one voxel.
	CellSize float32 `toml:"cell_size" yaml:"cell_size"`

	// Padding is the number of border pixels around each atlas cell,
	// filled with the cell's own color.
	Padding int `toml:"padding" yaml:"padding"`

	// CenterOrigin places the volume's center at the origin instead of its
	// minimum corner.
	CenterOrigin bool `toml:"center_origin" yaml:"center_origin"`

	// CellPixels is the side of an atlas cell's interior in pixels.
	CellPixels int `toml:"cell_pixels" yaml:"cell_pixels"`
}

// DefaultOptions returns unit cells, no padding and a corner origin.
func DefaultOptions() Options {
	return Options{CellSize: 1, CellPixels: 1}
}

// Validate checks every field.
func (o Options) Validate() error {
	if !(o.CellSize > 0) || math32.IsInf(o.CellSize, 1) {
		return fmt.Errorf("%w: cell size %v must be positive and finite", ErrInvalidOptions, o.CellSize)
	}
	if o.Padding < 0 {
		return fmt.Errorf("%w: padding %d is negative", ErrInvalidOptions, o.Padding)
	}
	if o.CellPixels < 1 {
		return fmt.Errorf("%w: cell pixels %d must be at least 1", ErrInvalidOptions, o.CellPixels)
	}
	return nil
}
