package vox

import (
	"fmt"
	"sort"
)

// MaxExtent is the largest accepted size along any axis.
const MaxExtent = 2048

// Volume is a sparse voxel grid. Coordinates are Y-up: X is width, Y is height
// and Z is depth. Cells not present in the map are empty.
type Volume struct {
	Width, Height, Depth int

	voxels map[uint64]uint8
}

// NewVolume returns an empty volume with the given extent.
func NewVolume(width, height, depth int) (*Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: non-positive extent %dx%dx%d", ErrMalformedFormat, width, height, depth)
	}
	if width > MaxExtent || height > MaxExtent || depth > MaxExtent {
		return nil, fmt.Errorf("%w: extent %dx%dx%d exceeds %d", ErrMalformedFormat, width, height, depth, MaxExtent)
	}
	return &Volume{Width: width, Height: height, Depth: depth, voxels: make(map[uint64]uint8)}, nil
}

func pack(x, y, z int) uint64 {
	return uint64(z)<<32 | uint64(y)<<16 | uint64(x)
}

func unpack(k uint64) (x, y, z int) {
	return int(k & 0xFFFF), int((k >> 16) & 0xFFFF), int(k >> 32)
}

// Contains reports whether (x, y, z) lies inside the extent.
func (v *Volume) Contains(x, y, z int) bool {
	return x >= 0 && x < v.Width && y >= 0 && y < v.Height && z >= 0 && z < v.Depth
}

// Set stores color at (x, y, z). A zero color clears the cell.
// It is meant for builders; a volume handed to the mesher is not modified again.
func (v *Volume) Set(x, y, z int, color uint8) error {
	if !v.Contains(x, y, z) {
		return fmt.Errorf("%w: voxel (%d,%d,%d) outside %dx%dx%d", ErrMalformedFormat, x, y, z, v.Width, v.Height, v.Depth)
	}
	k := pack(x, y, z)
	if color == 0 {
		delete(v.voxels, k)
		return nil
	}
	v.voxels[k] = color
	return nil
}

// At returns the color at (x, y, z). ok is false when the coordinate is out of range.
func (v *Volume) At(x, y, z int) (color uint8, ok bool) {
	if !v.Contains(x, y, z) {
		return 0, false
	}
	return v.voxels[pack(x, y, z)], true
}

// Solid reports whether (x, y, z) is inside the volume and not empty.
func (v *Volume) Solid(x, y, z int) bool {
	c, _ := v.At(x, y, z)
	return c != 0
}

// Len returns the number of solid voxels.
func (v *Volume) Len() int { return len(v.voxels) }

// Size returns the extent as an array indexed by axis.
func (v *Volume) Size() [3]int { return [3]int{v.Width, v.Height, v.Depth} }

// Each calls fn for every solid voxel, X varying fastest, then Y, then Z.
func (v *Volume) Each(fn func(x, y, z int, color uint8)) {
	keys := make([]uint64, 0, len(v.voxels))
	for k := range v.voxels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		x, y, z := unpack(k)
		fn(x, y, z, v.voxels[k])
	}
}
