// Package vox reads MagicaVoxel .vox files into sparse voxel volumes.
//
// Only the first model of a file is read. Scene graph, material, layer and
// camera chunks are skipped.
package vox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
)

// ErrMalformedFormat is returned for any input that is not a well-formed voxel file.
var ErrMalformedFormat = errors.New("malformed voxel format")

const (
	magic           = "VOX "
	chunkHeaderSize = 12
)

type chunk struct {
	id       string
	offset   int
	content  []byte
	children []byte
}

// readChunk reads the chunk starting at off in buf and returns it with the
// offset of the next sibling.
func readChunk(buf []byte, off int) (chunk, int, error) {
	if len(buf)-off < chunkHeaderSize {
		return chunk{}, 0, fmt.Errorf("%w: truncated chunk header at offset %d", ErrMalformedFormat, off)
	}
	id := string(buf[off : off+4])
	contentSize := int64(int32(binary.LittleEndian.Uint32(buf[off+4:])))
	childrenSize := int64(int32(binary.LittleEndian.Uint32(buf[off+8:])))
	if contentSize < 0 || childrenSize < 0 {
		return chunk{}, 0, fmt.Errorf("%w: negative size in chunk %q at offset %d", ErrMalformedFormat, id, off)
	}
	start := int64(off + chunkHeaderSize)
	end := start + contentSize + childrenSize
	if end > int64(len(buf)) {
		return chunk{}, 0, fmt.Errorf("%w: chunk %q at offset %d overruns buffer", ErrMalformedFormat, id, off)
	}
	c := chunk{
		id:       id,
		offset:   off,
		content:  buf[start : start+contentSize],
		children: buf[start+contentSize : end],
	}
	return c, int(end), nil
}

// Parse decodes a .vox buffer. The returned palette is nil when the file has
// no RGBA chunk; callers then fall back to DefaultPalette.
//
// MagicaVoxel is Z-up. The volume is Y-up and right-handed:
// (x, y, z) = (vx, vz, sizeY-1-vy).
func Parse(buf []byte) (*Volume, Palette, error) {
	if len(buf) < 8 {
		return nil, nil, fmt.Errorf("%w: %d bytes is too short", ErrMalformedFormat, len(buf))
	}
	if string(buf[:4]) != magic {
		return nil, nil, fmt.Errorf("%w: bad signature %q", ErrMalformedFormat, buf[:4])
	}
	main, next, err := readChunk(buf, 8)
	if err != nil {
		return nil, nil, err
	}
	if main.id != "MAIN" {
		return nil, nil, fmt.Errorf("%w: expected MAIN chunk, found %q", ErrMalformedFormat, main.id)
	}
	if next != len(buf) {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes after MAIN", ErrMalformedFormat, len(buf)-next)
	}

	var (
		vol      *Volume
		pal      Palette
		size     [3]int
		haveSize bool
	)
	for off := 0; off < len(main.children); {
		c, n, err := readChunk(main.children, off)
		if err != nil {
			return nil, nil, err
		}
		off = n

		switch c.id {
		case "SIZE":
			if vol != nil {
				continue
			}
			if len(c.content) < 12 {
				return nil, nil, fmt.Errorf("%w: SIZE chunk has %d bytes", ErrMalformedFormat, len(c.content))
			}
			for i := range size {
				size[i] = int(int32(binary.LittleEndian.Uint32(c.content[i*4:])))
			}
			haveSize = true
		case "XYZI":
			if vol != nil {
				continue
			}
			if !haveSize {
				return nil, nil, fmt.Errorf("%w: XYZI chunk without preceding SIZE", ErrMalformedFormat)
			}
			vol, err = readVoxels(c.content, size)
			if err != nil {
				return nil, nil, err
			}
		case "RGBA":
			pal, err = readPalette(c.content)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	if !haveSize {
		return nil, nil, fmt.Errorf("%w: missing SIZE chunk", ErrMalformedFormat)
	}
	if vol == nil {
		return nil, nil, fmt.Errorf("%w: missing XYZI chunk", ErrMalformedFormat)
	}
	return vol, pal, nil
}

func readVoxels(content []byte, size [3]int) (*Volume, error) {
	// SIZE is x, y, z in MagicaVoxel's Z-up frame.
	vol, err := NewVolume(size[0], size[2], size[1])
	if err != nil {
		return nil, err
	}
	if len(content) < 4 {
		return nil, fmt.Errorf("%w: XYZI chunk has %d bytes", ErrMalformedFormat, len(content))
	}
	count := uint64(binary.LittleEndian.Uint32(content))
	if 4+count*4 > uint64(len(content)) {
		return nil, fmt.Errorf("%w: XYZI declares %d voxels in %d bytes", ErrMalformedFormat, count, len(content))
	}
	for i := uint64(0); i < count; i++ {
		e := content[4+i*4 : 8+i*4]
		vx, vy, vz, ci := int(e[0]), int(e[1]), int(e[2]), e[3]
		if vx >= size[0] || vy >= size[1] || vz >= size[2] {
			return nil, fmt.Errorf("%w: voxel (%d,%d,%d) outside declared size %v", ErrMalformedFormat, vx, vy, vz, size)
		}
		if err := vol.Set(vx, vz, size[1]-1-vy, ci); err != nil {
			return nil, err
		}
	}
	return vol, nil
}

func readPalette(content []byte) (Palette, error) {
	if len(content) < PaletteSize*4 {
		return nil, fmt.Errorf("%w: RGBA chunk has %d bytes", ErrMalformedFormat, len(content))
	}
	pal := make(Palette, PaletteSize)
	// Entry i of the chunk is color index i+1; the last entry is unused.
	for i := 0; i < PaletteSize-1; i++ {
		e := content[i*4 : i*4+4]
		pal[i+1] = color.NRGBA{R: e[0], G: e[1], B: e[2], A: e[3]}
	}
	return pal, nil
}
