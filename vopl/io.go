package vopl

import (
	"fmt"
	"os"

	"github.com/voxelsplace/voxmesh/vox"
)

// Decode parses a .vopl file.
func Decode(data []byte) (*Grid, Header, error) {
	h, enc, payload, err := ParseHeader(data)
	if err != nil {
		return nil, h, err
	}
	g, err := decodePayload(h, enc, payload)
	if err != nil {
		return nil, h, err
	}
	return g, h, nil
}

// DecodeVolume parses a .vopl file into a volume and the palette its header
// selects.
func DecodeVolume(data []byte) (*vox.Volume, vox.Palette, error) {
	g, h, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	vol, err := g.Volume()
	if err != nil {
		return nil, nil, err
	}
	return vol, h.Palette(), nil
}

// Load reads and decodes a .vopl file from disk.
func Load(path string) (*Grid, Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Header{}, err
	}
	return Decode(data)
}

func decodePayload(h Header, enc uint8, payload []byte) (*Grid, error) {
	if enc&encZlib != 0 {
		var err error
		payload, err = zlibDecompress(payload, maxPayload)
		if err != nil {
			return nil, fmt.Errorf("%w: vopl payload: %w", vox.ErrMalformedFormat, err)
		}
	}
	stream, err := decodeStream(enc&^encZlib, h.BPP, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: vopl encoding %d: %w", vox.ErrMalformedFormat, enc&^encZlib, err)
	}
	return unflatten(stream), nil
}

func decodeStream(enc, bpp uint8, payload []byte) ([]uint8, error) {
	stream := make([]uint8, cells)
	switch enc {
	case encDense:
		br := newBitReader(payload)
		for i := range stream {
			v, err := br.readBits(bpp)
			if err != nil {
				return nil, err
			}
			stream[i] = uint8(v)
		}
	case encSparse:
		br := newBitReader(payload)
		n, err := br.readBits(16)
		if err != nil {
			return nil, err
		}
		if n > cells {
			return nil, fmt.Errorf("%d sparse voxels in a %d cell chunk", n, cells)
		}
		for range n {
			idx, err := br.readBits(sparseIndexBits)
			if err != nil {
				return nil, err
			}
			c, err := br.readBits(bpp)
			if err != nil {
				return nil, err
			}
			stream[idx] = uint8(c)
		}
	case encSparse2:
		if len(payload) < cells/8 {
			return nil, fmt.Errorf("bitmap needs %d bytes, have %d", cells/8, len(payload))
		}
		bitmap := payload[:cells/8]
		br := newBitReader(payload[cells/8:])
		for i := range stream {
			if bitmap[i>>3]>>(uint(i)&7)&1 == 0 {
				continue
			}
			c, err := br.readBits(bpp)
			if err != nil {
				return nil, err
			}
			stream[i] = uint8(c)
		}
	default:
		return nil, fmt.Errorf("unknown encoding")
	}
	return stream, nil
}
