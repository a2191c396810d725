package vopl

import (
	"encoding/binary"
	"fmt"

	"github.com/voxelsplace/voxmesh/vox"
)

const (
	fileMagic = "VOPL"
	// Version is the only .vopl version read and written.
	Version   = 3
	headerLen = 16
)

// Header holds the fields every chunk of a pack shares. The encoding byte
// and payload length are per file and live outside it.
type Header struct {
	Ver uint8
	BPP uint8
	W   uint8
	H   uint8
	D   uint8
	Pal uint16
}

func (h Header) validate() error {
	switch {
	case h.Ver != Version:
		return fmt.Errorf("%w: vopl version %d", vox.ErrMalformedFormat, h.Ver)
	case h.BPP < 1 || h.BPP > 8:
		return fmt.Errorf("%w: vopl bits per voxel %d", vox.ErrMalformedFormat, h.BPP)
	case h.W != Size || h.H != Size || h.D != Size:
		return fmt.Errorf("%w: vopl chunk %dx%dx%d, want %d^3", vox.ErrMalformedFormat, h.W, h.H, h.D, Size)
	case h.Pal == 0 || int(h.Pal) > vox.PaletteSize:
		return fmt.Errorf("%w: vopl palette size %d", vox.ErrMalformedFormat, h.Pal)
	}
	return nil
}

// Palette returns the colors a chunk with this header may reference: the
// first Pal entries of the default palette.
func (h Header) Palette() vox.Palette {
	return vox.DefaultPalette().Truncate(int(h.Pal))
}

// ParseHeader splits a .vopl file into its header, encoding byte and payload.
func ParseHeader(data []byte) (Header, uint8, []byte, error) {
	var h Header
	if len(data) < headerLen || string(data[:4]) != fileMagic {
		return h, 0, nil, fmt.Errorf("%w: not a vopl file", vox.ErrMalformedFormat)
	}
	h.Ver = data[4]
	enc := data[5]
	h.BPP = data[6]
	h.W, h.H, h.D = data[7], data[8], data[9]
	h.Pal = binary.LittleEndian.Uint16(data[10:])
	plen := binary.LittleEndian.Uint32(data[12:])
	if err := h.validate(); err != nil {
		return h, 0, nil, err
	}
	if uint64(len(data)-headerLen) != uint64(plen) {
		return h, 0, nil, fmt.Errorf("%w: vopl payload is %d bytes, header says %d", vox.ErrMalformedFormat, len(data)-headerLen, plen)
	}
	return h, enc, data[headerLen:], nil
}

// File rebuilds a complete .vopl file from h and one chunk's encoding and payload.
func (h Header) File(enc uint8, payload []byte) []byte {
	out := make([]byte, 0, headerLen+len(payload))
	out = append(out, fileMagic...)
	out = append(out, h.Ver, enc, h.BPP, h.W, h.H, h.D)
	out = binary.LittleEndian.AppendUint16(out, h.Pal)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...)
}
