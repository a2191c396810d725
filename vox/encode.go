package vox

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const fileVersion = 150

// Encode writes vol as a single-model .vox file. A nil palette omits the RGBA
// chunk. Volumes larger than 256 along any axis cannot be stored.
func Encode(vol *Volume, pal Palette) ([]byte, error) {
	if vol.Width > 256 || vol.Height > 256 || vol.Depth > 256 {
		return nil, fmt.Errorf("vox: %dx%dx%d volume does not fit in a .vox model", vol.Width, vol.Height, vol.Depth)
	}

	var children bytes.Buffer
	size := make([]byte, 12)
	binary.LittleEndian.PutUint32(size[0:], uint32(vol.Width))
	binary.LittleEndian.PutUint32(size[4:], uint32(vol.Depth))
	binary.LittleEndian.PutUint32(size[8:], uint32(vol.Height))
	writeChunk(&children, "SIZE", size, nil)

	xyzi := make([]byte, 4, 4+vol.Len()*4)
	binary.LittleEndian.PutUint32(xyzi, uint32(vol.Len()))
	vol.Each(func(x, y, z int, c uint8) {
		xyzi = append(xyzi, uint8(x), uint8(vol.Depth-1-z), uint8(y), c)
	})
	writeChunk(&children, "XYZI", xyzi, nil)

	if pal != nil {
		rgba := make([]byte, PaletteSize*4)
		for i := 1; i < len(pal); i++ {
			c := pal[i]
			copy(rgba[(i-1)*4:], []byte{c.R, c.G, c.B, c.A})
		}
		writeChunk(&children, "RGBA", rgba, nil)
	}

	var out bytes.Buffer
	out.WriteString(magic)
	_ = binary.Write(&out, binary.LittleEndian, int32(fileVersion))
	writeChunk(&out, "MAIN", nil, children.Bytes())
	return out.Bytes(), nil
}

func writeChunk(w *bytes.Buffer, id string, content, children []byte) {
	w.WriteString(id)
	_ = binary.Write(w, binary.LittleEndian, int32(len(content)))
	_ = binary.Write(w, binary.LittleEndian, int32(len(children)))
	w.Write(content)
	w.Write(children)
}
