// Package mesh turns voxel volumes into textured quad meshes.
//
// Conversion is a chain of pure stages: visible faces are culled per
// direction, merged greedily into quads per slice, and mapped onto a color
// atlas with one cell per palette entry.
package mesh

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/voxelsplace/voxmesh/vox"
)

// Model is a converted mesh. It is self-contained: the volume's extent and
// the options are copied in.
type Model struct {
	Quads []Quad
	Atlas *Atlas

	Width, Height, Depth int
	Options              Options
}

// Convert builds a model from a volume and palette.
func Convert(vol *vox.Volume, pal vox.Palette, opts Options) (*Model, error) {
	return ConvertContext(context.Background(), vol, pal, opts)
}

// ConvertContext is Convert with cancellation between slices.
func ConvertContext(ctx context.Context, vol *vox.Volume, pal vox.Palette, opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(pal) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrPaletteIndexOutOfRange)
	}
	quads, err := Optimize(ctx, vol, opts)
	if err != nil {
		return nil, err
	}
	atlas := BuildAtlas(pal, opts)
	for i := range quads {
		uv, err := atlas.UV(quads[i].Color)
		if err != nil {
			return nil, err
		}
		for k := range quads[i].Verts {
			quads[i].Verts[k].UV = uv[k]
		}
	}
	return &Model{
		Quads:   quads,
		Atlas:   atlas,
		Width:   vol.Width,
		Height:  vol.Height,
		Depth:   vol.Depth,
		Options: opts,
	}, nil
}

// TriangleCount returns the number of triangles the model splits into.
func (m *Model) TriangleCount() int { return 2 * len(m.Quads) }

// Triangles calls fn for every triangle in quad order.
func (m *Model) Triangles(fn func(q *Quad, tri [3]Vertex)) {
	for i := range m.Quads {
		q := &m.Quads[i]
		for _, tri := range q.Triangles() {
			fn(q, tri)
		}
	}
}

// Fingerprint hashes the quads and the atlas pixels. Two conversions of the
// same input with the same options have the same fingerprint.
func (m *Model) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	for _, q := range m.Quads {
		put(uint32(q.Dir))
		put(uint32(q.Color))
		for _, v := range q.Verts {
			for _, f := range v.Pos {
				put(math.Float32bits(f))
			}
			for _, f := range v.UV {
				put(math.Float32bits(f))
			}
		}
	}
	if m.Atlas != nil {
		_, _ = d.Write(m.Atlas.Image.Pix)
	}
	return d.Sum64()
}
