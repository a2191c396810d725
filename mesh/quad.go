package mesh

import (
	"github.com/chewxy/math32"

	"github.com/voxelsplace/voxmesh/vox"
)

// Vertex is a quad corner.
type Vertex struct {
	Pos [3]float32
	UV  [2]float32
}

// Quad is an axis-aligned rectangle covering one or more coplanar voxel faces
// of the same color. Corners are always in the same geometric order for a
// given axis; Dir decides the triangulation.
type Quad struct {
	Verts [4]Vertex
	Dir   Direction
	Color uint8
	Rect  Rect
}

// Triangles returns the quad's two triangles with outward winding.
func (q Quad) Triangles() [2][3]Vertex {
	var out [2][3]Vertex
	for t, tri := range q.Dir.Triangulation() {
		for k, i := range tri {
			out[t][k] = q.Verts[i]
		}
	}
	return out
}

// TriangleNormal returns the unit normal of a triangle from its winding.
func TriangleNormal(tri [3]Vertex) [3]float32 {
	p0, p1, p2 := tri[0].Pos, tri[1].Pos, tri[2].Pos
	e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	if l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]); l > 0 {
		n[0] /= l
		n[1] /= l
		n[2] /= l
	}
	return n
}

// placement maps grid coordinates to output space.
type placement struct {
	cell   float32
	offset [3]float32
}

func newPlacement(vol *vox.Volume, opts Options) placement {
	pl := placement{cell: opts.CellSize}
	if opts.CenterOrigin {
		for i, n := range vol.Size() {
			pl.offset[i] = 0.5 * float32(n) * opts.CellSize
		}
	}
	return pl
}

func (pl placement) pos(g [3]int) [3]float32 {
	return [3]float32{
		float32(g[0])*pl.cell - pl.offset[0],
		float32(g[1])*pl.cell - pl.offset[1],
		float32(g[2])*pl.cell - pl.offset[2],
	}
}

func (pl placement) quad(dir Direction, r Rect, color uint8) Quad {
	ds := directions[dir]

	var origin, ext [3]int
	origin[ds.axis] = r.Layer
	if ds.sign > 0 {
		origin[ds.axis]++
	}
	origin[ds.u], origin[ds.v] = r.U, r.V
	ext[ds.u], ext[ds.v] = r.W, r.H

	v2, v4 := origin, origin
	v2[ds.a] += ext[ds.a]
	v4[ds.b] += ext[ds.b]
	v3 := v2
	v3[ds.b] += ext[ds.b]

	return Quad{
		Verts: [4]Vertex{
			{Pos: pl.pos(origin)},
			{Pos: pl.pos(v2)},
			{Pos: pl.pos(v3)},
			{Pos: pl.pos(v4)},
		},
		Dir:   dir,
		Color: color,
		Rect:  r,
	}
}
