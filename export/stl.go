package export

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/voxelsplace/voxmesh/mesh"
)

type stlTriangle struct {
	Normal [3]float32
	Verts  [3][3]float32
	Attr   uint16
}

// EncodeSTL writes the model's triangles as binary STL, without texture or
// color data.
func EncodeSTL(m *mesh.Model) []byte {
	var buf bytes.Buffer
	buf.Grow(84 + 50*m.TriangleCount())

	var header [80]byte
	copy(header[:], fmt.Sprintf("voxmesh %dx%dx%d", m.Width, m.Height, m.Depth))
	buf.Write(header[:])
	_ = binary.Write(&buf, binary.LittleEndian, uint32(m.TriangleCount()))

	m.Triangles(func(_ *mesh.Quad, tri [3]mesh.Vertex) {
		t := stlTriangle{Normal: mesh.TriangleNormal(tri)}
		for i, v := range tri {
			t.Verts[i] = v.Pos
		}
		_ = binary.Write(&buf, binary.LittleEndian, &t)
	})
	return buf.Bytes()
}

// EncodeSTLASCII writes the model's triangles as ASCII STL.
func EncodeSTLASCII(m *mesh.Model, name string) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	fmt.Fprintln(w, "solid", name)
	m.Triangles(func(_ *mesh.Quad, tri [3]mesh.Vertex) {
		n := mesh.TriangleNormal(tri)
		fmt.Fprintln(w, "  facet normal", ftoa(n[0]), ftoa(n[1]), ftoa(n[2]))
		fmt.Fprintln(w, "    outer loop")
		for _, v := range tri {
			fmt.Fprintln(w, "      vertex", ftoa(v.Pos[0]), ftoa(v.Pos[1]), ftoa(v.Pos[2]))
		}
		fmt.Fprintln(w, "    endloop")
		fmt.Fprintln(w, "  endfacet")
	})
	fmt.Fprintln(w, "endsolid", name)
	_ = w.Flush()
	return buf.Bytes()
}

// WriteTriangleSoup writes m as a binary STL file.
func WriteTriangleSoup(m *mesh.Model, path string) error {
	return WriteFile(path, EncodeSTL(m))
}

// WriteTriangleSoupASCII writes m as an ASCII STL file named after path.
func WriteTriangleSoupASCII(m *mesh.Model, path string) error {
	return WriteFile(path, EncodeSTLASCII(m, filepathStem(path)))
}
