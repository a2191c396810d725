package export

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/voxelsplace/voxmesh/mesh"
)

const materialName = "palette"

func ftoa(f float32) string {
	if f == 0 {
		f = 0 // no "-0"
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// EncodeOBJ writes m as Wavefront OBJ text. base is the file name without
// extension used for the material library reference. Positions and texture
// coordinates are shared between faces; every quad becomes two triangles.
func EncodeOBJ(m *mesh.Model, base string) []byte {
	posIndex := make(map[[3]float32]int)
	uvIndex := make(map[[2]float32]int)
	var positions [][3]float32
	var uvs [][2]float32
	corners := make([][4][2]int, len(m.Quads))
	for qi, q := range m.Quads {
		for k, v := range q.Verts {
			pi, ok := posIndex[v.Pos]
			if !ok {
				positions = append(positions, v.Pos)
				pi = len(positions)
				posIndex[v.Pos] = pi
			}
			ti, ok := uvIndex[v.UV]
			if !ok {
				uvs = append(uvs, v.UV)
				ti = len(uvs)
				uvIndex[v.UV] = ti
			}
			corners[qi][k] = [2]int{pi, ti}
		}
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	fmt.Fprintf(w, "# voxmesh %dx%dx%d, %d quads, %d triangles\n", m.Width, m.Height, m.Depth, len(m.Quads), m.TriangleCount())
	fmt.Fprintln(w, "mtllib", base+".mtl")
	fmt.Fprintln(w, "o", base)
	for _, p := range positions {
		fmt.Fprintln(w, "v", ftoa(p[0]), ftoa(p[1]), ftoa(p[2]))
	}
	for _, t := range uvs {
		fmt.Fprintln(w, "vt", ftoa(t[0]), ftoa(t[1]))
	}
	for _, d := range mesh.Directions {
		n := d.Normal()
		fmt.Fprintln(w, "vn", n[0], n[1], n[2])
	}
	fmt.Fprintln(w, "usemtl", materialName)
	fmt.Fprintln(w, "s off")
	for qi, q := range m.Quads {
		vn := int(q.Dir) + 1
		for _, tri := range q.Dir.Triangulation() {
			c0, c1, c2 := corners[qi][tri[0]], corners[qi][tri[1]], corners[qi][tri[2]]
			fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", c0[0], c0[1], vn, c1[0], c1[1], vn, c2[0], c2[1], vn)
		}
	}
	_ = w.Flush()
	return buf.Bytes()
}

// EncodeMTL writes the material library referencing the atlas image.
func EncodeMTL(base string) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# voxmesh")
	fmt.Fprintln(&buf, "newmtl", materialName)
	fmt.Fprintln(&buf, "Ka 1 1 1")
	fmt.Fprintln(&buf, "Kd 1 1 1")
	fmt.Fprintln(&buf, "Ks 0 0 0")
	fmt.Fprintln(&buf, "d 1")
	fmt.Fprintln(&buf, "illum 1")
	fmt.Fprintln(&buf, "map_Kd", base+".png")
	return buf.Bytes()
}

// EncodePNG encodes an atlas image.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteInterchange writes m as path (OBJ) plus the .mtl and .png files next to
// it. The companions are written first, so an OBJ on disk always has its
// material and atlas.
func WriteInterchange(m *mesh.Model, path string) error {
	base := filepathStem(path)
	atlas, err := EncodePNG(m.Atlas.Image)
	if err != nil {
		return fmt.Errorf("encode atlas: %w", err)
	}
	if err := WriteFile(SiblingPath(path, ".png"), atlas); err != nil {
		return err
	}
	if err := WriteFile(SiblingPath(path, ".mtl"), EncodeMTL(base)); err != nil {
		return err
	}
	return WriteFile(path, EncodeOBJ(m, base))
}
