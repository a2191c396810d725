package export

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxmesh/mesh"
	"github.com/voxelsplace/voxmesh/vox"
)

// testModel converts an L of three voxels: two of color 1 and one of color 2.
func testModel(t *testing.T) *mesh.Model {
	t.Helper()
	vol, err := vox.NewVolume(2, 2, 1)
	require.NoError(t, err)
	require.NoError(t, vol.Set(0, 0, 0, 1))
	require.NoError(t, vol.Set(1, 0, 0, 1))
	require.NoError(t, vol.Set(0, 1, 0, 2))
	m, err := mesh.Convert(vol, vox.DefaultPalette(), mesh.DefaultOptions())
	require.NoError(t, err)
	return m
}

func lines(data []byte, prefix string) []string {
	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

func TestEncodeOBJ(t *testing.T) {
	m := testModel(t)
	obj := EncodeOBJ(m, "model")

	assert.Contains(t, string(obj), "mtllib model.mtl\n")
	assert.Contains(t, string(obj), "usemtl palette\n")
	assert.Len(t, lines(obj, "f "), m.TriangleCount())
	assert.Len(t, lines(obj, "vn "), 6)
	// Colors 1 and 2 sit in adjacent atlas cells and share one cell edge.
	assert.Len(t, lines(obj, "vt "), 6)

	// Merged quads leave (1, 0, z) unused: 7 corners on each of the two z planes.
	assert.Len(t, lines(obj, "v "), 14)
	assert.NotContains(t, string(obj), "-0 ")

	assert.Equal(t, obj, EncodeOBJ(testModel(t), "model"))
}

func TestEncodeOBJ_FaceWinding(t *testing.T) {
	vol, err := vox.NewVolume(1, 1, 1)
	require.NoError(t, err)
	require.NoError(t, vol.Set(0, 0, 0, 1))
	m, err := mesh.Convert(vol, vox.DefaultPalette(), mesh.DefaultOptions())
	require.NoError(t, err)

	faces := lines(EncodeOBJ(m, "cube"), "f ")
	require.Len(t, faces, 12)
	// +X quad comes first and uses the reversed order (v3, v2, v1), (v4, v3, v1).
	assert.Equal(t, "f 3/3/1 2/2/1 1/1/1", faces[0])
	assert.Equal(t, "f 4/4/1 3/3/1 1/1/1", faces[1])
}

func TestEncodeMTL(t *testing.T) {
	mtl := string(EncodeMTL("model"))
	assert.Contains(t, mtl, "newmtl palette\n")
	assert.Contains(t, mtl, "map_Kd model.png\n")
}

func TestWriteInterchange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	m := testModel(t)
	require.NoError(t, WriteInterchange(m, path))

	obj, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, EncodeOBJ(m, "model"), obj)

	f, err := os.Open(filepath.Join(dir, "model.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, m.Atlas.Image.Bounds(), img.Bounds())

	_, err = os.Stat(filepath.Join(dir, "model.mtl"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "model.obj")
	m := testModel(t)

	assert.ErrorIs(t, WriteInterchange(m, path), ErrIO)
	assert.ErrorIs(t, WriteTriangleSoup(m, SiblingPath(path, ".stl")), ErrIO)
	assert.ErrorIs(t, WriteGLB(m, SiblingPath(path, ".glb")), ErrIO)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEncodeSTL(t *testing.T) {
	m := testModel(t)
	data := EncodeSTL(m)
	n := m.TriangleCount()
	require.Len(t, data, 84+50*n)
	assert.False(t, bytes.HasPrefix(data, []byte("solid")))
	assert.Equal(t, uint32(n), binary.LittleEndian.Uint32(data[80:]))

	// Every stored normal is a unit axis vector.
	for i := 0; i < n; i++ {
		rec := data[84+50*i:]
		var sum float64
		for c := 0; c < 3; c++ {
			f := math.Float32frombits(binary.LittleEndian.Uint32(rec[4*c:]))
			sum += math.Abs(float64(f))
		}
		assert.Equal(t, 1.0, sum)
	}
}

func TestEncodeSTLASCII(t *testing.T) {
	m := testModel(t)
	data := EncodeSTLASCII(m, "model")
	assert.True(t, bytes.HasPrefix(data, []byte("solid model\n")))
	assert.True(t, bytes.HasSuffix(data, []byte("endsolid model\n")))
	assert.Len(t, lines(data, "  facet normal"), m.TriangleCount())
	assert.Len(t, lines(data, "      vertex"), 3*m.TriangleCount())
}

func TestWriteTriangleSoup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.stl")
	m := testModel(t)
	require.NoError(t, WriteTriangleSoup(m, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, EncodeSTL(m), data)

	require.NoError(t, WriteTriangleSoupASCII(m, path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("solid model\n")))
}

func TestEncodeGLB(t *testing.T) {
	m := testModel(t)
	data, err := EncodeGLB(m, "model")
	require.NoError(t, err)

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc))
	require.Len(t, doc.Meshes, 1)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "image/png", doc.Images[0].MimeType)
	require.Len(t, doc.Textures, 1)

	require.Len(t, doc.Materials, 1)
	pbr := doc.Materials[0].PBRMetallicRoughness
	require.NotNil(t, pbr)
	assert.Equal(t, [4]float64{1, 1, 1, 1}, pbr.BaseColorFactorOrDefault())
	assert.Equal(t, 0.0, pbr.MetallicFactorOrDefault())
	require.NotNil(t, pbr.BaseColorTexture)

	prim := doc.Meshes[0].Primitives[0]
	assert.Contains(t, prim.Attributes, gltf.NORMAL)
	assert.Contains(t, prim.Attributes, gltf.TEXCOORD_0)
	pos := doc.Accessors[prim.Attributes[gltf.POSITION]]
	assert.Equal(t, uint32(4*len(m.Quads)), uint32(pos.Count))
	idx := doc.Accessors[*prim.Indices]
	assert.Equal(t, uint32(3*m.TriangleCount()), uint32(idx.Count))
}

func TestEncodeGLB_Empty(t *testing.T) {
	vol, err := vox.NewVolume(1, 1, 1)
	require.NoError(t, err)
	m, err := mesh.Convert(vol, vox.DefaultPalette(), mesh.DefaultOptions())
	require.NoError(t, err)
	data, err := EncodeGLB(m, "empty")
	require.NoError(t, err)

	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc))
	assert.Empty(t, doc.Meshes)
}

func TestSiblingPath(t *testing.T) {
	assert.Equal(t, "a/b/model.png", SiblingPath("a/b/model.obj", ".png"))
	assert.Equal(t, "model.png", SiblingPath("model", ".png"))
	assert.Equal(t, "model", filepathStem("dir/model.OBJ"))
}
