package export

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxmesh/mesh"
)

// EncodeGLB writes m as binary glTF with the atlas embedded as the base color
// texture. Each quad keeps its own four vertices so normals stay flat.
func EncodeGLB(m *mesh.Model, name string) ([]byte, error) {
	n := len(m.Quads)
	positions := make([][3]float32, 0, 4*n)
	normals := make([][3]float32, 0, 4*n)
	uvs := make([][2]float32, 0, 4*n)
	indices := make([]uint32, 0, 6*n)

	for _, q := range m.Quads {
		base := uint32(len(positions))
		dn := q.Dir.Normal()
		normal := [3]float32{float32(dn[0]), float32(dn[1]), float32(dn[2])}
		for _, v := range q.Verts {
			positions = append(positions, v.Pos)
			normals = append(normals, normal)
			// glTF puts the texture origin at the top left.
			uvs = append(uvs, [2]float32{v.UV[0], 1 - v.UV[1]})
		}
		for _, tri := range q.Dir.Triangulation() {
			indices = append(indices, base+uint32(tri[0]), base+uint32(tri[1]), base+uint32(tri[2]))
		}
	}

	atlas, err := EncodePNG(m.Atlas.Image)
	if err != nil {
		return nil, fmt.Errorf("encode atlas: %w", err)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxmesh"

	imageIdx, err := modeler.WriteImage(doc, name+".png", "image/png", bytes.NewReader(atlas))
	if err != nil {
		return nil, err
	}
	doc.Samplers = []*gltf.Sampler{{MagFilter: gltf.MagNearest, MinFilter: gltf.MinNearest}}
	doc.Textures = []*gltf.Texture{{Sampler: gltf.Index(0), Source: gltf.Index(imageIdx)}}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor:  &[4]float64{1, 1, 1, 1},
		BaseColorTexture: &gltf.TextureInfo{Index: 0},
		MetallicFactor:   gltf.Float(0),
		RoughnessFactor:  gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{Name: "palette", PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}

	if n > 0 {
		posAccessor := modeler.WritePosition(doc, positions)
		normalAccessor := modeler.WriteNormal(doc, normals)
		uvAccessor := modeler.WriteTextureCoord(doc, uvs)
		indicesAccessor := modeler.WriteIndices(doc, indices)
		prim := &gltf.Primitive{
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION:   posAccessor,
				gltf.NORMAL:     normalAccessor,
				gltf.TEXCOORD_0: uvAccessor,
			},
			Indices:  gltf.Index(indicesAccessor),
			Material: gltf.Index(0),
		}
		doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
		doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	}

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteGLB writes m as a .glb file.
func WriteGLB(m *mesh.Model, path string) error {
	data, err := EncodeGLB(m, filepathStem(path))
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}
