// Package api exposes conversion as bytes-in, bytes-out functions for callers
// that never touch the filesystem, such as the wasm build, plus thin wrappers
// over the file writers.
package api

import (
	"context"
	"fmt"
	"slices"

	"github.com/voxelsplace/voxmesh/export"
	"github.com/voxelsplace/voxmesh/mesh"
	"github.com/voxelsplace/voxmesh/vopl"
	"github.com/voxelsplace/voxmesh/vox"
)

// Parse reads a .vox buffer. A file without an RGBA chunk gets the default
// palette.
func Parse(buf []byte) (*vox.Volume, vox.Palette, error) {
	vol, pal, err := vox.Parse(buf)
	if err != nil {
		return nil, nil, err
	}
	if pal == nil {
		pal = vox.DefaultPalette()
	}
	return vol, pal, nil
}

// Convert builds a mesh model from a volume and its palette.
func Convert(vol *vox.Volume, pal vox.Palette, opts mesh.Options) (*mesh.Model, error) {
	return mesh.Convert(vol, pal, opts)
}

// Result is the outcome of an asynchronous conversion.
type Result struct {
	Model *mesh.Model
	Err   error
}

// ConvertAsync runs Convert in its own goroutine. The returned channel
// delivers exactly one Result and is then closed. Canceling ctx stops the
// conversion between slice layers.
func ConvertAsync(ctx context.Context, vol *vox.Volume, pal vox.Palette, opts mesh.Options) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		m, err := mesh.ConvertContext(ctx, vol, pal, opts)
		ch <- Result{Model: m, Err: err}
	}()
	return ch
}

// WriteInterchange writes m as OBJ with its .mtl and .png companions.
func WriteInterchange(m *mesh.Model, path string) error {
	return export.WriteInterchange(m, path)
}

// WriteTriangleSoup writes m as binary STL.
func WriteTriangleSoup(m *mesh.Model, path string) error {
	return export.WriteTriangleSoup(m, path)
}

// OBJBundle holds the three files of a textured export. The OBJ references
// the others as name.mtl and name.png.
type OBJBundle struct {
	OBJ []byte
	MTL []byte
	PNG []byte
}

func bundle(m *mesh.Model, name string) (OBJBundle, error) {
	png, err := export.EncodePNG(m.Atlas.Image)
	if err != nil {
		return OBJBundle{}, err
	}
	return OBJBundle{OBJ: export.EncodeOBJ(m, name), MTL: export.EncodeMTL(name), PNG: png}, nil
}

func convertVOX(buf []byte, opts mesh.Options) (*mesh.Model, error) {
	vol, pal, err := Parse(buf)
	if err != nil {
		return nil, err
	}
	return mesh.Convert(vol, pal, opts)
}

// VOXToOBJ converts a .vox buffer to a textured OBJ bundle.
func VOXToOBJ(buf []byte, name string, opts mesh.Options) (OBJBundle, error) {
	m, err := convertVOX(buf, opts)
	if err != nil {
		return OBJBundle{}, err
	}
	return bundle(m, name)
}

// VOXToSTL converts a .vox buffer to binary STL.
func VOXToSTL(buf []byte, opts mesh.Options) ([]byte, error) {
	m, err := convertVOX(buf, opts)
	if err != nil {
		return nil, err
	}
	return export.EncodeSTL(m), nil
}

// VOXToGLB converts a .vox buffer to binary glTF.
func VOXToGLB(buf []byte, name string, opts mesh.Options) ([]byte, error) {
	m, err := convertVOX(buf, opts)
	if err != nil {
		return nil, err
	}
	return export.EncodeGLB(m, name)
}

// VOPLToOBJ converts a .vopl chunk to a textured OBJ bundle.
func VOPLToOBJ(buf []byte, name string, opts mesh.Options) (OBJBundle, error) {
	vol, pal, err := vopl.DecodeVolume(buf)
	if err != nil {
		return OBJBundle{}, err
	}
	m, err := mesh.Convert(vol, pal, opts)
	if err != nil {
		return OBJBundle{}, err
	}
	return bundle(m, name)
}

// VOPLToGLB converts a .vopl chunk to binary glTF.
func VOPLToGLB(buf []byte, name string, opts mesh.Options) ([]byte, error) {
	vol, pal, err := vopl.DecodeVolume(buf)
	if err != nil {
		return nil, err
	}
	m, err := mesh.Convert(vol, pal, opts)
	if err != nil {
		return nil, err
	}
	return export.EncodeGLB(m, name)
}

// PackVOPLs bundles .vopl files into a zlib-compressed .voplpack. Entries are
// stored in name order and every header must match.
func PackVOPLs(files map[string][]byte) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	p := new(vopl.Pack)
	for _, name := range names {
		if err := p.Add(name, files[name]); err != nil {
			return nil, err
		}
	}
	return p.Marshal(vopl.LayoutRaw, vopl.CompressZlib)
}

// UnpackVOPLPACKToMemory returns the .vopl files of a .voplpack by name.
func UnpackVOPLPACKToMemory(packBytes []byte) (map[string][]byte, error) {
	p, _, err := vopl.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(p.Entries))
	for i, e := range p.Entries {
		out[e.Name] = p.File(i)
	}
	return out, nil
}
