package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/voxelsplace/voxmesh/api"
	"github.com/voxelsplace/voxmesh/export"
	"github.com/voxelsplace/voxmesh/mesh"
	"github.com/voxelsplace/voxmesh/vox"
)

func loadVOX(path string, s Settings) (*vox.Volume, vox.Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	vol, pal, err := api.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	pal, err = s.palette(pal)
	if err != nil {
		return nil, nil, err
	}
	return vol, pal, nil
}

func convertVOX(ctx context.Context, path string, s Settings) (*mesh.Model, error) {
	vol, pal, err := loadVOX(path, s)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	m, err := mesh.ConvertContext(ctx, vol, pal, s.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("converted", "in", path, "took", time.Since(start))
	return m, nil
}

// RunVOX2OBJ converts a .vox file to OBJ, writing the .mtl and .png atlas
// next to outPath.
func RunVOX2OBJ(ctx context.Context, inPath, outPath string, s Settings) error {
	m, err := convertVOX(ctx, inPath, s)
	if err != nil {
		return err
	}
	if err := export.WriteInterchange(m, outPath); err != nil {
		return err
	}
	logModel("wrote obj", inPath, outPath, m)
	return nil
}

// RunVOX2STL converts a .vox file to binary STL, or ASCII STL when ascii is set.
func RunVOX2STL(ctx context.Context, inPath, outPath string, ascii bool, s Settings) error {
	m, err := convertVOX(ctx, inPath, s)
	if err != nil {
		return err
	}
	write := export.WriteTriangleSoup
	if ascii {
		write = export.WriteTriangleSoupASCII
	}
	if err := write(m, outPath); err != nil {
		return err
	}
	logModel("wrote stl", inPath, outPath, m)
	return nil
}

// RunVOX2GLB converts a .vox file to binary glTF with an embedded atlas.
func RunVOX2GLB(ctx context.Context, inPath, outPath string, s Settings) error {
	m, err := convertVOX(ctx, inPath, s)
	if err != nil {
		return err
	}
	if err := export.WriteGLB(m, outPath); err != nil {
		return err
	}
	logModel("wrote glb", inPath, outPath, m)
	return nil
}

// RunInfo prints a summary of a .vox file and the mesh it converts to.
func RunInfo(ctx context.Context, inPath string, s Settings, w io.Writer) error {
	vol, pal, err := loadVOX(inPath, s)
	if err != nil {
		return err
	}
	m, err := mesh.ConvertContext(ctx, vol, pal, s.Options)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	perDir := make(map[mesh.Direction]int)
	for _, q := range m.Quads {
		perDir[q.Dir]++
	}
	fmt.Fprintf(w, "file:        %s\n", inPath)
	fmt.Fprintf(w, "size:        %dx%dx%d\n", vol.Width, vol.Height, vol.Depth)
	fmt.Fprintf(w, "voxels:      %d\n", vol.Len())
	fmt.Fprintf(w, "palette:     %d colors\n", len(pal))
	fmt.Fprintf(w, "faces:       %d\n", len(mesh.VisibleFaces(vol)))
	fmt.Fprintf(w, "quads:       %d\n", len(m.Quads))
	for _, d := range mesh.Directions {
		fmt.Fprintf(w, "  %s: %d\n", d, perDir[d])
	}
	fmt.Fprintf(w, "triangles:   %d\n", m.TriangleCount())
	fmt.Fprintf(w, "atlas:       %dx%d\n", m.Atlas.Image.Bounds().Dx(), m.Atlas.Image.Bounds().Dy())
	fmt.Fprintf(w, "fingerprint: %016x\n", m.Fingerprint())
	return nil
}
