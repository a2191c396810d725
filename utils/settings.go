package utils

import (
	"fmt"
	"log/slog"

	"github.com/voxelsplace/voxmesh/mesh"
	"github.com/voxelsplace/voxmesh/palette"
	"github.com/voxelsplace/voxmesh/vox"
)

// Settings are the conversion knobs shared by every command.
type Settings struct {
	Options mesh.Options
	// PalettePath, when set, names an image whose swatches replace the
	// palette of every input.
	PalettePath string
}

// DefaultSettings converts with mesh.DefaultOptions and the input's own palette.
func DefaultSettings() Settings {
	return Settings{Options: mesh.DefaultOptions()}
}

func (s Settings) palette(own vox.Palette) (vox.Palette, error) {
	if s.PalettePath == "" {
		return own, nil
	}
	pal, err := palette.Load(s.PalettePath)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", s.PalettePath, err)
	}
	slog.Debug("palette override", "path", s.PalettePath)
	return pal, nil
}

func logModel(msg, in, out string, m *mesh.Model) {
	slog.Info(msg,
		"in", in,
		"out", out,
		"size", fmt.Sprintf("%dx%dx%d", m.Width, m.Height, m.Depth),
		"quads", len(m.Quads),
		"triangles", m.TriangleCount(),
		"fingerprint", fmt.Sprintf("%016x", m.Fingerprint()),
	)
}
