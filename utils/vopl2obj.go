package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxmesh/export"
	"github.com/voxelsplace/voxmesh/mesh"
	"github.com/voxelsplace/voxmesh/vopl"
)

// RunVOPL2OBJ converts a .vopl chunk to OBJ with its .mtl and .png atlas.
func RunVOPL2OBJ(ctx context.Context, inPath, outPath string, s Settings) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	vol, pal, err := vopl.DecodeVolume(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	pal, err = s.palette(pal)
	if err != nil {
		return err
	}
	m, err := mesh.ConvertContext(ctx, vol, pal, s.Options)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := export.WriteInterchange(m, outPath); err != nil {
		return err
	}
	logModel("wrote obj", inPath, outPath, m)
	return nil
}

// RunVOPLPACK2OBJ converts every entry of a .voplpack to its own OBJ in
// outDir, named after the entry. Entries are converted concurrently.
func RunVOPLPACK2OBJ(ctx context.Context, inPath, outDir string, s Settings) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	p, _, err := vopl.UnmarshalPack(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if len(p.Entries) == 0 {
		return fmt.Errorf("%s: pack has no entries", inPath)
	}
	stems, err := entryStems(p.Entries)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	pal, err := s.palette(p.Header.Palette())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", export.ErrIO, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range p.Entries {
		g.Go(func() error {
			vol, err := p.Volume(i)
			if err != nil {
				return err
			}
			m, err := mesh.ConvertContext(gctx, vol, pal, s.Options)
			if err != nil {
				return fmt.Errorf("entry %q: %w", e.Name, err)
			}
			out := filepath.Join(outDir, stems[i]+".obj")
			if err := export.WriteInterchange(m, out); err != nil {
				return err
			}
			logModel("wrote obj", inPath+":"+e.Name, out, m)
			return nil
		})
	}
	return g.Wait()
}

// entryStem strips directories and the extension from a pack entry name so
// outputs stay inside the target directory.
func entryStem(name string) string {
	base := filepath.Base(filepath.FromSlash(name))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// entryStems maps every entry to its output stem. Entries that would land on
// the same file are rejected.
func entryStems(entries []vopl.Entry) ([]string, error) {
	stems := make([]string, len(entries))
	seen := make(map[string]string, len(entries))
	for i, e := range entries {
		stem := entryStem(e.Name)
		if stem == "" || stem == "." || stem == ".." {
			return nil, fmt.Errorf("entry %q has no usable file name", e.Name)
		}
		if prev, ok := seen[stem]; ok {
			return nil, fmt.Errorf("entries %q and %q both map to %q", prev, e.Name, stem)
		}
		seen[stem] = e.Name
		stems[i] = stem
	}
	return stems, nil
}

// RunVOPL2VOPLPACK bundles .vopl files into a .voplpack. With cdc set,
// payloads are split into shared content-defined chunks.
func RunVOPL2VOPLPACK(outPath string, inPaths []string, comp vopl.Compression, cdc bool) error {
	if len(inPaths) == 0 {
		return fmt.Errorf("no .vopl files provided")
	}
	files := make([][]byte, len(inPaths))
	var g errgroup.Group
	for i, path := range inPaths {
		g.Go(func() error {
			b, err := os.ReadFile(path)
			files[i] = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p := new(vopl.Pack)
	for i, path := range inPaths {
		if err := p.Add(filepath.Base(path), files[i]); err != nil {
			return err
		}
	}
	if _, err := entryStems(p.Entries); err != nil {
		return err
	}
	layout := vopl.LayoutRaw
	if cdc {
		layout = vopl.LayoutCDC
	}
	data, err := p.Marshal(layout, comp)
	if err != nil {
		return err
	}
	if err := export.WriteFile(outPath, data); err != nil {
		return err
	}
	slog.Info("wrote voplpack", "out", outPath, "entries", len(p.Entries), "bytes", len(data))
	return nil
}

// RunVOPLPACK2VOPL writes every entry of a .voplpack to outDir as a .vopl file.
func RunVOPLPACK2VOPL(inPath, outDir string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	p, _, err := vopl.UnmarshalPack(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	stems, err := entryStems(p.Entries)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", export.ErrIO, err)
	}
	var g errgroup.Group
	for i := range p.Entries {
		g.Go(func() error {
			return export.WriteFile(filepath.Join(outDir, stems[i]+".vopl"), p.File(i))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("unpacked voplpack", "in", inPath, "entries", len(p.Entries))
	return nil
}
