//go:build !(js && wasm)

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/voxelsplace/voxmesh/config"
	"github.com/voxelsplace/voxmesh/utils"
	"github.com/voxelsplace/voxmesh/vopl"
)

var errUsage = errors.New("usage")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// conversionFlags are the flags shared by every command that builds a mesh.
type conversionFlags struct {
	cell    float64
	padding int
	center  bool
	cellPx  int
	palette string
	config  string
	save    string
	verbose bool
}

func newConversionFlags(name string) (*flag.FlagSet, *conversionFlags) {
	fs := newFlagSet(name)
	c := new(conversionFlags)
	fs.Float64Var(&c.cell, "cell", 1, "world size of one voxel")
	fs.IntVar(&c.padding, "padding", 0, "border pixels around each atlas cell")
	fs.BoolVar(&c.center, "center", false, "center the model on the origin")
	fs.IntVar(&c.cellPx, "cellpx", 1, "interior pixels per atlas cell side")
	fs.StringVar(&c.palette, "palette", "", "palette image replacing the input palette")
	fs.StringVar(&c.config, "config", "", "options file (.toml, .yaml)")
	fs.StringVar(&c.save, "save-config", "", "write the resolved options to this file (.toml, .yaml)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
	return fs, c
}

// parse reads args into settings. Options start from the config file, or the
// defaults, and explicitly set flags win.
func (c *conversionFlags) parse(fs *flag.FlagSet, args []string) (utils.Settings, []string, error) {
	if err := fs.Parse(args); err != nil {
		return utils.Settings{}, nil, errUsage
	}
	setupLogging(c.verbose)

	s := utils.DefaultSettings()
	if c.config != "" {
		opts, err := config.Load(c.config)
		if err != nil {
			return utils.Settings{}, nil, fmt.Errorf("config %s: %w", c.config, err)
		}
		s.Options = opts
		slog.Debug("loaded config", "path", c.config, "options", fmt.Sprintf("%+v", opts))
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cell":
			s.Options.CellSize = float32(c.cell)
		case "padding":
			s.Options.Padding = c.padding
		case "center":
			s.Options.CenterOrigin = c.center
		case "cellpx":
			s.Options.CellPixels = c.cellPx
		}
	})
	if c.save != "" {
		if err := config.Save(c.save, s.Options); err != nil {
			return utils.Settings{}, nil, fmt.Errorf("save config %s: %w", c.save, err)
		}
		slog.Debug("saved config", "path", c.save)
	}
	s.PalettePath = c.palette
	return s, fs.Args(), nil
}

func parseCompression(name string) (vopl.Compression, error) {
	switch name {
	case "none":
		return vopl.CompressNone, nil
	case "zlib":
		return vopl.CompressZlib, nil
	case "zstd":
		return vopl.CompressZstd, nil
	}
	return 0, fmt.Errorf("unknown compression %q", name)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
