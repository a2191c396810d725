//go:build !(js && wasm)

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/voxelsplace/voxmesh/utils"
)

func usage() {
	fmt.Println("Usage: voxmesh <command> [flags] args")
	fmt.Println("Commands:")
	fmt.Println("  obj [flags] input.vox output.obj             (textured OBJ + MTL + PNG atlas)")
	fmt.Println("  stl [flags] [-ascii] input.vox output.stl    (untextured triangle soup)")
	fmt.Println("  glb [flags] input.vox output.glb             (binary glTF with embedded atlas)")
	fmt.Println("  info [flags] input.vox                       (print volume and mesh statistics)")
	fmt.Println("  vopl2obj [flags] input.vopl output.obj       (convert a .vopl chunk)")
	fmt.Println("  voplpack2obj [flags] input.voplpack out_dir  (one OBJ per pack entry)")
	fmt.Println("  vopl2voplpack [-compress none|zlib|zstd] [-cdc] output.voplpack input1.vopl [input2.vopl ...]")
	fmt.Println("  voplpack2vopl input.voplpack out_dir         (unpack into .vopl files)")
	fmt.Println("Conversion flags:")
	fmt.Println("  -cell size      world size of one voxel (default 1)")
	fmt.Println("  -padding n      border pixels around each atlas cell (default 0)")
	fmt.Println("  -center         center the model on the origin")
	fmt.Println("  -cellpx n       interior pixels per atlas cell side (default 1)")
	fmt.Println("  -palette img    replace the palette with a 16x16 swatch image or 256x1 strip")
	fmt.Println("  -config file    read options from a .toml or .yaml file; flags override it")
	fmt.Println("  -v              debug logging")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1], os.Args[2:])
	stop()
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "obj", "stl", "glb", "vopl2obj", "voplpack2obj":
		fs, conv := newConversionFlags(cmd)
		ascii := false
		if cmd == "stl" {
			fs.BoolVar(&ascii, "ascii", false, "write ASCII STL")
		}
		s, rest, err := conv.parse(fs, args)
		if err != nil {
			return err
		}
		if len(rest) != 2 {
			return errUsage
		}
		switch cmd {
		case "obj":
			return utils.RunVOX2OBJ(ctx, rest[0], rest[1], s)
		case "stl":
			return utils.RunVOX2STL(ctx, rest[0], rest[1], ascii, s)
		case "glb":
			return utils.RunVOX2GLB(ctx, rest[0], rest[1], s)
		case "vopl2obj":
			return utils.RunVOPL2OBJ(ctx, rest[0], rest[1], s)
		default:
			return utils.RunVOPLPACK2OBJ(ctx, rest[0], rest[1], s)
		}
	case "info":
		fs, conv := newConversionFlags(cmd)
		s, rest, err := conv.parse(fs, args)
		if err != nil {
			return err
		}
		if len(rest) != 1 {
			return errUsage
		}
		return utils.RunInfo(ctx, rest[0], s, os.Stdout)
	case "vopl2voplpack":
		fs := newFlagSet(cmd)
		compress := fs.String("compress", "zlib", "pack compression: none, zlib or zstd")
		cdc := fs.Bool("cdc", false, "deduplicate payloads with content-defined chunking")
		verbose := fs.Bool("v", false, "debug logging")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		setupLogging(*verbose)
		if fs.NArg() < 2 {
			return errUsage
		}
		comp, err := parseCompression(*compress)
		if err != nil {
			return err
		}
		return utils.RunVOPL2VOPLPACK(fs.Arg(0), fs.Args()[1:], comp, *cdc)
	case "voplpack2vopl":
		fs := newFlagSet(cmd)
		verbose := fs.Bool("v", false, "debug logging")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		setupLogging(*verbose)
		if fs.NArg() != 2 {
			return errUsage
		}
		return utils.RunVOPLPACK2VOPL(fs.Arg(0), fs.Arg(1))
	default:
		return errUsage
	}
}
