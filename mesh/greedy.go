package mesh

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxmesh/vox"
)

// Rect is a quad's extent in grid space: Layer along the direction's axis,
// origin (U, V) and size (W, H) in the slice's column and row axes.
type Rect struct {
	Layer, U, V, W, H int
}

type span struct {
	u, v, w, h int
	color      uint8
}

type cell struct {
	u, v  int
	color uint8
}

// mergeSlice partitions the candidate cells of one nu x nv slice into
// rectangles. mask holds a color index per cell, 0 for none, rows of nu
// cells. Consumed cells are zeroed, so mask is all zero on return.
func mergeSlice(mask []uint8, nu, nv int) []span {
	var out []span
	for v := 0; v < nv; v++ {
		row := v * nu
		for u := 0; u < nu; {
			c := mask[row+u]
			if c == 0 {
				u++
				continue
			}
			w := 1
			for u+w < nu && mask[row+u+w] == c {
				w++
			}
			h := 1
		grow:
			for v+h < nv {
				next := (v + h) * nu
				for k := u; k < u+w; k++ {
					if mask[next+k] != c {
						break grow
					}
				}
				h++
			}
			for dv := 0; dv < h; dv++ {
				clear(mask[(v+dv)*nu+u : (v+dv)*nu+u+w])
			}
			out = append(out, span{u: u, v: v, w: w, h: h, color: c})
			u += w
		}
	}
	return out
}

// sweep returns the merged rectangles of one direction, layer by layer in
// increasing order, each layer in raster order.
func sweep(ctx context.Context, vol *vox.Volume, dir Direction) ([]Rect, []uint8, error) {
	ds := directions[dir]
	size := vol.Size()
	nu, nv := size[ds.u], size[ds.v]

	layers := make(map[int][]cell)
	vol.Each(func(x, y, z int, c uint8) {
		if !Visible(vol, x, y, z, dir) {
			return
		}
		p := [3]int{x, y, z}
		layers[p[ds.axis]] = append(layers[p[ds.axis]], cell{p[ds.u], p[ds.v], c})
	})
	keys := make([]int, 0, len(layers))
	for k := range layers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var rects []Rect
	var colors []uint8
	mask := make([]uint8, nu*nv)
	for _, layer := range keys {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for _, c := range layers[layer] {
			mask[c.v*nu+c.u] = c.color
		}
		for _, s := range mergeSlice(mask, nu, nv) {
			rects = append(rects, Rect{Layer: layer, U: s.u, V: s.v, W: s.w, H: s.h})
			colors = append(colors, s.color)
		}
	}
	return rects, colors, nil
}

// Optimize culls hidden faces and merges the visible ones into quads.
// Directions are swept concurrently; the result is ordered +X, -X, +Y, -Y,
// +Z, -Z and is identical for identical input. UVs are left zero.
func Optimize(ctx context.Context, vol *vox.Volume, opts Options) ([]Quad, error) {
	type part struct {
		rects  []Rect
		colors []uint8
	}
	var parts [len(Directions)]part

	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range Directions {
		g.Go(func() error {
			rects, colors, err := sweep(gctx, vol, dir)
			parts[i] = part{rects, colors}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pl := newPlacement(vol, opts)
	var quads []Quad
	for i, dir := range Directions {
		for j, r := range parts[i].rects {
			quads = append(quads, pl.quad(dir, r, parts[i].colors[j]))
		}
	}
	return quads, nil
}
