package vopl

import "sort"

func expand3(v uint32) uint32 {
	v = (v | (v << 16)) & 0x030000FF
	v = (v | (v << 8)) & 0x0300F00F
	v = (v | (v << 4)) & 0x030C30C3
	v = (v | (v << 2)) & 0x09249249
	return v
}

func morton3D(x, y, z uint32) uint32 {
	return expand3(x) | (expand3(y) << 1) | (expand3(z) << 2)
}

// mortonOrder[rank] is the linear index (x + z*16 + y*256) stored at that
// position of the value stream.
var mortonOrder = buildMortonOrder()

func buildMortonOrder() []int {
	keys := make([]uint32, cells)
	order := make([]int, cells)
	i := 0
	for y := range Size {
		for z := range Size {
			for x := range Size {
				keys[i] = morton3D(uint32(x), uint32(y), uint32(z))
				order[i] = i
				i++
			}
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
	return order
}

// flatten returns the chunk's cells in stream order.
func flatten(g *Grid) []uint8 {
	stream := make([]uint8, cells)
	for rank, lin := range mortonOrder {
		y, rest := lin/(Size*Size), lin%(Size*Size)
		z, x := rest/Size, rest%Size
		stream[rank] = g[y][x][z]
	}
	return stream
}

// unflatten is the inverse of flatten.
func unflatten(stream []uint8) *Grid {
	g := new(Grid)
	for rank, lin := range mortonOrder {
		y, rest := lin/(Size*Size), lin%(Size*Size)
		z, x := rest/Size, rest%Size
		g[y][x][z] = stream[rank]
	}
	return g
}
