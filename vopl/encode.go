package vopl

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"

	"github.com/klauspost/compress/zlib"

	"github.com/voxelsplace/voxmesh/vox"
)

// Payload encodings. The high bit marks a zlib-compressed payload.
const (
	encDense   = 0
	encSparse  = 1
	encSparse2 = 3 // occupancy bitmap + nonzero values

	encZlib = 0x80
)

// DefaultBPP keeps headers uniform across chunks so they can be packed together.
const DefaultBPP = 6

// sparseIndexBits addresses every cell of a chunk.
const sparseIndexBits = 12

// maxPayload bounds a decompressed chunk payload: the sparse encoding of a
// full chunk at 8 bpp, the largest any encoder produces.
const maxPayload = 2 + cells*(sparseIndexBits+8)/8

type encoded struct {
	encoding uint8
	payload  []byte
}

func encodeDense(stream []uint8, bpp uint8) []byte {
	bw := newBitWriter()
	for _, c := range stream {
		bw.writeBits(uint64(c), bpp)
	}
	return bw.bytes()
}

func encodeSparse(stream []uint8, bpp uint8) []byte {
	bw := newBitWriter()
	count := 0
	for _, c := range stream {
		if c != 0 {
			count++
		}
	}
	bw.writeBits(uint64(count), 16)
	for i, c := range stream {
		if c == 0 {
			continue
		}
		bw.writeBits(uint64(i), sparseIndexBits)
		bw.writeBits(uint64(c), bpp)
	}
	return bw.bytes()
}

func encodeSparse2(stream []uint8, bpp uint8) []byte {
	bitmap := make([]byte, cells/8)
	bw := newBitWriter()
	for i, c := range stream {
		if c != 0 {
			bitmap[i>>3] |= 1 << (uint(i) & 7)
			bw.writeBits(uint64(c), bpp)
		}
	}
	return append(bitmap, bw.bytes()...)
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("decompressed size exceeds %d bytes", limit)
	}
	return out, nil
}

// bestEncoding tries every encoding, raw and compressed, and keeps the smallest.
func bestEncoding(g *Grid, bpp uint8) encoded {
	stream := flatten(g)
	candidates := []encoded{
		{encDense, encodeDense(stream, bpp)},
		{encSparse, encodeSparse(stream, bpp)},
		{encSparse2, encodeSparse2(stream, bpp)},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.payload) < len(best.payload) {
			best = c
		}
	}
	for _, c := range candidates {
		if zb := zlibCompress(c.payload); len(zb) < len(best.payload) {
			best = encoded{c.encoding | encZlib, zb}
		}
	}
	return best
}

// Encode returns g as a complete .vopl file. It uses DefaultBPP unless a
// color needs more bits.
func Encode(g *Grid) []byte {
	bpp := uint8(max(DefaultBPP, bits.Len8(g.maxColor())))
	data, _ := EncodeBPP(g, bpp)
	return data
}

// EncodeBPP returns g as a .vopl file storing bpp bits per voxel.
func EncodeBPP(g *Grid, bpp uint8) ([]byte, error) {
	if bpp < 1 || bpp > 8 {
		return nil, fmt.Errorf("bits per voxel %d out of range 1..8", bpp)
	}
	if need := bits.Len8(g.maxColor()); need > int(bpp) {
		return nil, fmt.Errorf("color index needs %d bits, have %d", need, bpp)
	}
	pal := 1 << bpp
	h := Header{Ver: Version, BPP: bpp, W: Size, H: Size, D: Size, Pal: uint16(min(pal, vox.PaletteSize))}
	enc := bestEncoding(g, bpp)
	return h.File(enc.encoding, enc.payload), nil
}
