package vopl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/voxelsplace/voxmesh/vox"
)

// Compression is the codec applied to the content section of a pack.
type Compression uint8

const (
	CompressNone Compression = 0
	CompressZlib Compression = 1
	CompressZstd Compression = 2
)

// Layout selects how a pack stores entry payloads.
type Layout uint8

const (
	// LayoutRaw stores each payload as an independent blob.
	LayoutRaw Layout = 0
	// LayoutCDC stores a dictionary of content-defined chunks shared by all
	// entries; each entry is a list of chunk references.
	LayoutCDC Layout = 1
)

const (
	packMagic    = "VOPLPACK"
	packVersion1 = 1
	packVersion2 = 2

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384

	maxPackContent = 1 << 30
)

// Entry is one chunk in a pack.
type Entry struct {
	Name    string
	Enc     uint8
	Payload []byte
}

// Pack bundles chunks that share a header.
type Pack struct {
	Header  Header
	Entries []Entry
}

// Add appends a complete .vopl file. Every file must carry the same header.
func (p *Pack) Add(name string, file []byte) error {
	h, enc, payload, err := ParseHeader(file)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(p.Entries) == 0 {
		p.Header = h
	} else if h != p.Header {
		return fmt.Errorf("%s: header %+v differs from pack header %+v", name, h, p.Header)
	}
	if len(name) > 0xFFFF {
		return fmt.Errorf("entry name of %d bytes is too long", len(name))
	}
	p.Entries = append(p.Entries, Entry{Name: name, Enc: enc, Payload: payload})
	return nil
}

// File rebuilds the complete .vopl file of entry i.
func (p *Pack) File(i int) []byte {
	e := p.Entries[i]
	return p.Header.File(e.Enc, e.Payload)
}

// Volume decodes entry i.
func (p *Pack) Volume(i int) (*vox.Volume, error) {
	e := p.Entries[i]
	g, err := decodePayload(p.Header, e.Enc, e.Payload)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}
	return g.Volume()
}

// Marshal encodes the pack. Raw packs without zstd are written as version 1,
// everything else as version 2.
func (p *Pack) Marshal(layout Layout, comp Compression) ([]byte, error) {
	if err := p.Header.validate(); err != nil {
		return nil, err
	}
	version := uint8(packVersion2)
	if layout == LayoutRaw && comp != CompressZstd {
		version = packVersion1
	}

	var content bytes.Buffer
	put := func(v any) { _ = binary.Write(&content, binary.LittleEndian, v) }
	putName := func(name string) {
		put(uint16(len(name)))
		content.WriteString(name)
	}
	h := p.Header
	put([]uint8{h.Ver, h.BPP, h.W, h.H, h.D})
	put(h.Pal)

	switch layout {
	case LayoutRaw:
		if version >= packVersion2 {
			put(uint8(LayoutRaw))
		}
		put(uint32(len(p.Entries)))
		for _, e := range p.Entries {
			putName(e.Name)
			put(e.Enc)
			put(uint32(len(e.Payload)))
			content.Write(e.Payload)
		}
	case LayoutCDC:
		put(uint8(LayoutCDC))
		put([]uint32{cdcTarget, cdcMin, cdcMax})
		dict, seqs := chunkPayloads(p.Entries, cdcTarget, cdcMin, cdcMax)
		put(uint32(len(dict)))
		for _, blk := range dict {
			put(uint32(len(blk)))
			content.Write(blk)
		}
		put(uint32(len(p.Entries)))
		for i, e := range p.Entries {
			putName(e.Name)
			put(e.Enc)
			put(uint32(len(e.Payload)))
			put(uint32(len(seqs[i])))
			put(seqs[i])
		}
	default:
		return nil, fmt.Errorf("unsupported pack layout %d", layout)
	}

	var body []byte
	switch comp {
	case CompressNone:
		body = content.Bytes()
	case CompressZlib:
		body = zlibCompress(content.Bytes())
	case CompressZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		body = enc.EncodeAll(content.Bytes(), nil)
	default:
		return nil, fmt.Errorf("unsupported pack compression %d", comp)
	}

	out := make([]byte, 0, len(packMagic)+2+len(body))
	out = append(out, packMagic...)
	out = append(out, version, uint8(comp))
	return append(out, body...), nil
}

// packReader reads little-endian fields and remembers the first error.
type packReader struct {
	r   *bytes.Reader
	err error
}

func (pr *packReader) read(v any) {
	if pr.err == nil {
		pr.err = binary.Read(pr.r, binary.LittleEndian, v)
	}
}

func (pr *packReader) u32() uint32 {
	var v uint32
	pr.read(&v)
	return v
}

// bytes reads n bytes, refusing lengths beyond the remaining input.
func (pr *packReader) bytes(n uint32) []byte {
	if pr.err != nil {
		return nil
	}
	if int64(n) > int64(pr.r.Len()) {
		pr.err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	_, pr.err = io.ReadFull(pr.r, b)
	return b
}

func (pr *packReader) name() string {
	var n uint16
	pr.read(&n)
	return string(pr.bytes(uint32(n)))
}

// UnmarshalPack parses a .voplpack and reports the compression it used.
func UnmarshalPack(data []byte) (*Pack, Compression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, fmt.Errorf("%w: not a voplpack file", vox.ErrMalformedFormat)
	}
	version := data[8]
	comp := Compression(data[9])
	if version != packVersion1 && version != packVersion2 {
		return nil, 0, fmt.Errorf("%w: voplpack version %d", vox.ErrMalformedFormat, version)
	}
	content, err := decompressPack(comp, data[10:])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: voplpack content: %w", vox.ErrMalformedFormat, err)
	}

	pr := &packReader{r: bytes.NewReader(content)}
	p := new(Pack)
	pr.read(&p.Header.Ver)
	pr.read(&p.Header.BPP)
	pr.read(&p.Header.W)
	pr.read(&p.Header.H)
	pr.read(&p.Header.D)
	pr.read(&p.Header.Pal)
	layout := LayoutRaw
	if version >= packVersion2 {
		pr.read(&layout)
	}
	if pr.err != nil {
		return nil, 0, fmt.Errorf("%w: voplpack header: %w", vox.ErrMalformedFormat, pr.err)
	}
	if err := p.Header.validate(); err != nil {
		return nil, 0, err
	}

	switch layout {
	case LayoutRaw:
		err = readRawEntries(pr, p)
	case LayoutCDC:
		err = readCDCEntries(pr, p)
	default:
		err = fmt.Errorf("unknown layout %d", layout)
	}
	if err == nil {
		err = pr.err
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: voplpack entries: %w", vox.ErrMalformedFormat, err)
	}
	return p, comp, nil
}

func decompressPack(comp Compression, body []byte) ([]byte, error) {
	switch comp {
	case CompressNone:
		return body, nil
	case CompressZlib:
		return zlibDecompress(body, maxPackContent)
	case CompressZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPackContent))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(body, nil)
	}
	return nil, fmt.Errorf("unknown compression %d", comp)
}

// Entry and block counts come from the input, so nothing is preallocated
// from them.
func readRawEntries(pr *packReader, p *Pack) error {
	n := pr.u32()
	for i := uint32(0); i < n && pr.err == nil; i++ {
		var e Entry
		e.Name = pr.name()
		pr.read(&e.Enc)
		size := pr.u32()
		if size > maxPayload {
			return fmt.Errorf("entry %q: payload of %d bytes", e.Name, size)
		}
		e.Payload = pr.bytes(size)
		p.Entries = append(p.Entries, e)
	}
	return nil
}

func readCDCEntries(pr *packReader, p *Pack) error {
	// Chunking parameters only matter to the writer.
	var params [3]uint32
	pr.read(&params)

	nBlocks := pr.u32()
	var blocks [][]byte
	for i := uint32(0); i < nBlocks && pr.err == nil; i++ {
		blocks = append(blocks, pr.bytes(pr.u32()))
	}

	n := pr.u32()
	for i := uint32(0); i < n && pr.err == nil; i++ {
		var e Entry
		e.Name = pr.name()
		pr.read(&e.Enc)
		rawLen := pr.u32()
		seqLen := pr.u32()
		if pr.err != nil {
			break
		}
		if rawLen > maxPayload {
			return fmt.Errorf("entry %q: payload of %d bytes", e.Name, rawLen)
		}
		if int64(seqLen)*4 > int64(pr.r.Len()) {
			return fmt.Errorf("entry %q: %d block references past end of input", e.Name, seqLen)
		}
		var payload []byte
		for j := uint32(0); j < seqLen; j++ {
			idx := pr.u32()
			if pr.err != nil {
				break
			}
			if idx >= uint32(len(blocks)) {
				return fmt.Errorf("entry %q: block %d of %d", e.Name, idx, len(blocks))
			}
			if uint32(len(payload)) >= rawLen && len(blocks[idx]) > 0 {
				return fmt.Errorf("entry %q: blocks exceed length %d", e.Name, rawLen)
			}
			payload = append(payload, blocks[idx]...)
		}
		if uint32(len(payload)) > rawLen {
			payload = payload[:rawLen]
		}
		if uint32(len(payload)) != rawLen && pr.err == nil {
			return fmt.Errorf("entry %q: %d bytes, want %d", e.Name, len(payload), rawLen)
		}
		e.Payload = payload
		p.Entries = append(p.Entries, e)
	}
	return nil
}

// gearTable derives the rolling hash table from xxhash so it is stable across
// builds.
func gearTable() [256]uint64 {
	var gear [256]uint64
	seed := xxhash.Sum64String("vopl-cdc-gear-seed")
	var b [16]byte
	for i := range gear {
		binary.LittleEndian.PutUint64(b[:8], seed+uint64(i)*0x9E3779B185EBCA87)
		binary.LittleEndian.PutUint64(b[8:], ^(seed + uint64(i)*0xC2B2AE3D27D4EB4F))
		v := xxhash.Sum64(b[:])
		if v == 0 {
			v = 0x9E3779B185EBCA87
		}
		gear[i] = v
	}
	return gear
}

// chunkPayloads cuts every payload at content-defined boundaries and returns
// the deduplicated chunks plus, per entry, the chunk indices that rebuild it.
func chunkPayloads(entries []Entry, target, minSize, maxSize int) ([][]byte, [][]uint32) {
	gear := gearTable()
	mask := uint64(1)<<bits.Len(uint(target-1)) - 1

	var blocks [][]byte
	index := make(map[uint64][]uint32)
	add := func(b []byte) uint32 {
		h := xxhash.Sum64(b)
		for _, idx := range index[h] {
			if bytes.Equal(blocks[idx], b) {
				return idx
			}
		}
		idx := uint32(len(blocks))
		blocks = append(blocks, bytes.Clone(b))
		index[h] = append(index[h], idx)
		return idx
	}

	seqs := make([][]uint32, len(entries))
	for i, e := range entries {
		data := e.Payload
		start := 0
		var h uint64
		for pos := range data {
			h = h<<1 + gear[data[pos]]
			size := pos - start + 1
			if size < minSize {
				continue
			}
			if h&mask == 0 || size >= maxSize {
				seqs[i] = append(seqs[i], add(data[start:pos+1]))
				start = pos + 1
				h = 0
			}
		}
		if start < len(data) {
			seqs[i] = append(seqs[i], add(data[start:]))
		}
	}
	return blocks, seqs
}
