package truetype

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Table is one serialized sfnt table.
type Table struct {
	Tag  Tag
	Data []byte
}

// Glyph is one glyph of an output font: its (already rewritten) glyf bytes
// and horizontal metrics.
type Glyph struct {
	Data   []byte
	Metric HMetric
}

// GlyfLoca is the result of laying out a glyph list.
type GlyfLoca struct {
	Glyf     []byte
	Loca     []byte
	LongLoca bool
	Bounds   Bounds
}

// BuildGlyf lays glyphs out back to back, padded to four bytes, and builds
// the matching loca table. Short loca offsets are used when they fit.
func BuildGlyf(glyphs []Glyph) GlyfLoca {
	offsets := make([]uint32, len(glyphs)+1)
	size := 0
	for i, g := range glyphs {
		offsets[i] = uint32(size)
		size += (len(g.Data) + 3) &^ 3
	}
	offsets[len(glyphs)] = uint32(size)

	out := GlyfLoca{Glyf: make([]byte, size)}
	first := true
	for i, g := range glyphs {
		copy(out.Glyf[offsets[i]:], g.Data)
		b, ok := GlyphBounds(g.Data)
		if !ok {
			continue
		}
		if first {
			out.Bounds = b
			first = false
			continue
		}
		out.Bounds.XMin = min(out.Bounds.XMin, b.XMin)
		out.Bounds.YMin = min(out.Bounds.YMin, b.YMin)
		out.Bounds.XMax = max(out.Bounds.XMax, b.XMax)
		out.Bounds.YMax = max(out.Bounds.YMax, b.YMax)
	}

	out.LongLoca = size > 2*math.MaxUint16
	if out.LongLoca {
		out.Loca = make([]byte, 4*len(offsets))
		for i, o := range offsets {
			binary.BigEndian.PutUint32(out.Loca[4*i:], o)
		}
	} else {
		out.Loca = make([]byte, 2*len(offsets))
		for i, o := range offsets {
			binary.BigEndian.PutUint16(out.Loca[2*i:], uint16(o/2))
		}
	}
	return out
}

// BuildHmtx writes one full metric record per glyph.
func BuildHmtx(glyphs []Glyph) []byte {
	out := make([]byte, 4*len(glyphs))
	for i, g := range glyphs {
		binary.BigEndian.PutUint16(out[4*i:], g.Metric.Advance)
		binary.BigEndian.PutUint16(out[4*i+2:], uint16(g.Metric.LSB))
	}
	return out
}

// PatchHead copies a source head table and updates the font bounding box
// and loca format. checkSumAdjustment is zeroed; Assemble fills it in.
func PatchHead(src []byte, layout GlyfLoca) ([]byte, error) {
	if len(src) < headLength {
		return nil, fmt.Errorf("%w: head", ErrInvalidTable)
	}
	out := make([]byte, headLength)
	copy(out, src)
	binary.BigEndian.PutUint32(out[8:], 0)
	binary.BigEndian.PutUint16(out[36:], uint16(layout.Bounds.XMin))
	binary.BigEndian.PutUint16(out[38:], uint16(layout.Bounds.YMin))
	binary.BigEndian.PutUint16(out[40:], uint16(layout.Bounds.XMax))
	binary.BigEndian.PutUint16(out[42:], uint16(layout.Bounds.YMax))
	var format uint16
	if layout.LongLoca {
		format = 1
	}
	binary.BigEndian.PutUint16(out[50:], format)
	return out, nil
}

// PatchHhea copies a source hhea table and recomputes the horizontal extent
// fields for the new glyph list.
func PatchHhea(src []byte, glyphs []Glyph) ([]byte, error) {
	if len(src) < hheaLength {
		return nil, fmt.Errorf("%w: hhea", ErrInvalidTable)
	}
	out := make([]byte, hheaLength)
	copy(out, src)

	var advMax uint16
	minLSB, minRSB, maxExtent := int16(math.MaxInt16), int16(math.MaxInt16), int16(math.MinInt16)
	seen := false
	for _, g := range glyphs {
		advMax = max(advMax, g.Metric.Advance)
		b, ok := GlyphBounds(g.Data)
		if !ok {
			continue
		}
		seen = true
		width := int32(b.XMax) - int32(b.XMin)
		minLSB = min(minLSB, g.Metric.LSB)
		minRSB = min(minRSB, clamp16(int32(g.Metric.Advance)-int32(g.Metric.LSB)-width))
		maxExtent = max(maxExtent, clamp16(int32(g.Metric.LSB)+width))
	}
	if !seen {
		minLSB, minRSB, maxExtent = 0, 0, 0
	}
	binary.BigEndian.PutUint16(out[10:], advMax)
	binary.BigEndian.PutUint16(out[12:], uint16(minLSB))
	binary.BigEndian.PutUint16(out[14:], uint16(minRSB))
	binary.BigEndian.PutUint16(out[16:], uint16(maxExtent))
	binary.BigEndian.PutUint16(out[34:], uint16(len(glyphs)))
	return out, nil
}

func clamp16(v int32) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// MergeMaxp builds a version 1.0 maxp for numGlyphs glyphs whose profile
// fields are the maxima over the given source tables.
func MergeMaxp(numGlyphs int, sources ...[]byte) []byte {
	out := make([]byte, 32)
	binary.BigEndian.PutUint32(out, 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(numGlyphs))
	for _, src := range sources {
		for off := 6; off+2 <= len(src) && off < 32; off += 2 {
			v := max(binary.BigEndian.Uint16(out[off:]), binary.BigEndian.Uint16(src[off:]))
			binary.BigEndian.PutUint16(out[off:], v)
		}
	}
	return out
}

// PatchOS2 copies a source OS/2 table and updates the first and last
// character indices.
func PatchOS2(src []byte, first, last rune) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	if len(out) >= 68 {
		binary.BigEndian.PutUint16(out[64:], uint16(min(first, 0xFFFF)))
		binary.BigEndian.PutUint16(out[66:], uint16(min(last, 0xFFFF)))
	}
	return out
}

// BuildPost writes a version 3.0 post table (no glyph names) keeping the
// italic angle, underline and pitch fields of the source.
func BuildPost(src []byte) []byte {
	out := make([]byte, 32)
	if len(src) >= 16 {
		copy(out, src[:16])
	}
	binary.BigEndian.PutUint32(out, 0x00030000)
	return out
}

func checksum(data []byte) uint32 {
	var sum uint32
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	if rem := len(data) - n; rem > 0 {
		var tail [4]byte
		copy(tail[:], data[n:])
		sum += binary.BigEndian.Uint32(tail[:])
	}
	return sum
}

// Assemble writes an sfnt file from tables: sorted table directory, four
// byte aligned table data, per-table checksums and head.checkSumAdjustment.
func Assemble(tables []Table) []byte {
	sorted := make([]Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })

	n := len(sorted)
	searchRange, entrySelector := 1, 0
	for searchRange*2 <= n {
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 16

	size := 12 + 16*n
	for _, t := range sorted {
		size += (len(t.Data) + 3) &^ 3
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out, sfntVersionTrueType)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	binary.BigEndian.PutUint16(out[6:], uint16(searchRange))
	binary.BigEndian.PutUint16(out[8:], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[10:], uint16(16*n-searchRange))

	off := 12 + 16*n
	headOff := -1
	for i, t := range sorted {
		rec := out[12+16*i:]
		binary.BigEndian.PutUint32(rec, uint32(t.Tag))
		binary.BigEndian.PutUint32(rec[4:], checksum(t.Data))
		binary.BigEndian.PutUint32(rec[8:], uint32(off))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.Data)))
		copy(out[off:], t.Data)
		if t.Tag == TagHead {
			headOff = off
		}
		off += (len(t.Data) + 3) &^ 3
	}

	if headOff >= 0 {
		binary.BigEndian.PutUint32(out[headOff+8:], 0xB1B0AFBA-checksum(out))
	}
	return out
}
