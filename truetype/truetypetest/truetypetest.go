// Package truetypetest synthesizes small TrueType fonts for tests.
//
// Every generated font carries the tables a browser and the common Go font
// parsers expect (cmap, glyf, head, hhea, hmtx, loca, maxp, name, OS/2,
// post). Glyph 0 is always .notdef; the i-th GlyphSpec becomes glyph i+1.
package truetypetest

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/jonwraymond/fontops/truetype"
)

// Options configures a synthesized font.
type Options struct {
	// Family is written as name ID 1. Default: "Test".
	Family string

	// UnitsPerEm defaults to 1000.
	UnitsPerEm uint16
}

// GlyphSpec describes one glyph.
type GlyphSpec struct {
	// Rune maps the glyph in cmap. Zero leaves it unmapped (component only).
	Rune rune

	// Advance defaults to 600.
	Advance uint16

	// Components makes the glyph a composite of the given glyph ids.
	Components []uint16
}

// Simple returns a mapped single-contour glyph.
func Simple(r rune) GlyphSpec {
	return GlyphSpec{Rune: r}
}

// Unmapped returns a glyph with no cmap entry.
func Unmapped() GlyphSpec {
	return GlyphSpec{}
}

// Composite returns a mapped composite glyph built from the given glyph ids.
func Composite(r rune, parts ...uint16) GlyphSpec {
	return GlyphSpec{Rune: r, Components: parts}
}

// Build serializes a font with a .notdef glyph followed by specs.
func Build(opts Options, specs ...GlyphSpec) []byte {
	if opts.Family == "" {
		opts.Family = "Test"
	}
	if opts.UnitsPerEm == 0 {
		opts.UnitsPerEm = 1000
	}

	glyphs := make([]truetype.Glyph, 0, len(specs)+1)
	glyphs = append(glyphs, truetype.Glyph{Data: simpleGlyph(0), Metric: truetype.HMetric{Advance: 500}})
	cmap := make(map[rune]uint16)
	first, last := rune(0xFFFF), rune(0)
	for i, s := range specs {
		adv := s.Advance
		if adv == 0 {
			adv = 600
		}
		data := simpleGlyph(i + 1)
		if len(s.Components) > 0 {
			data = compositeGlyph(s.Components)
		}
		glyphs = append(glyphs, truetype.Glyph{Data: data, Metric: truetype.HMetric{Advance: adv}})
		if s.Rune != 0 {
			cmap[s.Rune] = uint16(i + 1)
			first = min(first, s.Rune)
			last = max(last, s.Rune)
		}
	}

	layout := truetype.BuildGlyf(glyphs)
	head := headTable(opts.UnitsPerEm)
	head, _ = truetype.PatchHead(head, layout)
	hhea, _ := truetype.PatchHhea(hheaTable(), glyphs)

	return truetype.Assemble([]truetype.Table{
		{Tag: truetype.TagCmap, Data: truetype.BuildCmap(cmap)},
		{Tag: truetype.TagGlyf, Data: layout.Glyf},
		{Tag: truetype.TagHead, Data: head},
		{Tag: truetype.TagHhea, Data: hhea},
		{Tag: truetype.TagHmtx, Data: truetype.BuildHmtx(glyphs)},
		{Tag: truetype.TagLoca, Data: layout.Loca},
		{Tag: truetype.TagMaxp, Data: maxpTable(len(glyphs))},
		{Tag: truetype.TagName, Data: nameTable(opts.Family)},
		{Tag: truetype.TagOS2, Data: truetype.PatchOS2(os2Table(), first, last)},
		{Tag: truetype.TagPost, Data: truetype.BuildPost(nil)},
	})
}

func put16(b []byte, off int, v uint16) { binary.BigEndian.PutUint16(b[off:], v) }
func put32(b []byte, off int, v uint32) { binary.BigEndian.PutUint32(b[off:], v) }

// simpleGlyph draws a rectangle whose height varies with seed so glyphs
// differ byte-wise. It carries two bytes of hinting instructions.
func simpleGlyph(seed int) []byte {
	h := uint16(500 + 10*(seed%50))
	b := make([]byte, 0, 40)
	hdr := make([]byte, 10)
	put16(hdr, 0, 1)
	put16(hdr, 6, 400)
	put16(hdr, 8, h)
	b = append(b, hdr...)
	b = append(b, 0, 3)          // endPtsOfContours[0]
	b = append(b, 0, 2, 0xB0, 0) // instructionLength, PUSHB[0] 0
	b = append(b, 1, 1, 1, 1)    // on-curve flags, long coordinates
	for _, dx := range []int16{0, 400, 0, -400} {
		b = binary.BigEndian.AppendUint16(b, uint16(dx))
	}
	for _, dy := range []int16{0, 0, int16(h), 0} {
		b = binary.BigEndian.AppendUint16(b, uint16(dy))
	}
	return b
}

func compositeGlyph(parts []uint16) []byte {
	b := make([]byte, 10)
	put16(b, 0, 0xFFFF)
	put16(b, 6, 800)
	put16(b, 8, 1000)
	for i, gid := range parts {
		flags := uint16(0x0001 | 0x0002) // word args, xy values
		if i < len(parts)-1 {
			flags |= 0x0020
		} else {
			flags |= 0x0100
		}
		b = binary.BigEndian.AppendUint16(b, flags)
		b = binary.BigEndian.AppendUint16(b, gid)
		b = binary.BigEndian.AppendUint16(b, uint16(400*i))
		b = binary.BigEndian.AppendUint16(b, 0)
	}
	return append(b, 0, 1, 0xB0)
}

func headTable(upem uint16) []byte {
	b := make([]byte, 54)
	put32(b, 0, 0x00010000)
	put32(b, 4, 0x00010000)
	put32(b, 12, 0x5F0F3CF5)
	put16(b, 16, 0x000B)
	put16(b, 18, upem)
	put16(b, 46, 8)
	put16(b, 48, 2)
	return b
}

func hheaTable() []byte {
	b := make([]byte, 36)
	put32(b, 0, 0x00010000)
	put16(b, 4, 800)
	put16(b, 6, 0xFF38) // -200
	put16(b, 18, 1)     // caretSlopeRise
	return b
}

func maxpTable(numGlyphs int) []byte {
	b := make([]byte, 32)
	put32(b, 0, 0x00010000)
	put16(b, 4, uint16(numGlyphs))
	put16(b, 6, 4)  // maxPoints
	put16(b, 8, 1)  // maxContours
	put16(b, 10, 8) // maxCompositePoints
	put16(b, 12, 2) // maxCompositeContours
	put16(b, 14, 2) // maxZones
	put16(b, 28, 2) // maxComponentElements
	put16(b, 30, 1) // maxComponentDepth
	return b
}

func os2Table() []byte {
	b := make([]byte, 96)
	put16(b, 0, 4)
	put16(b, 2, 500)
	put16(b, 4, 400)
	put16(b, 6, 5)
	put16(b, 62, 0x40)
	put16(b, 68, 800)
	put16(b, 70, 0xFF38)
	put16(b, 74, 800)
	put16(b, 76, 200)
	put32(b, 78, 1)
	put16(b, 86, 500)
	put16(b, 88, 700)
	put16(b, 92, 32)
	put16(b, 94, 1)
	return b
}

func nameTable(family string) []byte {
	str := utf16.Encode([]rune(family))
	b := make([]byte, 18, 18+2*len(str))
	put16(b, 2, 1)  // count
	put16(b, 4, 18) // stringOffset
	put16(b, 6, 3)  // platform Windows
	put16(b, 8, 1)  // encoding Unicode BMP
	put16(b, 10, 0x0409)
	put16(b, 12, 1) // family
	put16(b, 14, uint16(2*len(str)))
	for _, u := range str {
		b = binary.BigEndian.AppendUint16(b, u)
	}
	return b
}
