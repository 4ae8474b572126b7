package truetype

import (
	"encoding/binary"
	"fmt"
)

// Tag is a four-byte sfnt table tag.
type Tag uint32

// MakeTag builds a Tag from a four character string.
func MakeTag(s string) Tag {
	var b [4]byte
	copy(b[:], s)
	return Tag(binary.BigEndian.Uint32(b[:]))
}

// String returns the tag's four characters.
func (t Tag) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(t))
	return string(b[:])
}

// Table tags read or written by this package.
var (
	TagCmap = MakeTag("cmap")
	TagGlyf = MakeTag("glyf")
	TagHead = MakeTag("head")
	TagHhea = MakeTag("hhea")
	TagHmtx = MakeTag("hmtx")
	TagLoca = MakeTag("loca")
	TagMaxp = MakeTag("maxp")
	TagName = MakeTag("name")
	TagOS2  = MakeTag("OS/2")
	TagPost = MakeTag("post")
	TagCFF  = MakeTag("CFF ")
)

const (
	sfntVersionTrueType = 0x00010000
	sfntVersionApple    = 0x74727565 // 'true'
	sfntVersionCFF      = 0x4F54544F // 'OTTO'
	ttcMagic            = 0x74746366 // 'ttcf'

	headLength = 54
	hheaLength = 36
)

// HMetric is one horizontal metric record.
type HMetric struct {
	Advance uint16
	LSB     int16
}

// Font is a parsed TrueType-outline font. It is read-only after Parse and
// safe for concurrent use.
type Font struct {
	tables     map[Tag][]byte
	numGlyphs  int
	unitsPerEm uint16
	longLoca   bool
	numHMetric int
}

// Parse parses a TrueType font or the first font of a TrueType collection.
// Fonts with CFF outlines are rejected with ErrNotTrueType.
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, ErrInvalidFont
	}
	offset := 0
	if binary.BigEndian.Uint32(data) == ttcMagic {
		if len(data) < 16 {
			return nil, ErrInvalidFont
		}
		if binary.BigEndian.Uint32(data[8:]) == 0 {
			return nil, ErrInvalidFont
		}
		offset = int(binary.BigEndian.Uint32(data[12:]))
		if offset+12 > len(data) {
			return nil, ErrInvalidFont
		}
	}

	switch binary.BigEndian.Uint32(data[offset:]) {
	case sfntVersionTrueType, sfntVersionApple:
	case sfntVersionCFF:
		return nil, ErrNotTrueType
	default:
		return nil, ErrInvalidFont
	}

	numTables := int(binary.BigEndian.Uint16(data[offset+4:]))
	dir := offset + 12
	if dir+16*numTables > len(data) {
		return nil, ErrInvalidFont
	}

	f := &Font{tables: make(map[Tag][]byte, numTables)}
	for i := 0; i < numTables; i++ {
		rec := data[dir+16*i:]
		tag := Tag(binary.BigEndian.Uint32(rec))
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		end := uint64(off) + uint64(length)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: table %s exceeds file", ErrInvalidFont, tag)
		}
		f.tables[tag] = data[off:end]
	}

	if err := f.init(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Font) init() error {
	if _, ok := f.tables[TagCFF]; ok {
		return ErrNotTrueType
	}
	for _, tag := range []Tag{TagHead, TagMaxp, TagHhea, TagHmtx, TagLoca, TagGlyf} {
		if _, ok := f.tables[tag]; !ok {
			if tag == TagGlyf || tag == TagLoca {
				return ErrNotTrueType
			}
			return fmt.Errorf("%w: %s", ErrTableNotFound, tag)
		}
	}

	head := f.tables[TagHead]
	if len(head) < headLength {
		return fmt.Errorf("%w: head", ErrInvalidTable)
	}
	f.unitsPerEm = binary.BigEndian.Uint16(head[18:])
	f.longLoca = int16(binary.BigEndian.Uint16(head[50:])) != 0

	maxp := f.tables[TagMaxp]
	if len(maxp) < 6 {
		return fmt.Errorf("%w: maxp", ErrInvalidTable)
	}
	f.numGlyphs = int(binary.BigEndian.Uint16(maxp[4:]))

	hhea := f.tables[TagHhea]
	if len(hhea) < hheaLength {
		return fmt.Errorf("%w: hhea", ErrInvalidTable)
	}
	f.numHMetric = int(binary.BigEndian.Uint16(hhea[34:]))
	if f.numHMetric == 0 || f.numHMetric > f.numGlyphs {
		return fmt.Errorf("%w: hhea numberOfHMetrics", ErrInvalidTable)
	}
	if len(f.tables[TagHmtx]) < 4*f.numHMetric+2*(f.numGlyphs-f.numHMetric) {
		return fmt.Errorf("%w: hmtx", ErrInvalidTable)
	}

	entry := 2
	if f.longLoca {
		entry = 4
	}
	if len(f.tables[TagLoca]) < entry*(f.numGlyphs+1) {
		return fmt.Errorf("%w: loca", ErrInvalidTable)
	}
	return nil
}

// NumGlyphs returns the glyph count from maxp.
func (f *Font) NumGlyphs() int { return f.numGlyphs }

// UnitsPerEm returns the design units per em from head.
func (f *Font) UnitsPerEm() uint16 { return f.unitsPerEm }

// Table returns the raw bytes of a table, or nil if the font lacks it.
// The returned slice aliases the font data and must not be modified.
func (f *Font) Table(tag Tag) []byte { return f.tables[tag] }

// HasTable reports whether the font contains the table.
func (f *Font) HasTable(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// GlyphData returns the glyf bytes of a glyph. Empty glyphs (spaces) yield
// a zero-length slice.
func (f *Font) GlyphData(gid uint16) ([]byte, error) {
	if int(gid) >= f.numGlyphs {
		return nil, ErrGlyphRange
	}
	loca := f.tables[TagLoca]
	var start, end uint32
	if f.longLoca {
		start = binary.BigEndian.Uint32(loca[4*int(gid):])
		end = binary.BigEndian.Uint32(loca[4*int(gid)+4:])
	} else {
		start = 2 * uint32(binary.BigEndian.Uint16(loca[2*int(gid):]))
		end = 2 * uint32(binary.BigEndian.Uint16(loca[2*int(gid)+2:]))
	}
	glyf := f.tables[TagGlyf]
	if start > end || end > uint32(len(glyf)) {
		return nil, fmt.Errorf("%w: loca entry for glyph %d", ErrInvalidTable, gid)
	}
	return glyf[start:end], nil
}

// HMetric returns the advance width and left side bearing of a glyph.
func (f *Font) HMetric(gid uint16) (HMetric, error) {
	if int(gid) >= f.numGlyphs {
		return HMetric{}, ErrGlyphRange
	}
	hmtx := f.tables[TagHmtx]
	if int(gid) < f.numHMetric {
		rec := hmtx[4*int(gid):]
		return HMetric{
			Advance: binary.BigEndian.Uint16(rec),
			LSB:     int16(binary.BigEndian.Uint16(rec[2:])),
		}, nil
	}
	// Trailing glyphs share the last advance.
	last := hmtx[4*(f.numHMetric-1):]
	lsbOff := 4*f.numHMetric + 2*(int(gid)-f.numHMetric)
	return HMetric{
		Advance: binary.BigEndian.Uint16(last),
		LSB:     int16(binary.BigEndian.Uint16(hmtx[lsbOff:])),
	}, nil
}

// ReadTables returns the tables of an sfnt file in directory order along
// with its sfnt version.
func ReadTables(data []byte) (uint32, []Table, error) {
	if len(data) < 12 {
		return 0, nil, ErrInvalidFont
	}
	version := binary.BigEndian.Uint32(data)
	n := int(binary.BigEndian.Uint16(data[4:]))
	if 12+16*n > len(data) {
		return 0, nil, ErrInvalidFont
	}
	tables := make([]Table, n)
	for i := range tables {
		rec := data[12+16*i:]
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		if uint64(off)+uint64(length) > uint64(len(data)) {
			return 0, nil, fmt.Errorf("%w: table %s exceeds file", ErrInvalidFont, Tag(binary.BigEndian.Uint32(rec)))
		}
		tables[i] = Table{Tag: Tag(binary.BigEndian.Uint32(rec)), Data: data[off : off+length]}
	}
	return version, tables, nil
}
