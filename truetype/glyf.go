package truetype

import (
	"encoding/binary"
	"fmt"
)

// Composite glyph component flags.
const (
	argsAreWords    = 0x0001
	haveScale       = 0x0008
	moreComponents  = 0x0020
	haveXYScale     = 0x0040
	haveTwoByTwo    = 0x0080
	haveInstruction = 0x0100
)

const glyphHeaderLength = 10

// Bounds is a glyph bounding box in font units.
type Bounds struct {
	XMin, YMin, XMax, YMax int16
}

// IsComposite reports whether glyph data describes a composite glyph.
func IsComposite(data []byte) bool {
	return len(data) >= glyphHeaderLength && int16(binary.BigEndian.Uint16(data)) < 0
}

// GlyphBounds returns the bounding box stored in the glyph header. The
// second result is false for empty glyphs.
func GlyphBounds(data []byte) (Bounds, bool) {
	if len(data) < glyphHeaderLength {
		return Bounds{}, false
	}
	return Bounds{
		XMin: int16(binary.BigEndian.Uint16(data[2:])),
		YMin: int16(binary.BigEndian.Uint16(data[4:])),
		XMax: int16(binary.BigEndian.Uint16(data[6:])),
		YMax: int16(binary.BigEndian.Uint16(data[8:])),
	}, true
}

// component is the location of one component record inside composite data.
type component struct {
	flagsOff int
	glyph    uint16
	next     int
}

// walkComponents iterates the component records of a composite glyph.
// It returns the offset just past the last record.
func walkComponents(data []byte, fn func(c component)) (int, error) {
	off := glyphHeaderLength
	for {
		if off+4 > len(data) {
			return 0, fmt.Errorf("%w: truncated composite glyph", ErrInvalidTable)
		}
		flags := binary.BigEndian.Uint16(data[off:])
		c := component{flagsOff: off, glyph: binary.BigEndian.Uint16(data[off+2:])}
		n := off + 4
		if flags&argsAreWords != 0 {
			n += 4
		} else {
			n += 2
		}
		switch {
		case flags&haveScale != 0:
			n += 2
		case flags&haveXYScale != 0:
			n += 4
		case flags&haveTwoByTwo != 0:
			n += 8
		}
		if n > len(data) {
			return 0, fmt.Errorf("%w: truncated composite glyph", ErrInvalidTable)
		}
		c.next = n
		fn(c)
		off = n
		if flags&moreComponents == 0 {
			return off, nil
		}
	}
}

// Components returns the glyph indices referenced by a composite glyph, in
// record order. Simple and empty glyphs have no components.
func Components(data []byte) ([]uint16, error) {
	if !IsComposite(data) {
		return nil, nil
	}
	var out []uint16
	_, err := walkComponents(data, func(c component) {
		out = append(out, c.glyph)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RewriteGlyph returns a copy of a glyph with its hinting instructions
// removed and, for composites, every component index passed through remap.
// remap reports false for an index it cannot map, which is an error.
func RewriteGlyph(data []byte, remap func(uint16) (uint16, bool)) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < glyphHeaderLength {
		return nil, fmt.Errorf("%w: glyph shorter than header", ErrInvalidTable)
	}
	if IsComposite(data) {
		return rewriteComposite(data, remap)
	}
	return stripSimple(data)
}

func rewriteComposite(data []byte, remap func(uint16) (uint16, bool)) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	var lastFlags int
	var missing = -1
	end, err := walkComponents(out, func(c component) {
		lastFlags = c.flagsOff
		to, ok := remap(c.glyph)
		if !ok {
			missing = int(c.glyph)
			return
		}
		binary.BigEndian.PutUint16(out[c.flagsOff+2:], to)
	})
	if err != nil {
		return nil, err
	}
	if missing >= 0 {
		return nil, fmt.Errorf("%w: component glyph %d not in subset", ErrInvalidTable, missing)
	}

	flags := binary.BigEndian.Uint16(out[lastFlags:])
	binary.BigEndian.PutUint16(out[lastFlags:], flags&^haveInstruction)
	return out[:end], nil
}

func stripSimple(data []byte) ([]byte, error) {
	contours := int(int16(binary.BigEndian.Uint16(data)))
	instrOff := glyphHeaderLength + 2*contours
	if instrOff+2 > len(data) {
		return nil, fmt.Errorf("%w: truncated simple glyph", ErrInvalidTable)
	}
	instrLen := int(binary.BigEndian.Uint16(data[instrOff:]))
	rest := instrOff + 2 + instrLen
	if rest > len(data) {
		return nil, fmt.Errorf("%w: truncated glyph instructions", ErrInvalidTable)
	}

	out := make([]byte, 0, len(data)-instrLen)
	out = append(out, data[:instrOff]...)
	out = append(out, 0, 0)
	out = append(out, data[rest:]...)
	return out, nil
}
