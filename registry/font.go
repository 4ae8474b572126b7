package registry

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"

	"github.com/jonwraymond/fontops/truetype"
)

// Metadata is read from the font file when it is loaded.
type Metadata struct {
	Family     string
	UnitsPerEm uint16
	NumGlyphs  int
}

// Face is one parsed font file of a Font. It is read-only and safe for
// concurrent use.
type Face struct {
	fontID string
	index  int
	path   string
	meta   Metadata

	face *font.Font

	outlines   *truetype.Font
	outlineErr error
}

func newFace(fontID string, index int, data []byte) (*Face, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %d: %v", ErrFontFile, fontID, index, err)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %d: %v", ErrFontFile, fontID, index, err)
	}

	meta := Metadata{
		UnitsPerEm: uint16(sf.UnitsPerEm()),
		NumGlyphs:  sf.NumGlyphs(),
	}
	var buf sfnt.Buffer
	if name, err := sf.Name(&buf, sfnt.NameIDFamily); err == nil {
		meta.Family = name
	}

	fc := &Face{fontID: fontID, index: index, meta: meta, face: face.Font}
	fc.outlines, fc.outlineErr = truetype.Parse(data)
	return fc, nil
}

// FontID returns the id of the font the face belongs to.
func (fc *Face) FontID() string { return fc.fontID }

// Index returns the face's position in its font's file list.
func (fc *Face) Index() int { return fc.index }

// Path returns the file the face was loaded from, if any.
func (fc *Face) Path() string { return fc.path }

// Metadata returns values read from the face's file.
func (fc *Face) Metadata() Metadata { return fc.meta }

// GlyphIndex returns the glyph the face's character map assigns to r.
// Unmapped runes and runes mapped to .notdef report false.
func (fc *Face) GlyphIndex(r rune) (uint16, bool) {
	gid, ok := fc.face.NominalGlyph(r)
	if !ok || gid == 0 {
		return 0, false
	}
	return uint16(gid), true
}

// HasGlyph reports whether the face maps r to a real glyph.
func (fc *Face) HasGlyph(r rune) bool {
	_, ok := fc.GlyphIndex(r)
	return ok
}

// Outlines returns the face's TrueType tables, or the parse error for
// files that have none (CFF outlines, damaged glyf/loca).
func (fc *Face) Outlines() (*truetype.Font, error) {
	return fc.outlines, fc.outlineErr
}

// Font is a loaded descriptor with one face per font file. It is
// read-only and safe for concurrent use.
type Font struct {
	desc  Descriptor
	faces []*Face
}

// NewFont parses files as the font files of desc, in descriptor order.
// Any font go-text can read is accepted for coverage queries; files
// without TrueType outlines load but report the reason from Outlines.
func NewFont(desc Descriptor, files ...[]byte) (*Font, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s: no font data", ErrFontFile, desc.ID)
	}

	f := &Font{desc: desc, faces: make([]*Face, 0, len(files))}
	for i, data := range files {
		fc, err := newFace(desc.ID, i, data)
		if err != nil {
			return nil, err
		}
		f.faces = append(f.faces, fc)
	}
	if f.desc.Family == "" {
		f.desc.Family = f.faces[0].meta.Family
	}
	return f, nil
}

// ID returns the font id.
func (f *Font) ID() string { return f.desc.ID }

// Descriptor returns a copy of the font's descriptor.
func (f *Font) Descriptor() Descriptor { return f.desc }

// Faces returns the font's faces in file order.
func (f *Font) Faces() []*Face { return f.faces }

// Face returns the face at index i, or nil when out of range.
func (f *Font) Face(i int) *Face {
	if i < 0 || i >= len(f.faces) {
		return nil
	}
	return f.faces[i]
}

// FaceFor returns the first face that maps r.
func (f *Font) FaceFor(r rune) (*Face, bool) {
	for _, fc := range f.faces {
		if fc.HasGlyph(r) {
			return fc, true
		}
	}
	return nil, false
}

// Metadata returns values read from the first face.
func (f *Font) Metadata() Metadata { return f.faces[0].meta }

// Path returns the file the first face was loaded from, if any.
func (f *Font) Path() string { return f.faces[0].path }

// HasGlyph reports whether any face maps r to a real glyph.
func (f *Font) HasGlyph(r rune) bool {
	_, ok := f.FaceFor(r)
	return ok
}

// Outlines returns the first face's TrueType tables.
func (f *Font) Outlines() (*truetype.Font, error) {
	return f.faces[0].Outlines()
}
