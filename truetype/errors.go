package truetype

import "errors"

// Sentinel errors for font parsing.
var (
	// ErrInvalidFont indicates the sfnt header or table directory is malformed.
	ErrInvalidFont = errors.New("truetype: invalid font")

	// ErrInvalidTable indicates a table is truncated or internally inconsistent.
	ErrInvalidTable = errors.New("truetype: invalid table")

	// ErrTableNotFound indicates a required table is missing.
	ErrTableNotFound = errors.New("truetype: table not found")

	// ErrNotTrueType indicates the font uses CFF outlines or no glyf table.
	ErrNotTrueType = errors.New("truetype: font has no TrueType outlines")

	// ErrGlyphRange indicates a glyph index outside the font's glyph count.
	ErrGlyphRange = errors.New("truetype: glyph index out of range")
)
