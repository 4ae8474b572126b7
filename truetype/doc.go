// Package truetype reads and writes the sfnt tables needed to cut a
// TrueType-outline font down to a glyph subset.
//
// It parses the table directory and the
// glyph-addressing tables (head, maxp, hhea, hmtx, loca, glyf) of a source
// font, and it serializes a new font from a dense glyph list plus the
// metrics tables of a chosen source. Character-to-glyph lookup on the
// source side is left to the registry's glyph inspection library.
package truetype
