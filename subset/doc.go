// Package subset cuts TrueType fonts down to the glyphs needed for a set of
// code points and merges cuts from several fonts into one font file.
//
// Builder produces a Partial per source font: glyph 0 (.notdef), the glyphs
// the requested code points map to, and every glyph those reference as
// composite components, renumbered densely in ascending original order
// with hinting instructions removed. Merge joins Partials into a single
// glyph space and Merged.Bytes serializes the result.
package subset
