// Package fallback assigns each requested code point to the font that will
// supply its glyph.
//
// The chain for a font is the font itself followed by a depth-first walk of
// its declared fallbacks, in declaration order. Each code point goes to the
// first font in the chain whose character map covers it. Code points no
// font covers are reported as unresolved rather than failing the request,
// unless none resolve at all.
package fallback
