// Package generate turns font requests into persisted WOFF2 subsets.
//
// A Pipeline derives one artifact: it resolves the requested code points
// through the font's fallback chain, subsets every contributing font, merges
// the partial fonts into one glyph space and encodes the result.
//
// A Coordinator sits in front of the pipeline and the artifact store. It
// serves stored artifacts directly and makes sure that, for any (font, key)
// pair, at most one generation is in flight: concurrent callers join the
// running generation and all receive its result. Generations run detached
// from the caller that started them, so a caller giving up does not waste
// the work; the artifact is still persisted. Failed generations are not
// remembered and the next request retries.
//
// ForceRegenerate rebuilds an artifact even when one is stored, for use
// after a font file changes.
package generate
