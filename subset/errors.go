package subset

import "errors"

var (
	// ErrUnsupportedFont indicates a source font without usable TrueType
	// outlines or with tables that cannot be parsed.
	ErrUnsupportedFont = errors.New("subset: unsupported font")

	// ErrMergeConflict indicates partial subsets that cannot share one font:
	// differing units per em, a code point mapped twice or too many glyphs.
	ErrMergeConflict = errors.New("subset: merge conflict")
)
