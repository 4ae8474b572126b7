package registry

import "errors"

var (
	// ErrUnknownFont indicates a font id that is not in the snapshot.
	ErrUnknownFont = errors.New("registry: unknown font")

	// ErrInvalidDescriptor indicates a malformed or incomplete descriptor.
	ErrInvalidDescriptor = errors.New("registry: invalid descriptor")

	// ErrDuplicateFont indicates two descriptors share an id.
	ErrDuplicateFont = errors.New("registry: duplicate font id")

	// ErrUnknownFallback indicates a fallback id with no descriptor.
	ErrUnknownFallback = errors.New("registry: unknown fallback font")

	// ErrFallbackCycle indicates the fallback graph contains a cycle.
	ErrFallbackCycle = errors.New("registry: fallback cycle")

	// ErrFontFile indicates the font file is missing or cannot be parsed.
	ErrFontFile = errors.New("registry: unreadable font file")
)
