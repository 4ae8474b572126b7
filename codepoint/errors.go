package codepoint

import "errors"

// ErrInvalidCodepoint is returned when a token is not a decimal Unicode
// scalar value or the input holds no code points at all.
var ErrInvalidCodepoint = errors.New("codepoint: invalid code point")
