package codepoint

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxScalar is the largest Unicode scalar value.
const MaxScalar = utf8.MaxRune

// Set is a canonical, non-empty, ascending list of distinct Unicode scalar
// values. The zero Set is empty and is never returned by this package's
// constructors.
type Set struct {
	runes []rune
}

// Parse splits a comma-separated list of decimal code points, trims each
// token and normalizes the result.
func Parse(raw string) (Set, error) {
	if strings.TrimSpace(raw) == "" {
		return Set{}, fmt.Errorf("%w: empty list", ErrInvalidCodepoint)
	}
	return Normalize(strings.Split(raw, ","))
}

// Normalize converts decimal tokens into a Set. Every token must be a
// non-negative integer no greater than MaxScalar and outside the surrogate
// range.
func Normalize(tokens []string) (Set, error) {
	if len(tokens) == 0 {
		return Set{}, fmt.Errorf("%w: empty list", ErrInvalidCodepoint)
	}
	runes := make([]rune, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return Set{}, fmt.Errorf("%w: %q", ErrInvalidCodepoint, tok)
		}
		r := rune(v)
		if !valid(r) || v > MaxScalar {
			return Set{}, fmt.Errorf("%w: %q", ErrInvalidCodepoint, tok)
		}
		runes = append(runes, r)
	}
	return canonical(runes), nil
}

// FromRunes builds a Set from runes.
func FromRunes(runes []rune) (Set, error) {
	if len(runes) == 0 {
		return Set{}, fmt.Errorf("%w: empty list", ErrInvalidCodepoint)
	}
	for _, r := range runes {
		if !valid(r) {
			return Set{}, fmt.Errorf("%w: %d", ErrInvalidCodepoint, r)
		}
	}
	return canonical(slices.Clone(runes)), nil
}

// MustFromRunes is FromRunes that panics on error. Intended for tests and
// package-level values.
func MustFromRunes(runes ...rune) Set {
	s, err := FromRunes(runes)
	if err != nil {
		panic(err)
	}
	return s
}

func valid(r rune) bool {
	return r >= 0 && r <= MaxScalar && (r < 0xD800 || r > 0xDFFF)
}

func canonical(runes []rune) Set {
	slices.Sort(runes)
	return Set{runes: slices.Compact(runes)}
}

// Len returns the number of code points.
func (s Set) Len() int { return len(s.runes) }

// Runes returns a copy of the code points in ascending order.
func (s Set) Runes() []rune { return slices.Clone(s.runes) }

// Contains reports whether r is in the set.
func (s Set) Contains(r rune) bool {
	_, ok := slices.BinarySearch(s.runes, r)
	return ok
}

// Equal reports whether both sets hold the same code points.
func (s Set) Equal(o Set) bool { return slices.Equal(s.runes, o.runes) }

// Key returns the cache key of the set.
func (s Set) Key() Key {
	var b strings.Builder
	for i, r := range s.runes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(r), 10))
	}
	return Key(b.String())
}

// String renders the set as its key.
func (s Set) String() string { return string(s.Key()) }

// Key identifies an artifact within one font.
type Key string

// String returns the key text.
func (k Key) String() string { return string(k) }

// IsComposite reports whether the key covers more than one code point.
func (k Key) IsComposite() bool { return strings.Contains(string(k), ",") }

// Path returns the artifact path relative to the font's directory:
// "{cp}.woff2" for a single code point, "cache/{a,b}.woff2" otherwise.
func (k Key) Path() string {
	if k.IsComposite() {
		return "cache/" + string(k) + ".woff2"
	}
	return string(k) + ".woff2"
}

// ParseKey parses a key in its canonical text form. Keys that parse but are
// not canonical (unsorted, duplicated, padded) are rejected so that one set
// maps to exactly one stored path.
func ParseKey(raw string) (Key, Set, error) {
	s, err := Parse(raw)
	if err != nil {
		return "", Set{}, err
	}
	k := s.Key()
	if string(k) != raw {
		return "", Set{}, fmt.Errorf("%w: non-canonical key %q", ErrInvalidCodepoint, raw)
	}
	return k, s, nil
}
