// Package codepoint normalizes requested Unicode code points into canonical
// sets and derives the cache keys that address generated artifacts.
//
// A Set is sorted, deduplicated and non-empty, so equal requests always
// produce the same Key regardless of the order or repetition of the input.
// A single code point keys as its decimal value ("65"); several code points
// key as their sorted decimals joined by commas ("65,66,67"). The two forms
// never collide because only the composite form contains a comma.
package codepoint
