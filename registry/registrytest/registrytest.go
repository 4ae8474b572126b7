// Package registrytest builds registry fonts and snapshots from synthesized
// TrueType data for tests.
package registrytest

import (
	"testing"

	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/truetype/truetypetest"
)

// Font builds a registry font for id with the given fallback chain and
// glyphs.
func Font(t testing.TB, id string, fallback []string, specs ...truetypetest.GlyphSpec) *registry.Font {
	t.Helper()
	return FontWithOptions(t, registry.Descriptor{ID: id, Version: "1.0", Fallback: fallback},
		truetypetest.Options{Family: id}, specs...)
}

// FontWithOptions builds a registry font from a full descriptor and
// synthesis options. An empty File is set to "<id>.ttf".
func FontWithOptions(t testing.TB, desc registry.Descriptor, opts truetypetest.Options, specs ...truetypetest.GlyphSpec) *registry.Font {
	t.Helper()
	if desc.File == "" && len(desc.Files) == 0 {
		desc.File = desc.ID + ".ttf"
	}
	f, err := registry.NewFont(desc, truetypetest.Build(opts, specs...))
	if err != nil {
		t.Fatalf("registry.NewFont(%s): %v", desc.ID, err)
	}
	return f
}

// Snapshot validates fonts into a snapshot.
func Snapshot(t testing.TB, fonts ...*registry.Font) *registry.Snapshot {
	t.Helper()
	s, err := registry.NewSnapshot(fonts...)
	if err != nil {
		t.Fatalf("registry.NewSnapshot: %v", err)
	}
	return s
}

// Runes returns one simple glyph spec per rune.
func Runes(rs ...rune) []truetypetest.GlyphSpec {
	out := make([]truetypetest.GlyphSpec, len(rs))
	for i, r := range rs {
		out[i] = truetypetest.Simple(r)
	}
	return out
}
