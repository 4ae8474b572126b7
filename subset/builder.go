package subset

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/truetype"
)

// Partial is the subset of one source face.
type Partial struct {
	// FontID is the registry id of the source.
	FontID string

	// Face is the source face's index within its font.
	Face int

	// Glyphs is the dense glyph list; index is the new glyph id.
	Glyphs []truetype.Glyph

	// SourceGlyphs maps each new glyph id to its id in the source font.
	SourceGlyphs []uint16

	// Cmap maps requested code points to new glyph ids.
	Cmap map[rune]uint16

	src *truetype.Font
}

// UnitsPerEm returns the source font's design units per em.
func (p *Partial) UnitsPerEm() uint16 { return p.src.UnitsPerEm() }

// Builder cuts Partials from registry font faces. It holds no state and
// is safe for concurrent use.
type Builder struct{}

// NewBuilder returns a Builder.
func NewBuilder() *Builder { return &Builder{} }

// Build subsets src to the glyphs needed for cps. Code points src does not
// map are ignored.
func (b *Builder) Build(src *registry.Face, cps []rune) (*Partial, error) {
	tt, err := src.Outlines()
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %d: %v", ErrUnsupportedFont, src.FontID(), src.Index(), err)
	}

	roots := []uint16{0}
	mapped := make(map[rune]uint16, len(cps))
	for _, cp := range cps {
		gid, ok := src.GlyphIndex(cp)
		if !ok {
			continue
		}
		mapped[cp] = gid
		roots = append(roots, gid)
	}

	closure, err := glyphClosure(tt, roots)
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %d: %v", ErrUnsupportedFont, src.FontID(), src.Index(), err)
	}

	ids := slices.Sorted(maps.Keys(closure))
	newID := make(map[uint16]uint16, len(ids))
	for i, gid := range ids {
		newID[gid] = uint16(i)
	}
	remap := func(old uint16) (uint16, bool) {
		n, ok := newID[old]
		return n, ok
	}

	p := &Partial{
		FontID:       src.FontID(),
		Face:         src.Index(),
		Glyphs:       make([]truetype.Glyph, len(ids)),
		SourceGlyphs: ids,
		Cmap:         make(map[rune]uint16, len(mapped)),
		src:          tt,
	}
	for i, gid := range ids {
		data, err := tt.GlyphData(gid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s file %d: %v", ErrUnsupportedFont, src.FontID(), src.Index(), err)
		}
		data, err = truetype.RewriteGlyph(data, remap)
		if err != nil {
			return nil, fmt.Errorf("%w: %s file %d glyph %d: %v", ErrUnsupportedFont, src.FontID(), src.Index(), gid, err)
		}
		m, err := tt.HMetric(gid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s file %d: %v", ErrUnsupportedFont, src.FontID(), src.Index(), err)
		}
		p.Glyphs[i] = truetype.Glyph{Data: data, Metric: m}
	}
	for cp, gid := range mapped {
		p.Cmap[cp] = newID[gid]
	}
	return p, nil
}

// glyphClosure returns roots plus every glyph reachable through composite
// component references. It uses a work queue so deeply nested composites
// cannot exhaust the stack.
func glyphClosure(tt *truetype.Font, roots []uint16) (map[uint16]struct{}, error) {
	seen := make(map[uint16]struct{}, len(roots))
	queue := make([]uint16, 0, len(roots))
	for _, gid := range roots {
		if _, ok := seen[gid]; !ok {
			seen[gid] = struct{}{}
			queue = append(queue, gid)
		}
	}
	for len(queue) > 0 {
		gid := queue[0]
		queue = queue[1:]

		data, err := tt.GlyphData(gid)
		if err != nil {
			return nil, err
		}
		comps, err := truetype.Components(data)
		if err != nil {
			return nil, err
		}
		for _, c := range comps {
			if int(c) >= tt.NumGlyphs() {
				return nil, fmt.Errorf("glyph %d references missing glyph %d", gid, c)
			}
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				queue = append(queue, c)
			}
		}
	}
	return seen, nil
}
