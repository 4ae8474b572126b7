package subset

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/jonwraymond/fontops/truetype"
)

// Merged is a complete glyph set ready for serialization.
type Merged struct {
	// Glyphs is the global glyph list; index is the output glyph id.
	Glyphs []truetype.Glyph

	// Cmap maps every covered code point to its output glyph id.
	Cmap map[rune]uint16

	// MetricsFont is the id of the part whose font-wide tables are used.
	MetricsFont string

	metrics *truetype.Font
	maxp    [][]byte
}

// Merge joins parts into one glyph space. A single part passes through
// unchanged. With several parts, output glyph 0 is the .notdef of the
// metrics part and every part's remaining glyphs follow in part order.
// The metrics part is the first part from primaryID when present, else the
// first part.
func Merge(primaryID string, parts []*Partial) (*Merged, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrMergeConflict)
	}

	metrics := parts[0]
	for _, p := range parts {
		if p.FontID == primaryID {
			metrics = p
			break
		}
	}
	m := &Merged{
		MetricsFont: metrics.FontID,
		metrics:     metrics.src,
		maxp:        make([][]byte, 0, len(parts)),
	}
	for _, p := range parts {
		m.maxp = append(m.maxp, p.src.Table(truetype.TagMaxp))
	}

	if len(parts) == 1 {
		m.Glyphs = slices.Clone(metrics.Glyphs)
		m.Cmap = maps.Clone(metrics.Cmap)
		return m, nil
	}

	upem := metrics.UnitsPerEm()
	total := 1
	for _, p := range parts {
		if p.UnitsPerEm() != upem {
			return nil, fmt.Errorf("%w: %s has %d units per em, %s has %d",
				ErrMergeConflict, p.FontID, p.UnitsPerEm(), metrics.FontID, upem)
		}
		total += len(p.Glyphs) - 1
	}
	if total > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d glyphs", ErrMergeConflict, total)
	}

	m.Glyphs = make([]truetype.Glyph, 1, total)
	m.Glyphs[0] = metrics.Glyphs[0]
	m.Cmap = make(map[rune]uint16)

	for _, p := range parts {
		base := uint16(len(m.Glyphs) - 1)
		remap := func(local uint16) (uint16, bool) {
			if int(local) >= len(p.Glyphs) {
				return 0, false
			}
			if local == 0 {
				return 0, true
			}
			return base + local, true
		}

		for _, g := range p.Glyphs[1:] {
			if truetype.IsComposite(g.Data) {
				data, err := truetype.RewriteGlyph(g.Data, remap)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrMergeConflict, p.FontID, err)
				}
				g.Data = data
			}
			m.Glyphs = append(m.Glyphs, g)
		}
		for cp, local := range p.Cmap {
			if _, dup := m.Cmap[cp]; dup {
				return nil, fmt.Errorf("%w: code point %d mapped by more than one part", ErrMergeConflict, cp)
			}
			global, _ := remap(local)
			m.Cmap[cp] = global
		}
	}
	return m, nil
}

// Bytes serializes the merged glyph set as a TrueType font with cmap,
// glyf, head, hhea, hmtx, loca, maxp, name, OS/2 and post tables. Layout
// and hinting tables are not carried over.
func (m *Merged) Bytes() ([]byte, error) {
	layout := truetype.BuildGlyf(m.Glyphs)

	head, err := truetype.PatchHead(m.metrics.Table(truetype.TagHead), layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFont, m.MetricsFont, err)
	}
	hhea, err := truetype.PatchHhea(m.metrics.Table(truetype.TagHhea), m.Glyphs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFont, m.MetricsFont, err)
	}

	tables := []truetype.Table{
		{Tag: truetype.TagCmap, Data: truetype.BuildCmap(m.Cmap)},
		{Tag: truetype.TagGlyf, Data: layout.Glyf},
		{Tag: truetype.TagHead, Data: head},
		{Tag: truetype.TagHhea, Data: hhea},
		{Tag: truetype.TagHmtx, Data: truetype.BuildHmtx(m.Glyphs)},
		{Tag: truetype.TagLoca, Data: layout.Loca},
		{Tag: truetype.TagMaxp, Data: truetype.MergeMaxp(len(m.Glyphs), m.maxp...)},
		{Tag: truetype.TagPost, Data: truetype.BuildPost(m.metrics.Table(truetype.TagPost))},
	}
	if name := m.metrics.Table(truetype.TagName); name != nil {
		tables = append(tables, truetype.Table{Tag: truetype.TagName, Data: name})
	}
	if os2 := m.metrics.Table(truetype.TagOS2); os2 != nil {
		first, last := m.charRange()
		tables = append(tables, truetype.Table{Tag: truetype.TagOS2, Data: truetype.PatchOS2(os2, first, last)})
	}
	return truetype.Assemble(tables), nil
}

func (m *Merged) charRange() (first, last rune) {
	if len(m.Cmap) == 0 {
		return 0, 0
	}
	first, last = math.MaxInt32, 0
	for cp := range m.Cmap {
		first = min(first, cp)
		last = max(last, cp)
	}
	return first, last
}
