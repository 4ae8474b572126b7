package subset_test

import (
	"bytes"
	"testing"

	gotext "github.com/go-text/typesetting/font"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/registry/registrytest"
	"github.com/jonwraymond/fontops/subset"
	"github.com/jonwraymond/fontops/truetype"
	"github.com/jonwraymond/fontops/truetype/truetypetest"
)

// compositeFont has glyphs: 0 .notdef, 1 unmapped, 2 'B', 3 'C' = {1, 2}, 4 'D'.
func compositeFont(t *testing.T, id string, fallback ...string) *registry.Font {
	return registrytest.Font(t, id, fallback,
		truetypetest.Unmapped(),
		truetypetest.Simple('B'),
		truetypetest.Composite('C', 1, 2),
		truetypetest.Simple('D'),
	)
}

func TestBuild_CompositeClosure(t *testing.T) {
	p, err := subset.NewBuilder().Build(compositeFont(t, "a").Face(0), []rune{'C'})
	require.NoError(t, err)

	assert.Equal(t, []uint16{0, 1, 2, 3}, p.SourceGlyphs)
	assert.Equal(t, map[rune]uint16{'C': 3}, p.Cmap)

	comps, err := truetype.Components(p.Glyphs[3].Data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2}, comps)
}

func TestBuild_RenumbersDensely(t *testing.T) {
	p, err := subset.NewBuilder().Build(compositeFont(t, "a").Face(0), []rune{'D', 'B', 'Q'})
	require.NoError(t, err)

	assert.Equal(t, []uint16{0, 2, 4}, p.SourceGlyphs)
	assert.Equal(t, map[rune]uint16{'B': 1, 'D': 2}, p.Cmap, "unmapped code points are ignored")
	assert.Equal(t, uint16(600), p.Glyphs[1].Metric.Advance)
	assert.Equal(t, uint16(500), p.Glyphs[0].Metric.Advance)
}

func TestBuild_StripsInstructions(t *testing.T) {
	src := compositeFont(t, "a")
	tt, err := src.Outlines()
	require.NoError(t, err)
	orig, err := tt.GlyphData(2)
	require.NoError(t, err)

	p, err := subset.NewBuilder().Build(src.Face(0), []rune{'B'})
	require.NoError(t, err)
	assert.Len(t, p.Glyphs[1].Data, len(orig)-2)
}

func TestMerge_SinglePartPassThrough(t *testing.T) {
	p, err := subset.NewBuilder().Build(compositeFont(t, "a").Face(0), []rune{'B', 'C'})
	require.NoError(t, err)

	m, err := subset.Merge("a", []*subset.Partial{p})
	require.NoError(t, err)
	assert.Equal(t, p.Cmap, m.Cmap)
	require.Len(t, m.Glyphs, len(p.Glyphs))
	for i := range p.Glyphs {
		assert.Equal(t, p.Glyphs[i], m.Glyphs[i], "glyph %d", i)
	}
	assert.Equal(t, "a", m.MetricsFont)
}

func TestMerge_TwoParts(t *testing.T) {
	a := registrytest.Font(t, "a", []string{"b"}, truetypetest.Simple('x'))
	b := compositeFont(t, "b")

	pa, err := subset.NewBuilder().Build(a.Face(0), []rune{'x'})
	require.NoError(t, err)
	pb, err := subset.NewBuilder().Build(b.Face(0), []rune{'C'})
	require.NoError(t, err)

	m, err := subset.Merge("a", []*subset.Partial{pa, pb})
	require.NoError(t, err)

	// a: .notdef + x; b contributes its 3 non-notdef glyphs.
	require.Len(t, m.Glyphs, 5)
	assert.Equal(t, map[rune]uint16{'x': 1, 'C': 4}, m.Cmap)
	assert.Equal(t, pa.Glyphs[0], m.Glyphs[0])

	comps, err := truetype.Components(m.Glyphs[4].Data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 3}, comps, "component references follow the part's offset")
}

func TestMerge_MetricsFromPrimaryOrFirst(t *testing.T) {
	a := registrytest.Font(t, "a", nil, truetypetest.Simple('x'))
	b := registrytest.Font(t, "b", nil, truetypetest.Simple('y'))
	pa, err := subset.NewBuilder().Build(a.Face(0), []rune{'x'})
	require.NoError(t, err)
	pb, err := subset.NewBuilder().Build(b.Face(0), []rune{'y'})
	require.NoError(t, err)

	m, err := subset.Merge("b", []*subset.Partial{pa, pb})
	require.NoError(t, err)
	assert.Equal(t, "b", m.MetricsFont)

	m, err = subset.Merge("c", []*subset.Partial{pa, pb})
	require.NoError(t, err)
	assert.Equal(t, "a", m.MetricsFont)
}

func TestMerge_UnitsPerEmConflict(t *testing.T) {
	a := registrytest.FontWithOptions(t, registry.Descriptor{ID: "a"}, truetypetest.Options{UnitsPerEm: 1000}, truetypetest.Simple('x'))
	b := registrytest.FontWithOptions(t, registry.Descriptor{ID: "b"}, truetypetest.Options{UnitsPerEm: 2048}, truetypetest.Simple('y'))
	pa, err := subset.NewBuilder().Build(a.Face(0), []rune{'x'})
	require.NoError(t, err)
	pb, err := subset.NewBuilder().Build(b.Face(0), []rune{'y'})
	require.NoError(t, err)

	_, err = subset.Merge("a", []*subset.Partial{pa, pb})
	assert.ErrorIs(t, err, subset.ErrMergeConflict)
}

func TestMerge_DuplicateMapping(t *testing.T) {
	a := registrytest.Font(t, "a", nil, truetypetest.Simple('x'))
	b := registrytest.Font(t, "b", nil, truetypetest.Simple('x'))
	pa, err := subset.NewBuilder().Build(a.Face(0), []rune{'x'})
	require.NoError(t, err)
	pb, err := subset.NewBuilder().Build(b.Face(0), []rune{'x'})
	require.NoError(t, err)

	_, err = subset.Merge("a", []*subset.Partial{pa, pb})
	assert.ErrorIs(t, err, subset.ErrMergeConflict)
}

func TestMerge_NoParts(t *testing.T) {
	_, err := subset.Merge("a", nil)
	assert.ErrorIs(t, err, subset.ErrMergeConflict)
}

func TestBytes_ReadableByParsers(t *testing.T) {
	a := registrytest.Font(t, "a", []string{"b"}, truetypetest.Simple('x'))
	b := compositeFont(t, "b")
	pa, err := subset.NewBuilder().Build(a.Face(0), []rune{'x'})
	require.NoError(t, err)
	pb, err := subset.NewBuilder().Build(b.Face(0), []rune{'C', 'D'})
	require.NoError(t, err)
	m, err := subset.Merge("a", []*subset.Partial{pa, pb})
	require.NoError(t, err)

	data, err := m.Bytes()
	require.NoError(t, err)

	sf, err := sfnt.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, len(m.Glyphs), sf.NumGlyphs())
	var buf sfnt.Buffer
	for cp, want := range m.Cmap {
		got, err := sf.GlyphIndex(&buf, cp)
		require.NoError(t, err)
		assert.Equal(t, sfnt.GlyphIndex(want), got, "code point %q", cp)
	}
	name, err := sf.Name(&buf, sfnt.NameIDFamily)
	require.NoError(t, err)
	assert.Equal(t, "a", name, "name table comes from the metrics font")

	face, err := gotext.ParseTTF(bytes.NewReader(data))
	require.NoError(t, err)
	_, ok := face.NominalGlyph('D')
	assert.True(t, ok)

	tt, err := truetype.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, len(m.Glyphs), tt.NumGlyphs())
}

func TestBuild_RealFont(t *testing.T) {
	src, err := registry.NewFont(registry.Descriptor{ID: "go", File: "Go-Regular.ttf"}, goregular.TTF)
	require.NoError(t, err)

	text := []rune("Hello, wörld")
	p, err := subset.NewBuilder().Build(src.Face(0), text)
	require.NoError(t, err)
	m, err := subset.Merge("go", []*subset.Partial{p})
	require.NoError(t, err)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Less(t, len(data), len(goregular.TTF)/4)

	sf, err := sfnt.Parse(data)
	require.NoError(t, err)
	var buf sfnt.Buffer
	for _, r := range text {
		gid, err := sf.GlyphIndex(&buf, r)
		require.NoError(t, err)
		assert.NotZero(t, gid, "rune %q", r)
		_, err = sf.LoadGlyph(&buf, gid, 1<<6*12, nil)
		require.NoError(t, err, "rune %q outline", r)
	}
	gid, err := sf.GlyphIndex(&buf, 'Z')
	require.NoError(t, err)
	assert.Zero(t, gid)
}
