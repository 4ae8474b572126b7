package generate

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/image/font/sfnt"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/fallback"
	"github.com/jonwraymond/fontops/observe"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/registry/registrytest"
	"github.com/jonwraymond/fontops/store"
	"github.com/jonwraymond/fontops/truetype/truetypetest"
	"github.com/jonwraymond/fontops/woff2"
)

// glyphFor decodes a WOFF2 artifact and looks up r.
func glyphFor(t *testing.T, artifact []byte, r rune) sfnt.GlyphIndex {
	t.Helper()
	ttf, err := woff2.Decode(artifact)
	require.NoError(t, err)
	f, err := sfnt.Parse(ttf)
	require.NoError(t, err)
	var buf sfnt.Buffer
	gid, err := f.GlyphIndex(&buf, r)
	require.NoError(t, err)
	return gid
}

func testSnapshot(t *testing.T, primaryRunes ...rune) *registry.Snapshot {
	t.Helper()
	return registrytest.Snapshot(t,
		registrytest.Font(t, "primary", []string{"fallback"}, registrytest.Runes(primaryRunes...)...),
		registrytest.Font(t, "fallback", nil,
			truetypetest.Simple('x'),
			truetypetest.Unmapped(),
			truetypetest.Composite('y', 1, 2),
		),
	)
}

func TestPipeline_MergesFallbackGlyphs(t *testing.T) {
	p := NewPipeline(PipelineConfig{Parallelism: 2})
	set := codepoint.MustFromRunes('A', 'B', 'x', 'y', 0x4E2D)

	res, err := p.Generate(context.Background(), testSnapshot(t, 'A', 'B'), "primary", set)
	require.NoError(t, err)

	assert.Equal(t, []rune{0x4E2D}, res.Plan.Unresolved)
	assert.Equal(t, fallback.Source{FontID: "fallback"}, res.Plan.Sources['y'])
	for _, r := range []rune{'A', 'B', 'x', 'y'} {
		assert.NotZero(t, glyphFor(t, res.Bytes, r), "rune %q", r)
	}
	assert.Zero(t, glyphFor(t, res.Bytes, 0x4E2D))
	assert.Zero(t, glyphFor(t, res.Bytes, 'C'))
}

func TestPipeline_MergesFacesOfOneFont(t *testing.T) {
	split, err := registry.NewFont(
		registry.Descriptor{ID: "split", Files: []registry.FileRef{{Path: "latin.ttf"}, {Path: "extra.ttf"}}},
		truetypetest.Build(truetypetest.Options{}, truetypetest.Simple('a')),
		truetypetest.Build(truetypetest.Options{}, truetypetest.Simple('b'), truetypetest.Simple('a')),
	)
	require.NoError(t, err)
	snap := registrytest.Snapshot(t, split)

	res, err := NewPipeline(PipelineConfig{}).Generate(context.Background(), snap, "split", codepoint.MustFromRunes('a', 'b'))
	require.NoError(t, err)
	assert.Equal(t, fallback.Source{FontID: "split", Face: 0}, res.Plan.Sources['a'])
	assert.Equal(t, fallback.Source{FontID: "split", Face: 1}, res.Plan.Sources['b'])
	assert.NotZero(t, glyphFor(t, res.Bytes, 'a'))
	assert.NotZero(t, glyphFor(t, res.Bytes, 'b'))
	assert.NotEqual(t, glyphFor(t, res.Bytes, 'a'), glyphFor(t, res.Bytes, 'b'))
}

func TestPipeline_NoResolvableGlyphs(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	_, err := p.Generate(context.Background(), testSnapshot(t, 'A'), "primary", codepoint.MustFromRunes(0x4E2D))
	assert.ErrorIs(t, err, fallback.ErrNoResolvableGlyphs)
}

func TestPipeline_CancelledContext(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, testSnapshot(t, 'A'), "primary", codepoint.MustFromRunes('A', 'x'))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCoordinator_EndToEnd(t *testing.T) {
	reg := registry.NewStatic(testSnapshot(t, 'A', 'B'))
	fs, err := store.NewFileStore(store.Config{Root: t.TempDir()})
	require.NoError(t, err)

	var logs bytes.Buffer
	metrics, err := observe.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	mw := observe.NewMiddleware(
		observe.NewTracer(tracenoop.NewTracerProvider().Tracer("test")),
		metrics,
		observe.NewLoggerWithWriter("debug", &logs),
	)

	c, err := NewCoordinator(Config{Registry: reg, Store: fs, Middleware: mw})
	require.NoError(t, err)
	ctx := context.Background()
	set := codepoint.MustFromRunes('A', 'x', 0x4E2D)

	art, err := c.GetOrGenerate(ctx, "primary", set)
	require.NoError(t, err)
	assert.Equal(t, woff2.ContentType, art.ContentType)
	assert.NotZero(t, glyphFor(t, art.Bytes, 'A'))
	assert.NotZero(t, glyphFor(t, art.Bytes, 'x'))
	assert.Zero(t, glyphFor(t, art.Bytes, 0x4E2D))

	out := logs.String()
	assert.Contains(t, out, "code points not covered by any font in the fallback chain")
	assert.Contains(t, out, "font generation completed")
	assert.Contains(t, out, `"font.id":"primary"`)

	// The font gains a glyph; a forced regeneration picks it up and
	// replaces the stored artifact.
	reg.Replace(testSnapshot(t, 'A', 'B', 0x4E2D))

	cached, err := c.GetOrGenerate(ctx, "primary", set)
	require.NoError(t, err)
	assert.Equal(t, art.Bytes, cached.Bytes, "stored artifact is served until regenerated")

	forced, err := c.ForceRegenerate(ctx, "primary", set)
	require.NoError(t, err)
	assert.True(t, forced.Generated)
	assert.Empty(t, forced.Unresolved)
	assert.NotZero(t, glyphFor(t, forced.Bytes, 0x4E2D))

	after, err := c.GetOrGenerate(ctx, "primary", set)
	require.NoError(t, err)
	assert.Equal(t, forced.Bytes, after.Bytes)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Generations)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Zero(t, stats.Failures)
	assert.False(t, strings.Contains(out, "font generation failed"))
}
