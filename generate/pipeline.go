package generate

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/fallback"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/subset"
	"github.com/jonwraymond/fontops/woff2"
)

// Result is one generated artifact and the plan that produced it.
type Result struct {
	Bytes []byte
	Plan  fallback.Plan
}

// Generator derives artifact bytes for a request against a registry
// snapshot.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations should stop early when ctx is done.
type Generator interface {
	Generate(ctx context.Context, snap *registry.Snapshot, fontID string, set codepoint.Set) (Result, error)
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Parallelism bounds concurrent per-font subset builds within one
	// request. Default: GOMAXPROCS.
	Parallelism int

	// Encoder produces the WOFF2 container. Default: woff2 default options.
	Encoder *woff2.Encoder
}

// Pipeline is the default Generator.
type Pipeline struct {
	resolver    *fallback.Resolver
	builder     *subset.Builder
	encoder     *woff2.Encoder
	parallelism int
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.Encoder == nil {
		cfg.Encoder = woff2.NewEncoder(woff2.Options{})
	}
	return &Pipeline{
		resolver:    fallback.NewResolver(),
		builder:     subset.NewBuilder(),
		encoder:     cfg.Encoder,
		parallelism: cfg.Parallelism,
	}
}

// Generate resolves, subsets, merges and encodes.
func (p *Pipeline) Generate(ctx context.Context, snap *registry.Snapshot, fontID string, set codepoint.Set) (Result, error) {
	plan, err := p.resolver.Resolve(snap, fontID, set)
	if err != nil {
		return Result{}, err
	}

	parts := plan.Partition()
	partials := make([]*subset.Partial, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, part := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := snap.Lookup(part.FontID)
			if err != nil {
				return err
			}
			face := f.Face(part.Face)
			if face == nil {
				return fmt.Errorf("generate: %s has no file %d", part.FontID, part.Face)
			}
			partials[i], err = p.builder.Build(face, part.Runes)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	merged, err := subset.Merge(fontID, partials)
	if err != nil {
		return Result{}, err
	}
	ttf, err := merged.Bytes()
	if err != nil {
		return Result{}, err
	}
	out, err := p.encoder.Encode(ttf)
	if err != nil {
		return Result{}, fmt.Errorf("generate: encode %s: %w", fontID, err)
	}
	return Result{Bytes: out, Plan: plan}, nil
}

var _ Generator = (*Pipeline)(nil)
