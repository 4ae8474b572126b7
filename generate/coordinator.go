package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/observe"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/resilience"
	"github.com/jonwraymond/fontops/store"
)

// Registry supplies the current font snapshot. *registry.Registry
// implements it.
type Registry interface {
	Snapshot() *registry.Snapshot
}

// Config configures a Coordinator.
type Config struct {
	// Registry is required.
	Registry Registry

	// Store is required.
	Store store.Store

	// Generator defaults to NewPipeline with default options.
	Generator Generator

	// Bulkhead caps concurrent generations across all keys. Default: 4
	// concurrent, 30s wait for a slot.
	Bulkhead *resilience.Bulkhead

	// Middleware wraps each generation with tracing, metrics and logging.
	// Default: observe.NopMiddleware().
	Middleware *observe.Middleware
}

// Outcome is the result delivered to every caller of one generation.
type Outcome struct {
	store.Artifact

	// Generated is false when the artifact was served from the store.
	Generated bool

	// Unresolved lists requested code points no font in the chain covers.
	// Only set when Generated is true.
	Unresolved []rune
}

// Coordinator serves artifacts, generating each (font, key) at most once
// at a time.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: a caller's context bounds only its wait; generation continues
//   after the caller gives up and its artifact is still persisted.
// - Errors: failed generations are delivered to every waiter and not
//   cached.
type Coordinator struct {
	registry  Registry
	store     store.Store
	generator Generator
	bulkhead  *resilience.Bulkhead
	mw        *observe.Middleware
	generate  observe.GenerateFunc

	tickets ticketTable
	stats   counters
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Registry == nil {
		return nil, errors.New("generate: registry is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("generate: store is required")
	}
	c := &Coordinator{
		registry:  cfg.Registry,
		store:     cfg.Store,
		generator: cfg.Generator,
		bulkhead:  cfg.Bulkhead,
		mw:        cfg.Middleware,
		tickets:   ticketTable{m: make(map[ticketKey]*ticket)},
	}
	if c.generator == nil {
		c.generator = NewPipeline(PipelineConfig{})
	}
	if c.bulkhead == nil {
		c.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: 4,
			MaxWait:       30 * time.Second,
		})
	}
	if c.mw == nil {
		c.mw = observe.NopMiddleware()
	}
	return c, nil
}

// Stats returns a copy of the coordinator's counters.
func (c *Coordinator) Stats() Stats {
	s := c.stats.snapshot()
	s.InFlight = c.tickets.len()
	return s
}

// GetOrGenerate returns the stored artifact for fontID and set, generating
// and persisting it first if needed.
func (c *Coordinator) GetOrGenerate(ctx context.Context, fontID string, set codepoint.Set) (store.Artifact, error) {
	meta, err := c.meta(fontID, set, observe.OpGenerate)
	if err != nil {
		return store.Artifact{}, err
	}
	key := set.Key()

	art, err := c.store.Read(ctx, fontID, key)
	switch {
	case err == nil:
		c.stats.cacheHits.Add(1)
		c.mw.Metrics().RecordCacheHit(ctx, meta)
		return art, nil
	case !errors.Is(err, store.ErrNotFound):
		return store.Artifact{}, err
	}

	t, state := c.tickets.join(ticketKey{fontID, key}, false)
	if state == ticketJoined {
		c.coalesced(ctx, meta)
	} else {
		c.start(ctx, t, meta, set)
	}
	out, err := t.wait(ctx)
	return out.Artifact, err
}

// ForceRegenerate generates and persists the artifact for fontID and set
// even if one is stored, replacing it. It joins a generation already in
// flight for the same key unless that generation has committed to serving
// the stored artifact, in which case it waits for it and starts a new one.
func (c *Coordinator) ForceRegenerate(ctx context.Context, fontID string, set codepoint.Set) (Outcome, error) {
	meta, err := c.meta(fontID, set, observe.OpRegenerate)
	if err != nil {
		return Outcome{}, err
	}
	c.stats.forced.Add(1)
	k := ticketKey{fontID, set.Key()}

	for {
		t, state := c.tickets.join(k, true)
		switch state {
		case ticketSealed:
			select {
			case <-t.done:
				continue
			case <-ctx.Done():
				return Outcome{}, ctx.Err()
			}
		case ticketJoined:
			c.coalesced(ctx, meta)
		case ticketCreated:
			c.start(ctx, t, meta, set)
		}
		return t.wait(ctx)
	}
}

func (c *Coordinator) meta(fontID string, set codepoint.Set, op string) (observe.FontMeta, error) {
	if set.Len() == 0 {
		return observe.FontMeta{}, fmt.Errorf("%w: empty set", codepoint.ErrInvalidCodepoint)
	}
	f, err := c.registry.Snapshot().Lookup(fontID)
	if err != nil {
		return observe.FontMeta{}, err
	}
	return observe.FontMeta{
		FontID:     fontID,
		Key:        set.Key().String(),
		Version:    f.Descriptor().Version,
		Characters: set.Len(),
		Op:         op,
	}, nil
}

func (c *Coordinator) coalesced(ctx context.Context, meta observe.FontMeta) {
	c.stats.coalesced.Add(1)
	c.mw.Metrics().RecordCoalesced(ctx, meta)
}

// start runs the generation for t on its own goroutine, detached from the
// caller's cancellation.
func (c *Coordinator) start(ctx context.Context, t *ticket, meta observe.FontMeta, set codepoint.Set) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		out, err := c.run(ctx, t, meta, set)
		c.tickets.finish(t, out, err)
	}()
}

func (c *Coordinator) run(ctx context.Context, t *ticket, meta observe.FontMeta, set codepoint.Set) (Outcome, error) {
	key := set.Key()

	// Another generation may have persisted the artifact between the
	// caller's store check and the ticket being created.
	if !c.tickets.isForced(t) {
		art, err := c.store.Read(ctx, meta.FontID, key)
		if err == nil && c.tickets.seal(t) {
			return Outcome{Artifact: art}, nil
		}
	}

	c.stats.generations.Add(1)
	var res Result
	_, err := c.mw.Wrap(func(ctx context.Context, meta observe.FontMeta) ([]byte, error) {
		err := c.bulkhead.Execute(ctx, func(ctx context.Context) error {
			var err error
			res, err = c.generator.Generate(ctx, c.registry.Snapshot(), meta.FontID, set)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(res.Plan.Unresolved) > 0 {
			c.mw.Logger().WithFont(meta).Warn(ctx, "code points not covered by any font in the fallback chain",
				observe.Field{Key: "unresolved", Value: len(res.Plan.Unresolved)},
				observe.Field{Key: "chain", Value: res.Plan.Chain},
			)
		}
		if err := c.store.Write(ctx, meta.FontID, key, res.Bytes); err != nil {
			return nil, err
		}
		return res.Bytes, nil
	})(ctx, meta)
	if err != nil {
		c.stats.failures.Add(1)
		return Outcome{}, err
	}
	return Outcome{
		Artifact:   store.Artifact{Bytes: res.Bytes, ContentType: contentType},
		Generated:  true,
		Unresolved: res.Plan.Unresolved,
	}, nil
}
