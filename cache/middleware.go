package cache

import (
	"context"
	"hash/fnv"
	"sync/atomic"
)

// LoadFunc loads a value on a cache miss.
type LoadFunc func(ctx context.Context) ([]byte, error)

const generationStripes = 256

// ReadThrough serves values from a Cache and falls back to a loader.
//
// Put and Invalidate advance a per-key generation (striped, so unrelated
// keys may share one). A load that observed an older generation never
// leaves its value in the cache, so a value loaded before an overwrite
// cannot shadow the new one.
type ReadThrough struct {
	cache  Cache
	policy Policy
	gens   [generationStripes]atomic.Uint64
}

// NewReadThrough creates a read-through helper. A nil cache disables caching.
func NewReadThrough(cache Cache, policy Policy) *ReadThrough {
	return &ReadThrough{cache: cache, policy: policy}
}

func (r *ReadThrough) enabled() bool {
	return r.cache != nil && r.policy.ShouldCache()
}

func (r *ReadThrough) generation(key string) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &r.gens[h.Sum32()%generationStripes]
}

// Get returns the cached value for key, or calls load and caches its
// result. Errors are NOT cached. The second result reports a cache hit.
func (r *ReadThrough) Get(ctx context.Context, key string, load LoadFunc) ([]byte, bool, error) {
	if !r.enabled() || ValidateKey(key) != nil {
		v, err := load(ctx)
		return v, false, err
	}

	if cached, ok := r.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	gen := r.generation(key)
	seen := gen.Load()
	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	if gen.Load() != seen {
		return v, false, nil
	}
	_ = r.cache.Set(ctx, key, v, r.policy.EffectiveTTL(0))
	// A Put or Invalidate that ran during Set may have been overwritten.
	if gen.Load() != seen {
		_ = r.cache.Delete(ctx, key)
	}
	return v, false, nil
}

// Put stores a freshly produced value, replacing any cached copy.
func (r *ReadThrough) Put(ctx context.Context, key string, value []byte) {
	if !r.enabled() {
		return
	}
	r.generation(key).Add(1)
	_ = r.cache.Set(ctx, key, value, r.policy.EffectiveTTL(0))
}

// Invalidate drops key from the cache.
func (r *ReadThrough) Invalidate(ctx context.Context, key string) {
	if r.cache == nil {
		return
	}
	r.generation(key).Add(1)
	_ = r.cache.Delete(ctx, key)
}
