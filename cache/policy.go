package cache

import "time"

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxBytes bounds the total size of cached values. The least recently
	// used entries are evicted first. If zero, size is unbounded.
	MaxBytes int64

	// MaxEntryBytes rejects single values larger than this. If zero, the
	// limit is MaxBytes.
	MaxEntryBytes int64
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 10 minutes, MaxTTL: 1 hour, MaxBytes: 64 MiB, MaxEntryBytes: 4 MiB
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:    10 * time.Minute,
		MaxTTL:        time.Hour,
		MaxBytes:      64 << 20,
		MaxEntryBytes: 4 << 20,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}

// Admits reports whether a value of size n may be cached at all.
func (p Policy) Admits(n int) bool {
	limit := p.MaxEntryBytes
	if limit <= 0 {
		limit = p.MaxBytes
	}
	return limit <= 0 || int64(n) <= limit
}
