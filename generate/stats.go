package generate

import "sync/atomic"

// Stats is a point-in-time copy of Coordinator counters.
type Stats struct {
	// Generations counts pipeline runs, successful or not.
	Generations int64
	// Failures counts generations that ended in an error.
	Failures int64
	// Coalesced counts callers that joined an in-flight generation.
	Coalesced int64
	// CacheHits counts requests served from the store without a ticket.
	CacheHits int64
	// Forced counts ForceRegenerate calls.
	Forced int64
	// InFlight is the number of generations currently running.
	InFlight int
}

type counters struct {
	generations atomic.Int64
	failures    atomic.Int64
	coalesced   atomic.Int64
	cacheHits   atomic.Int64
	forced      atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Generations: c.generations.Load(),
		Failures:    c.failures.Load(),
		Coalesced:   c.coalesced.Load(),
		CacheHits:   c.cacheHits.Load(),
		Forced:      c.forced.Load(),
	}
}
