package generate

import (
	"context"
	"sync"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/woff2"
)

const contentType = woff2.ContentType

type ticketKey struct {
	fontID string
	key    codepoint.Key
}

// ticket is one in-flight generation. Its fields other than done are
// guarded by the owning ticketTable's mutex until done is closed; after
// that out and err are read-only.
type ticket struct {
	key  ticketKey
	done chan struct{}

	// forced is set when a ForceRegenerate caller owns or joined the
	// ticket; the generation must then not be satisfied from the store.
	forced bool
	// sealed is set once the generation has committed to serving the
	// stored artifact; forced callers can no longer join.
	sealed bool
	// waiters counts callers, the initiator included.
	waiters int

	out Outcome
	err error
}

// wait blocks until the ticket resolves or ctx ends.
func (t *ticket) wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.out, t.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

type ticketTable struct {
	mu sync.Mutex
	m  map[ticketKey]*ticket
}

type joinState int

const (
	ticketCreated joinState = iota
	ticketJoined
	// ticketSealed means the existing ticket cannot be joined by a forced
	// caller; wait for it and retry.
	ticketSealed
)

// join returns the ticket for k, creating it if absent. With forced set an
// existing ticket is marked forced, unless it is already sealed.
func (tt *ticketTable) join(k ticketKey, forced bool) (*ticket, joinState) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if t, ok := tt.m[k]; ok {
		if forced && t.sealed {
			return t, ticketSealed
		}
		t.forced = t.forced || forced
		t.waiters++
		return t, ticketJoined
	}
	t := &ticket{key: k, done: make(chan struct{}), forced: forced, waiters: 1}
	tt.m[k] = t
	return t, ticketCreated
}

func (tt *ticketTable) isForced(t *ticket) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return t.forced
}

// seal commits t to the stored artifact unless a forced caller joined.
func (tt *ticketTable) seal(t *ticket) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if t.forced {
		return false
	}
	t.sealed = true
	return true
}

// finish publishes the result, removes the ticket and wakes every waiter.
func (tt *ticketTable) finish(t *ticket, out Outcome, err error) {
	tt.mu.Lock()
	t.out, t.err = out, err
	if tt.m[t.key] == t {
		delete(tt.m, t.key)
	}
	tt.mu.Unlock()
	close(t.done)
}

func (tt *ticketTable) len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.m)
}

// waiters returns the number of callers waiting on k, zero if none.
func (tt *ticketTable) waiters(k ticketKey) int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if t, ok := tt.m[k]; ok {
		return t.waiters
	}
	return 0
}
