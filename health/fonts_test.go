package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/registry/registrytest"
	"github.com/jonwraymond/fontops/resilience"
)

func TestRegistryChecker(t *testing.T) {
	empty := NewRegistryChecker(registry.NewStatic(registrytest.Snapshot(t)))
	if r := empty.Check(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("empty registry: Status = %v, want unhealthy", r.Status)
	}

	loaded := NewRegistryChecker(registry.NewStatic(registrytest.Snapshot(t,
		registrytest.Font(t, "a", nil, registrytest.Runes('A')...),
		registrytest.Font(t, "b", nil, registrytest.Runes('B')...),
	)))
	r := loaded.Check(context.Background())
	if r.Status != StatusHealthy {
		t.Fatalf("loaded registry: Status = %v, want healthy", r.Status)
	}
	if r.Details["fonts"] != 2 {
		t.Errorf("Details[fonts] = %v, want 2", r.Details["fonts"])
	}
}

func TestStoreChecker(t *testing.T) {
	dir := t.TempDir()
	if r := NewStoreChecker(dir).Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("writable root: Status = %v (%v), want healthy", r.Status, r.Error)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	missing := filepath.Join(dir, "missing")
	if r := NewStoreChecker(missing).Check(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("missing root: Status = %v, want unhealthy", r.Status)
	}
}

func TestBulkheadChecker(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 1})
	c := NewBulkheadChecker(b)

	if r := c.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("idle: Status = %v, want healthy", r.Status)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer b.Release()
	if r := c.Check(context.Background()); r.Status != StatusDegraded {
		t.Errorf("saturated: Status = %v, want degraded", r.Status)
	}
}
