package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/resilience"
)

// RegistryChecker reports unhealthy until at least one font is loaded.
type RegistryChecker struct {
	reg *registry.Registry
}

// NewRegistryChecker creates a RegistryChecker.
func NewRegistryChecker(reg *registry.Registry) *RegistryChecker {
	return &RegistryChecker{reg: reg}
}

// Name returns "registry".
func (c *RegistryChecker) Name() string { return "registry" }

// Check reports the number of loaded fonts.
func (c *RegistryChecker) Check(context.Context) Result {
	snap := c.reg.Snapshot()
	if snap == nil || snap.Len() == 0 {
		return Unhealthy("no fonts loaded", ErrCheckFailed)
	}
	return Healthy(fmt.Sprintf("%d fonts loaded", snap.Len())).WithDetails(map[string]any{
		"fonts":     snap.Len(),
		"loaded_at": snap.LoadedAt().UTC().Format(time.RFC3339),
	})
}

// StoreChecker verifies the artifact root accepts new files.
type StoreChecker struct {
	root string
}

// NewStoreChecker creates a StoreChecker for the artifact root directory.
func NewStoreChecker(root string) *StoreChecker {
	return &StoreChecker{root: root}
}

// Name returns "store".
func (c *StoreChecker) Name() string { return "store" }

// Check creates and removes a probe file in the root directory.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}
	f, err := os.CreateTemp(c.root, ".tmp-health-*")
	if err != nil {
		return Unhealthy("artifact root not writable", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return Degraded("probe file not removed").WithDetails(map[string]any{"path": name})
	}
	return Healthy("artifact root writable")
}

// BulkheadChecker reports degraded while every generation slot is taken.
type BulkheadChecker struct {
	bulkhead *resilience.Bulkhead
}

// NewBulkheadChecker creates a BulkheadChecker.
func NewBulkheadChecker(b *resilience.Bulkhead) *BulkheadChecker {
	return &BulkheadChecker{bulkhead: b}
}

// Name returns "generation".
func (c *BulkheadChecker) Name() string { return "generation" }

// Check reports slot usage.
func (c *BulkheadChecker) Check(context.Context) Result {
	m := c.bulkhead.Metrics()
	details := map[string]any{
		"active":         m.Active,
		"max_concurrent": m.MaxConcurrent,
		"rejected":       m.Rejected,
	}
	if m.Available <= 0 {
		return Degraded("all generation slots busy").WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d of %d generation slots free", m.Available, m.MaxConcurrent)).WithDetails(details)
}

var (
	_ Checker = (*RegistryChecker)(nil)
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*BulkheadChecker)(nil)
)
