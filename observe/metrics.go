package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records generation and cache metrics per font.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordGeneration records one pipeline run with duration and error status.
	RecordGeneration(ctx context.Context, meta FontMeta, duration time.Duration, err error)

	// RecordCacheHit records a request served from a stored artifact.
	RecordCacheHit(ctx context.Context, meta FontMeta)

	// RecordCoalesced records a caller that joined an in-flight generation.
	RecordCoalesced(ctx context.Context, meta FontMeta)
}

type metricsImpl struct {
	totalCount     metric.Int64Counter
	errorCount     metric.Int64Counter
	durationHist   metric.Float64Histogram
	cacheHits      metric.Int64Counter
	coalescedCount metric.Int64Counter
}

// NewMetrics creates the generation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"font.generate.total",
		metric.WithDescription("Total number of subset generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"font.generate.errors",
		metric.WithDescription("Total number of failed subset generations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"font.generate.duration_ms",
		metric.WithDescription("Subset generation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"font.cache.hits",
		metric.WithDescription("Requests served from a stored artifact"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	coalesced, err := meter.Int64Counter(
		"font.generate.coalesced",
		metric.WithDescription("Requests that joined an in-flight generation"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:     totalCount,
		errorCount:     errorCount,
		durationHist:   durationHist,
		cacheHits:      cacheHits,
		coalescedCount: coalesced,
	}, nil
}

func (m *metricsImpl) RecordGeneration(ctx context.Context, meta FontMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta FontMeta) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

func (m *metricsImpl) RecordCoalesced(ctx context.Context, meta FontMeta) {
	m.coalescedCount.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

type noopMetrics struct{}

func (m *noopMetrics) RecordGeneration(ctx context.Context, meta FontMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordCacheHit(ctx context.Context, meta FontMeta)  {}
func (m *noopMetrics) RecordCoalesced(ctx context.Context, meta FontMeta) {}
