package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Operation names used in FontMeta.
const (
	OpGenerate   = "generate"
	OpRegenerate = "regenerate"
)

// FontMeta describes one generation request for telemetry purposes.
type FontMeta struct {
	FontID     string // Registry font id (required)
	Key        string // Artifact cache key
	Version    string // Font descriptor version (optional)
	Characters int    // Number of requested code points
	Op         string // OpGenerate or OpRegenerate; empty means OpGenerate
}

// SpanName returns the deterministic span name for this font.
// Format: font.<op>.<font-id>
func (m FontMeta) SpanName() string {
	return "font." + m.op() + "." + m.FontID
}

func (m FontMeta) op() string {
	if m.Op == "" {
		return OpGenerate
	}
	return m.Op
}

func (m FontMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("font.id", m.FontID),
		attribute.String("font.op", m.op()),
	}
	if m.Version != "" {
		attrs = append(attrs, attribute.String("font.version", m.Version))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with generation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a generation.
	StartSpan(ctx context.Context, meta FontMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with font metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta FontMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(),
		attribute.String("font.key", meta.Key),
		attribute.Int("font.characters", meta.Characters),
		attribute.Bool("font.error", false),
	)

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("font.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta FontMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
