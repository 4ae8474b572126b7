package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_WithFontFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).WithFont(FontMeta{
		FontID:  "noto-sans-sc",
		Key:     "65,66",
		Version: "2.004",
		Op:      OpRegenerate,
	})

	logger.Info(context.Background(), "generated", Field{Key: "bytes", Value: 1024})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d log lines, want 1", len(entries))
	}
	e := entries[0]
	want := map[string]any{
		"font.id":      "noto-sans-sc",
		"font.key":     "65,66",
		"font.version": "2.004",
		"font.op":      "regenerate",
		"msg":          "generated",
		"level":        "info",
		"bytes":        float64(1024),
	}
	for k, v := range want {
		if e[k] != v {
			t.Errorf("entry[%q] = %v, want %v", k, e[k], v)
		}
	}
	if _, ok := e["timestamp"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d log lines, want 2", len(entries))
	}
	if entries[0]["msg"] != "warn" || entries[1]["msg"] != "error" {
		t.Errorf("unexpected messages: %v, %v", entries[0]["msg"], entries[1]["msg"])
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "auth",
		Field{Key: "api_key", Value: "sk-123"},
		Field{Key: "authorization", Value: "Bearer abc"},
		Field{Key: "font.id", Value: "visible"},
	)

	e := decodeLines(t, &buf)[0]
	if e["api_key"] != "[REDACTED]" || e["authorization"] != "[REDACTED]" {
		t.Errorf("secrets not redacted: %v", e)
	}
	if e["font.id"] != "visible" {
		t.Errorf("font.id = %v, want visible", e["font.id"])
	}
}

func TestLogger_TraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.Info(ctx, "inside span")

	e := decodeLines(t, &buf)[0]
	if e["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", e["trace_id"], span.SpanContext().TraceID())
	}
}

func TestLogger_ConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)
	a := base.WithFont(FontMeta{FontID: "a"})
	b := base.WithFont(FontMeta{FontID: "b"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); a.Info(context.Background(), "a") }()
		go func() { defer wg.Done(); b.Info(context.Background(), "b") }()
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 100 {
		t.Errorf("got %d log lines, want 100", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"":      LevelInfo,
		"bogus": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
