package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestAggregator_Run(t *testing.T) {
	tests := []struct {
		name   string
		checks []Result
		want   Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Result{Healthy("a"), Healthy("b")}, StatusHealthy},
		{"one degraded", []Result{Healthy("a"), Degraded("b")}, StatusDegraded},
		{"unhealthy wins", []Result{Degraded("a"), Unhealthy("b", ErrCheckFailed), Healthy("c")}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			for i, r := range tt.checks {
				agg.Register(string(rune('a'+i)), fixed("x", r))
			}
			report := agg.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Run().Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("len(Run().Checks) = %d, want %d", len(report.Checks), len(tt.checks))
			}
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 10 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("late")
	}))

	report := agg.Run(context.Background())
	got := report.Checks["slow"]
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, ErrCheckTimeout) {
		t.Errorf("slow check = %v (%v), want unhealthy timeout", got.Status, got.Error)
	}
}

func TestAggregator_CheckAndNames(t *testing.T) {
	agg := NewAggregator()
	agg.Register("store", fixed("store", Healthy("ok")))
	agg.Register("registry", fixed("registry", Degraded("slow")))
	agg.Register("store", fixed("store", Unhealthy("gone", ErrCheckFailed)))

	if got, want := agg.Names(), []string{"store", "registry"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	r, err := agg.Check(context.Background(), "store")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusUnhealthy {
		t.Errorf("Check(store).Status = %v, want unhealthy (replaced checker)", r.Status)
	}
	if r.Duration <= 0 && r.Timestamp.IsZero() {
		t.Error("Check() should stamp the result")
	}

	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v, want %v", err, ErrCheckerNotFound)
	}
}

func TestStatus_String(t *testing.T) {
	for s, want := range map[Status]string{
		StatusHealthy:   "healthy",
		StatusDegraded:  "degraded",
		StatusUnhealthy: "unhealthy",
		Status(42):      "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
