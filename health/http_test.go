package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(agg *Aggregator, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlers(t *testing.T) {
	healthy := NewAggregator()
	healthy.Register("registry", fixed("registry", Healthy("2 fonts loaded")))
	degraded := NewAggregator()
	degraded.Register("generation", fixed("generation", Degraded("busy")))
	down := NewAggregator()
	down.Register("store", fixed("store", Unhealthy("not writable", ErrCheckFailed)))

	tests := []struct {
		name   string
		agg    *Aggregator
		path   string
		status int
		body   string
	}{
		{"liveness", down, "/healthz", http.StatusOK, "OK"},
		{"ready", healthy, "/readyz", http.StatusOK, "OK"},
		{"ready degraded", degraded, "/readyz", http.StatusOK, "DEGRADED"},
		{"not ready", down, "/readyz", http.StatusServiceUnavailable, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.agg, tt.path)
			if rec.Code != tt.status || rec.Body.String() != tt.body {
				t.Errorf("GET %s = %d %q, want %d %q", tt.path, rec.Code, rec.Body.String(), tt.status, tt.body)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("registry", fixed("registry", Healthy("ok").WithDetails(map[string]any{"fonts": 3})))
	agg.Register("store", fixed("store", Unhealthy("not writable", ErrCheckFailed)))

	rec := serve(agg, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
	if got := resp.Checks["store"].Error; got != ErrCheckFailed.Error() {
		t.Errorf("store error = %q, want %q", got, ErrCheckFailed.Error())
	}
	if got := resp.Checks["registry"].Details["fonts"]; got != float64(3) {
		t.Errorf("registry fonts = %v, want 3", got)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("registry", fixed("registry", Healthy("ok")))

	if rec := serve(agg, "/health/registry"); rec.Code != http.StatusOK {
		t.Errorf("GET /health/registry = %d, want 200", rec.Code)
	}
	if rec := serve(agg, "/health/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /health/missing = %d, want 404", rec.Code)
	}
}
