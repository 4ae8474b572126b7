package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jonwraymond/fontops/auth"
	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/generate"
	"github.com/jonwraymond/fontops/health"
	"github.com/jonwraymond/fontops/observe"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/resilience"
	"github.com/jonwraymond/fontops/store"
)

// Coordinator serves and regenerates artifacts. *generate.Coordinator
// implements it.
type Coordinator interface {
	GetOrGenerate(ctx context.Context, fontID string, set codepoint.Set) (store.Artifact, error)
	ForceRegenerate(ctx context.Context, fontID string, set codepoint.Set) (generate.Outcome, error)
}

// StaticStore serves persisted artifacts by relative path. *store.FileStore
// implements it.
type StaticStore interface {
	ReadPath(ctx context.Context, rel string) (store.Artifact, error)
}

// Config configures a Server.
type Config struct {
	// Registry lists fonts. Required.
	Registry generate.Registry

	// Coordinator serves artifacts. Required.
	Coordinator Coordinator

	// Static serves /static. Required.
	Static StaticStore

	// Health registers the health endpoints when set.
	Health *health.Aggregator

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// Admin guards POST /api/v1/generate. Nil leaves it open.
	Admin auth.Authenticator

	// AdminRole is required of admin identities when set.
	AdminRole string

	// RateLimiter throttles POST /api/v1/generate per client address.
	// Default: 1 request per second, burst 5.
	RateLimiter *resilience.KeyedRateLimiter

	// RequestTimeout bounds how long a request waits for an artifact.
	// Generation itself continues past it. Default: 30s.
	RequestTimeout time.Duration

	// Logger receives request and error logs. Default: no-op.
	Logger observe.Logger
}

// Server is the HTTP front end of the font service.
type Server struct {
	registry generate.Registry
	coord    Coordinator
	static   StaticStore
	health   *health.Aggregator
	metrics  http.Handler
	admin    func(http.Handler) http.Handler
	limiter  *resilience.KeyedRateLimiter
	timeout  *resilience.Timeout
	logger   observe.Logger
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil || cfg.Coordinator == nil || cfg.Static == nil {
		return nil, errors.New("server: registry, coordinator and static store are required")
	}
	s := &Server{
		registry: cfg.Registry,
		coord:    cfg.Coordinator,
		static:   cfg.Static,
		health:   cfg.Health,
		metrics:  cfg.Metrics,
		limiter:  cfg.RateLimiter,
		timeout:  resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cfg.RequestTimeout}),
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = observe.NopLogger()
	}
	if s.limiter == nil {
		s.limiter = resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{Rate: 1, Burst: 5})
	}
	s.admin = func(h http.Handler) http.Handler { return h }
	if cfg.Admin != nil {
		s.admin = auth.Middleware(auth.MiddlewareConfig{
			Authenticator: cfg.Admin,
			Role:          cfg.AdminRole,
			Deny: func(w http.ResponseWriter, r *http.Request, status int, err error) {
				s.logger.Warn(r.Context(), "admin request rejected",
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "status", Value: status},
					observe.Field{Key: "error", Value: err.Error()},
				)
				writeJSON(w, status, errorBody{Error: err.Error()})
			},
		})
	}
	return s, nil
}

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/list", s.handleList)
	mux.HandleFunc("GET /api/v1/font", s.handleFont)
	mux.Handle("POST /api/v1/generate", s.rateLimit(s.admin(http.HandlerFunc(s.handleGenerate))))
	mux.HandleFunc("GET /static/{path...}", s.handleStatic)
	if s.health != nil {
		health.RegisterHandlers(mux, s.health)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return cors(s.logRequests(mux))
}

// wait runs fn under the request timeout.
func (s *Server) wait(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.timeout.Execute(ctx, fn)
}

// fail writes err as a JSON error response and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			observe.Field{Key: "path", Value: r.URL.Path},
			observe.Field{Key: "status", Value: status},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	writeJSON(w, status, errorBody{Error: publicMessage(status, err)})
}

var _ Coordinator = (*generate.Coordinator)(nil)
var _ StaticStore = (*store.FileStore)(nil)
var _ generate.Registry = (*registry.Registry)(nil)
