package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/fontops/auth"
	"github.com/jonwraymond/fontops/cache"
	"github.com/jonwraymond/fontops/config"
	"github.com/jonwraymond/fontops/generate"
	"github.com/jonwraymond/fontops/health"
	"github.com/jonwraymond/fontops/observe"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/resilience"
	"github.com/jonwraymond/fontops/server"
	"github.com/jonwraymond/fontops/store"
	"github.com/jonwraymond/fontops/woff2"
)

const limiterPruneInterval = time.Minute

// app holds the wired service.
type app struct {
	cfg      config.Config
	logger   observe.Logger
	registry *registry.Registry
	store    *store.FileStore
	limiter  *resilience.KeyedRateLimiter
	handler  http.Handler
}

func newApp(ctx context.Context, cfg config.Config, obs observe.Observer) (*app, error) {
	logger := obs.Logger()

	reg, err := registry.New(ctx, registry.Config{Dir: cfg.FontsDir, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  5,
		ResetTimeout: 30 * time.Second,
		OnStateChange: func(from, to resilience.State) {
			logger.Warn(context.Background(), "store write circuit changed",
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()},
			)
		},
	})
	storeCfg := store.Config{
		Root: cfg.StaticDir,
		Writes: resilience.NewExecutor(
			resilience.WithCircuitBreaker(breaker),
			resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 50 * time.Millisecond,
				Jitter:       true,
			})),
		),
		Logger: logger,
	}
	if cfg.HotCache.MaxBytes > 0 {
		policy := cache.DefaultPolicy()
		policy.MaxBytes = cfg.HotCache.MaxBytes
		policy.MaxEntryBytes = min(policy.MaxEntryBytes, cfg.HotCache.MaxBytes)
		if cfg.HotCache.TTL > 0 {
			policy.DefaultTTL = cfg.HotCache.TTL
			policy.MaxTTL = max(policy.MaxTTL, cfg.HotCache.TTL)
		}
		storeCfg.Hot = cache.NewMemoryCache(policy)
		storeCfg.HotPolicy = &policy
	}
	st, err := store.NewFileStore(storeCfg)
	if err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}
	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: cfg.Generation.Concurrency,
		MaxWait:       cfg.Generation.QueueWait,
	})
	coord, err := generate.NewCoordinator(generate.Config{
		Registry: reg,
		Store:    st,
		Generator: generate.NewPipeline(generate.PipelineConfig{
			Parallelism: cfg.Generation.Parallelism,
			Encoder:     woff2.NewEncoder(woff2.Options{Quality: cfg.Generation.Quality}),
		}),
		Bulkhead:   bulkhead,
		Middleware: mw,
	})
	if err != nil {
		return nil, err
	}

	agg := health.NewAggregator()
	agg.Register("registry", health.NewRegistryChecker(reg))
	agg.Register("store", health.NewStoreChecker(st.Root()))
	agg.Register("generation", health.NewBulkheadChecker(bulkhead))
	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
	agg.Register("store_writes", health.NewCheckerFunc("store_writes", func(context.Context) health.Result {
		m := breaker.Metrics()
		details := map[string]any{"state": m.State.String(), "failures": m.Failures}
		if m.State == resilience.StateOpen {
			return health.Degraded("store writes failing").WithDetails(details)
		}
		return health.Healthy("store writes ok").WithDetails(details)
	}))

	limiter := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
		Rate:  cfg.Admin.RateLimit,
		Burst: cfg.Admin.Burst,
	})

	srvCfg := server.Config{
		Registry:       reg,
		Coordinator:    coord,
		Static:         st,
		Health:         agg,
		RateLimiter:    limiter,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}
	if cfg.Observe.Metrics.Enabled && cfg.Observe.Metrics.Exporter == "prometheus" {
		srvCfg.Metrics = promhttp.Handler()
	}
	if cfg.Admin.Enabled() {
		srvCfg.Admin = adminAuthenticator(cfg.Admin)
		srvCfg.AdminRole = auth.RoleAdmin
	} else {
		logger.Warn(ctx, "no admin credentials configured; regeneration endpoint is open")
	}
	srv, err := server.New(srvCfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		store:    st,
		limiter:  limiter,
		handler:  srv.Handler(),
	}, nil
}

// adminAuthenticator accepts configured API keys and HMAC-signed JWTs.
// Every configured credential carries the admin role.
func adminAuthenticator(cfg config.AdminConfig) auth.Authenticator {
	var auths []auth.Authenticator
	if len(cfg.APIKeys) > 0 {
		keys := auth.NewMemoryAPIKeyStore()
		for _, k := range cfg.APIKeys {
			keys.AddKey(k.ID, k.Key, auth.RoleAdmin)
		}
		auths = append(auths, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, keys))
	}
	if cfg.JWTSecret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}, auth.NewStaticKeyProvider([]byte(cfg.JWTSecret))))
	}
	return auth.NewCompositeAuthenticator(auths...)
}

// background runs the artifact sweeper and rate limiter pruning until ctx
// ends.
func (a *app) background(ctx context.Context) {
	if age := a.cfg.CleanupAge(); age > 0 {
		sw := &store.Sweeper{Store: a.store, MaxAge: age, Interval: a.cfg.SweepInterval}
		go sw.Run(ctx)
	}

	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.limiter.Prune()
		}
	}
}

// reload rescans the font directory. On failure the previous snapshot
// stays in service.
func (a *app) reload(ctx context.Context) {
	if _, err := a.registry.Reload(ctx); err != nil {
		a.logger.Error(ctx, "font reload failed", observe.Field{Key: "error", Value: err.Error()})
	}
}
