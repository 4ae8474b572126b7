// Package resilience provides the admission and failure-handling patterns
// of the font service.
//
//   - Bulkhead caps how many subset generations run at once.
//   - Retry re-attempts artifact writes that fail with transient I/O errors.
//   - CircuitBreaker stops write attempts after repeated failures, so a full
//     or read-only disk fails fast instead of every generation retrying.
//   - Executor composes a breaker with retries.
//   - Timeout bounds how long a request waits for an artifact.
//   - KeyedRateLimiter throttles regeneration requests per client.
//
// Usage:
//
//	writes := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	)
//	err := writes.Execute(ctx, func(ctx context.Context) error {
//	    return writeArtifact(ctx)
//	})
package resilience
