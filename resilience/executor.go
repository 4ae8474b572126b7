package resilience

import "context"

// Executor composes a circuit breaker around retries. Each exhausted retry
// sequence counts as one breaker failure.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// Execute runs op through the configured patterns: breaker outermost,
// then retry.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	run := op
	if e.retry != nil {
		inner := run
		run = func(ctx context.Context) error { return e.retry.Execute(ctx, inner) }
	}
	if e.circuitBreaker != nil {
		inner := run
		run = func(ctx context.Context) error { return e.circuitBreaker.Execute(ctx, inner) }
	}
	return run(ctx)
}

// CircuitBreaker returns the configured breaker, nil if none.
func (e *Executor) CircuitBreaker() *CircuitBreaker { return e.circuitBreaker }
