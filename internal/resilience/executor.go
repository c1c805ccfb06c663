package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling the backend while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config holds configuration for an Executor.
type Config struct {
	// Name identifies the executor in the registry and the breaker.
	Name string

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration

	// CircuitBreaker configures the breaker. Nil uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Retryable reports whether an error is transient. Errors it rejects are
	// returned at once and do not count against the breaker. Nil treats every
	// error as transient.
	Retryable func(error) bool

	// Registry receives health updates. Nil uses GlobalRegistry.
	Registry *Registry
}

// DefaultConfig returns the retry policy used for store calls.
func DefaultConfig(name string) Config {
	cb := DefaultCircuitBreakerConfig(name)
	return Config{
		Name:            name,
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cb,
	}
}

// Executor runs operations with exponential backoff behind a circuit breaker.
type Executor struct {
	cb       *gobreaker.CircuitBreaker[any]
	config   Config
	registry *Registry
}

// NewExecutor creates an executor and registers it.
func NewExecutor(cfg Config) *Executor {
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 50 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(error) bool { return true }
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	registry := cfg.Registry
	if registry == nil {
		registry = GlobalRegistry
	}

	e := &Executor{
		cb:       newCircuitBreaker(cbConfig, cfg.Retryable),
		config:   cfg,
		registry: registry,
	}
	registry.Register(cfg.Name, e)
	return e
}

// Name returns the executor name.
func (e *Executor) Name() string {
	return e.config.Name
}

// State returns the current breaker state.
func (e *Executor) State() gobreaker.State {
	return e.cb.State()
}

// Counts returns the current breaker counts.
func (e *Executor) Counts() gobreaker.Counts {
	return e.cb.Counts()
}

// Do runs op until it succeeds, fails permanently, runs out of retries or
// ctx is done.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Call(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Call is Do for operations that return a value.
func Call[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.config.InitialInterval
	bo.MaxInterval = e.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, e.config.MaxRetries), ctx)

	var result T
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		v, err := e.cb.Execute(func() (any, error) {
			r, err := op(ctx)
			return r, err
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if !e.config.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		if r, ok := v.(T); ok {
			result = r
		}
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, ErrCircuitOpen) || e.config.Retryable(err) {
			e.registry.RecordFailure(e.config.Name, err)
		}
		var zero T
		return zero, err
	}

	e.registry.RecordSuccess(e.config.Name)
	return result, nil
}
