package resilience_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/resilience"
)

var (
	errTransient = errors.New("connection reset")
	errNotFound  = errors.New("not found")
)

func testConfig(name string, retries uint64) resilience.Config {
	cb := resilience.DefaultCircuitBreakerConfig(name)
	cb.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.Requests >= 100 }
	return resilience.Config{
		Name:            name,
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		CircuitBreaker:  &cb,
		Retryable:       func(err error) bool { return !errors.Is(err, errNotFound) },
		Registry:        resilience.NewRegistry(),
	}
}

func TestCall_RetriesUntilSuccess(t *testing.T) {
	exec := resilience.NewExecutor(testConfig("retry", 5))
	var attempts atomic.Int32

	got, err := resilience.Call(context.Background(), exec, func(context.Context) (string, error) {
		if attempts.Add(1) < 3 {
			return "", errTransient
		}
		return "sub_1", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "sub_1", got)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestCall_PermanentErrorNotRetried(t *testing.T) {
	exec := resilience.NewExecutor(testConfig("permanent", 5))
	var attempts atomic.Int32

	_, err := resilience.Call(context.Background(), exec, func(context.Context) (int, error) {
		attempts.Add(1)
		return 0, errNotFound
	})

	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, uint32(0), exec.Counts().TotalFailures, "non-retryable errors do not count against the breaker")
}

func TestCall_GivesUpAfterMaxRetries(t *testing.T) {
	exec := resilience.NewExecutor(testConfig("exhaust", 2))
	var attempts atomic.Int32

	err := exec.Do(context.Background(), func(context.Context) error {
		attempts.Add(1)
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestCall_CircuitOpens(t *testing.T) {
	cfg := testConfig("trip", 0)
	cfg.CircuitBreaker.ReadyToTrip = resilience.DefaultReadyToTrip
	exec := resilience.NewExecutor(cfg)

	for i := 0; i < 5; i++ {
		_ = exec.Do(context.Background(), func(context.Context) error { return errTransient })
	}
	assert.Equal(t, gobreaker.StateOpen, exec.State())

	var called bool
	err := exec.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)
}

func TestCall_ContextCanceled(t *testing.T) {
	exec := resilience.NewExecutor(testConfig("cancel", 5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Do(ctx, func(context.Context) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	cfg := resilience.DefaultConfig("store")

	assert.Equal(t, "store", cfg.Name)
	assert.Equal(t, uint64(3), cfg.MaxRetries)
	require.NotNil(t, cfg.CircuitBreaker)
	assert.Equal(t, uint32(1), cfg.CircuitBreaker.MaxRequests)
}

func TestDefaultReadyToTrip(t *testing.T) {
	tests := []struct {
		name     string
		counts   gobreaker.Counts
		expected bool
	}{
		{"not enough requests", gobreaker.Counts{Requests: 4, TotalFailures: 4}, false},
		{"low failure rate", gobreaker.Counts{Requests: 10, TotalFailures: 4}, false},
		{"high failure rate", gobreaker.Counts{Requests: 10, TotalFailures: 5}, true},
		{"five of five", gobreaker.Counts{Requests: 5, TotalFailures: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resilience.DefaultReadyToTrip(tt.counts))
		})
	}
}
