package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTripsAndReturnsOpenError(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "trip-breaker",
		Timeout:          time.Minute,
		Interval:         time.Minute,
		FailureThreshold: 2,
	}, nil)

	ctx := context.Background()
	failingOp := func(context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	}

	for i := 0; i < 2; i++ {
		_, err := breaker.Execute(ctx, failingOp)
		require.Error(t, err)
	}

	assert.False(t, breaker.Allow())
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerState.WithLabelValues("trip-breaker")))

	_, err := breaker.Execute(ctx, func(context.Context) (interface{}, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, float64(2), testutil.ToFloat64(breakerCalls.WithLabelValues("trip-breaker", outcomeFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerCalls.WithLabelValues("trip-breaker", outcomeRejected)))
}

func TestCircuitBreakerFallback(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{Name: "fallback-breaker", Timeout: time.Minute, FailureThreshold: 1},
		func(ctx context.Context, err error) (interface{}, error) {
			return "cached", nil
		})

	ctx := context.Background()
	_, _ = breaker.Execute(ctx, func(context.Context) (interface{}, error) { return nil, errors.New("down") })

	result, err := breaker.Execute(ctx, func(context.Context) (interface{}, error) { return "live", nil })
	require.NoError(t, err)
	assert.Equal(t, "cached", result)
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{Name: "cancel-breaker", Timeout: time.Minute, FailureThreshold: 1}, nil)

	_, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return nil, context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, breaker.Allow())
}

func TestCircuitBreakerPassesThroughOnSuccess(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{FailureThreshold: 5}, nil)
	assert.NotEmpty(t, breaker.Name())

	result, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return "response", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "response", result)
}

func TestNilBreakerRunsOperation(t *testing.T) {
	var breaker *CircuitBreaker
	result, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, breaker.Allow())
}
