package qgate

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

/*
RetryPolicy is caller-side policy for pool tasks. Executors never retry on
their own; a task is only attempted more than once when it carries a policy
with MaxAttempts above one.
*/
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay every attempt, capped at Max when set.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
	if eb.Max > 0 && delay > eb.Max {
		return eb.Max
	}
	return delay
}

// RetryTransient retries transport failures only.
func RetryTransient(err error) bool {
	return errors.Is(err, ErrTransport)
}

// WithRetry configures retry behavior for a task
func WithRetry(attempts int, strategy RetryStrategy) TaskOption {
	return func(t *Task) {
		t.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
			Filter:      RetryTransient,
		}
	}
}

// WithCircuitBreaker guards a task with the named breaker, creating it on first use.
func WithCircuitBreaker(id string, maxFailures int, resetTimeout time.Duration) TaskOption {
	return func(t *Task) {
		t.CircuitID = id
		t.CircuitConfig = &CircuitBreakerConfig{
			MaxFailures:  maxFailures,
			ResetTimeout: resetTimeout,
			HalfOpenMax:  1,
		}
	}
}
