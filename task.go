package qgate

import (
	"context"
	"time"
)

// Task is a unit of work scheduled on the pool.
type Task struct {
	ID            string
	Fn            func(ctx context.Context) (any, error)
	RetryPolicy   *RetryPolicy
	CircuitID     string
	CircuitConfig *CircuitBreakerConfig
	TTL           time.Duration
	Attempt       int
	LastError     error
	StartTime     time.Time
}

// TaskOption configures a Task
type TaskOption func(*Task)

// CircuitBreakerConfig struct
type CircuitBreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

// WithTTL configures how long a task's result stays in the result space.
func WithTTL(ttl time.Duration) TaskOption {
	return func(t *Task) {
		t.TTL = ttl
	}
}
