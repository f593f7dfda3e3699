package qgate

import (
	"context"
	"fmt"
	"time"

	"github.com/theapemachine/errnie"
)

// Worker runs tasks handed out by the pool
type Worker struct {
	pool *Q
	jobs chan Task
}

func (w *Worker) run() {
	ctx := w.pool.ctx

	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-ctx.Done():
			return
		case task := <-w.jobs:
			result, err := w.processTask(ctx, task)
			w.pool.space.Store(task.ID, result, err, task.TTL)
		}
	}
}

func (w *Worker) processTask(ctx context.Context, task Task) (any, error) {
	breaker := w.pool.getCircuitBreaker(task)

	result, err := w.executeWithRetries(ctx, task, breaker)
	w.pool.metrics.recordJob(err)

	return result, err
}

func (w *Worker) executeWithRetries(ctx context.Context, task Task, breaker *CircuitBreaker) (any, error) {
	policy := task.RetryPolicy
	if policy == nil || policy.MaxAttempts < 1 {
		policy = &RetryPolicy{MaxAttempts: 1}
	}

	for task.Attempt = 0; task.Attempt < policy.MaxAttempts; task.Attempt++ {
		if task.Attempt > 0 {
			delay := policy.Strategy.NextDelay(task.Attempt)
			errnie.Info("task %s retrying attempt %d after %v", task.ID, task.Attempt+1, delay)

			select {
			case <-ctx.Done():
				return nil, cancelled(ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := task.Fn(ctx)
		if err == nil {
			if breaker != nil {
				breaker.RecordSuccess()
			}
			return result, nil
		}

		task.LastError = err
		if breaker != nil {
			breaker.RecordFailure()
		}

		if policy.Filter != nil && !policy.Filter(err) {
			break
		}
	}

	if task.Attempt == 0 || policy.MaxAttempts == 1 {
		return nil, task.LastError
	}

	return nil, fmt.Errorf("all retries failed for task %s: %w", task.ID, task.LastError)
}
