package qgate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// Q is a fixed-size worker pool with an awaitable result space.
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Task
	jobs       chan Task
	space      *QuantumSpace
	metrics    *Metrics
	breakers   map[string]*CircuitBreaker
	breakersMu sync.Mutex
	config     *Config
	closeOnce  sync.Once
}

// NewQ starts a pool of workers. Worker count falls back to config.Workers.
func NewQ(ctx context.Context, workers int, config *Config, metrics *Metrics) *Q {
	if config == nil {
		config = NewConfig()
	}

	if workers <= 0 {
		workers = max(1, config.Workers)
	}

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:      ctx,
		cancel:   cancel,
		breakers: make(map[string]*CircuitBreaker),
		jobs:     make(chan Task, workers*10),
		workers:  make(chan chan Task, workers),
		space:    newQuantumSpace(ctx, time.Minute),
		metrics:  metrics,
		config:   config,
	}

	for i := 0; i < workers; i++ {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	errnie.Info("pool started - workers %d", workers)

	return q
}

// manage hands queued tasks to idle workers.
func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.jobs:
			select {
			case <-q.ctx.Done():
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- task:
				case <-q.ctx.Done():
					return
				}
			case <-time.After(q.getSchedulingTimeout()):
				q.metrics.recordSchedulingFailure()
				q.space.Store(task.ID, nil, fmt.Errorf("no available workers for task %s", task.ID), task.TTL)
			}
		}
	}
}

/*
Schedule queues fn under id and returns a channel that yields its result.
Tasks run once unless WithRetry is given; WithCircuitBreaker refuses the task
outright while the named breaker is open.
*/
func (q *Q) Schedule(id string, fn func(ctx context.Context) (any, error), opts ...TaskOption) chan QuantumValue {
	task := Task{
		ID:          id,
		Fn:          fn,
		RetryPolicy: &RetryPolicy{MaxAttempts: 1, Strategy: &ExponentialBackoff{Initial: time.Second}},
		StartTime:   time.Now(),
	}

	for _, opt := range opts {
		opt(&task)
	}

	if task.CircuitID != "" {
		if breaker := q.getCircuitBreaker(task); breaker != nil && !breaker.Allow() {
			q.metrics.recordBreakerReject()
			return resolved(fmt.Errorf("circuit breaker %s is open", task.CircuitID))
		}
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.getSchedulingTimeout())
	defer cancel()

	result := q.space.Await(id)

	select {
	case q.jobs <- task:
		return result
	case <-ctx.Done():
		q.space.abandon(id, result)
		q.metrics.recordSchedulingFailure()
		return resolved(fmt.Errorf("task scheduling timeout: %w", ctx.Err()))
	}
}

func resolved(err error) chan QuantumValue {
	ch := make(chan QuantumValue, 1)
	ch <- QuantumValue{Error: err, CreatedAt: time.Now()}
	close(ch)
	return ch
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Task),
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()
}

func (q *Q) getCircuitBreaker(task Task) *CircuitBreaker {
	if task.CircuitID == "" || task.CircuitConfig == nil {
		return nil
	}

	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()

	breaker, exists := q.breakers[task.CircuitID]
	if !exists {
		breaker = NewCircuitBreaker(
			task.CircuitConfig.MaxFailures,
			task.CircuitConfig.ResetTimeout,
			task.CircuitConfig.HalfOpenMax,
		)
		q.breakers[task.CircuitID] = breaker
	}

	return breaker
}

// Breaker returns the named circuit breaker, if a task has created it.
func (q *Q) Breaker(id string) *CircuitBreaker {
	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()

	return q.breakers[id]
}

func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config != nil && q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

// Close stops the workers and waits for them to exit.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()
		q.space.wg.Wait()
		errnie.Info("pool closed")
	})
}
