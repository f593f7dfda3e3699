package qgate

import (
	"context"
	"sync"
	"time"
)

// QuantumValue wraps a job result with metadata
type QuantumValue struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
QuantumSpace holds finished job results and hands them to whoever awaits
them, whether the waiter arrived before or after the result.
*/
type QuantumSpace struct {
	mu      sync.Mutex
	values  map[string]QuantumValue
	waiting map[string][]chan QuantumValue
	wg      sync.WaitGroup
}

func newQuantumSpace(ctx context.Context, interval time.Duration) *QuantumSpace {
	qs := &QuantumSpace{
		values:  make(map[string]QuantumValue),
		waiting: make(map[string][]chan QuantumValue),
	}

	qs.wg.Add(1)
	go func() {
		defer qs.wg.Done()
		qs.cleanup(ctx, interval)
	}()

	return qs
}

// Store stores a value with its metadata
func (qs *QuantumSpace) Store(id string, value any, err error, ttl time.Duration) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	qv := QuantumValue{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	qs.values[id] = qv

	for _, ch := range qs.waiting[id] {
		ch <- qv
		close(ch)
	}
	delete(qs.waiting, id)
}

// Await returns a channel that will receive the value when it's available
func (qs *QuantumSpace) Await(id string) chan QuantumValue {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	ch := make(chan QuantumValue, 1)

	if qv, ok := qs.values[id]; ok {
		ch <- qv
		close(ch)
		return ch
	}

	qs.waiting[id] = append(qs.waiting[id], ch)
	return ch
}

// Forget drops a stored result once its consumer has read it.
func (qs *QuantumSpace) Forget(id string) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	delete(qs.values, id)
}

// abandon withdraws a single waiter whose task will never be stored.
func (qs *QuantumSpace) abandon(id string, ch chan QuantumValue) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	waiters := qs.waiting[id]
	for i, w := range waiters {
		if w == ch {
			waiters = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}

	if len(waiters) == 0 {
		delete(qs.waiting, id)
		return
	}
	qs.waiting[id] = waiters
}

func (qs *QuantumSpace) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			qs.mu.Lock()
			qs.cleanupExpiredValues()
			qs.mu.Unlock()
		}
	}
}

func (qs *QuantumSpace) cleanupExpiredValues() {
	now := time.Now()
	for id, qv := range qs.values {
		if qv.TTL > 0 && now.Sub(qv.CreatedAt) > qv.TTL {
			delete(qs.values, id)
		}
	}
}

// Len is the number of results currently held.
func (qs *QuantumSpace) Len() int {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	return len(qs.values)
}
