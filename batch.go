package qgate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// batchResultTTL bounds how long an unread row result stays in the space.
const batchResultTTL = 10 * time.Minute

/*
Batch fans parameter rows for a single program out over a pool. Each row is
an independent execute call; results come back in row order.
*/
type Batch struct {
	dispatcher *Dispatcher
	pool       *Q
	opts       []TaskOption
}

/*
NewBatch runs rows through d on q, applying opts to every scheduled task.
Row results expire after batchResultTTL unless opts set their own TTL.
*/
func NewBatch(d *Dispatcher, q *Q, opts ...TaskOption) *Batch {
	return &Batch{
		dispatcher: d,
		pool:       q,
		opts:       append([]TaskOption{WithTTL(batchResultTTL)}, opts...),
	}
}

/*
Run executes program once per row of values. The first failing row aborts
the batch: rows still in flight see a cancelled context and its error is
returned with the row index attached.
*/
func (b *Batch) Run(
	ctx context.Context,
	program Program,
	params []string,
	rows [][]float64,
	shots int,
) ([]ExecutionResult, error) {
	if len(rows) == 0 {
		return nil, newError(ErrConfig, "batch has no parameter rows")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(b.pool.ctx, cancel)
	defer stop()

	batchID := uuid.NewString()
	pending := make([]chan QuantumValue, len(rows))

	for i, row := range rows {
		values := row
		id := fmt.Sprintf("%s/%d", batchID, i)

		pending[i] = b.pool.Schedule(id, func(_ context.Context) (any, error) {
			return b.dispatcher.Execute(ctx, program, params, values, shots)
		}, b.opts...)
	}

	errnie.Info("batch %s - %d rows scheduled", batchID, len(rows))

	results := make([]ExecutionResult, len(rows))
	for i, ch := range pending {
		var qv QuantumValue

		select {
		case <-ctx.Done():
			b.release(batchID, pending, i)
			return nil, cancelled(ctx.Err())
		case qv = <-ch:
		}

		b.pool.space.Forget(fmt.Sprintf("%s/%d", batchID, i))

		if qv.Error != nil {
			b.release(batchID, pending, i+1)
			return nil, fmt.Errorf("row %d: %w", i, qv.Error)
		}

		result, ok := qv.Value.(ExecutionResult)
		if !ok {
			b.release(batchID, pending, i+1)
			return nil, newError(ErrProtocol, "row %d returned %T", i, qv.Value)
		}
		results[i] = result
	}

	return results, nil
}

// release forgets the results of rows from onward as they land, so an
// aborted batch leaves nothing behind in the space.
func (b *Batch) release(batchID string, pending []chan QuantumValue, from int) {
	if from >= len(pending) {
		return
	}

	go func() {
		for i := from; i < len(pending); i++ {
			select {
			case <-pending[i]:
			case <-b.pool.ctx.Done():
				return
			}
			b.pool.space.Forget(fmt.Sprintf("%s/%d", batchID, i))
		}
	}()
}
