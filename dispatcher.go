package qgate

import (
	"context"
	"io"
	"time"

	"github.com/theapemachine/errnie"
	"google.golang.org/grpc"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"
	ModeCustom = "custom"
)

/*
Dispatcher binds parameters, hands the job to the executor chosen when it was
built, and aggregates the outcomes. It holds no state between calls beyond
the executor itself.
*/
type Dispatcher struct {
	executor Executor
	mode     string
	metrics  *Metrics

	localOpts []LocalOption
	dialOpts  []grpc.DialOption
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithExecutor bypasses endpoint selection and uses e for every call.
func WithExecutor(e Executor) DispatcherOption {
	return func(d *Dispatcher) {
		d.executor = e
		d.mode = ModeCustom
	}
}

// WithMetrics records every execute call on m.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithLocalOptions passes options to the local executor, if one is chosen.
func WithLocalOptions(opts ...LocalOption) DispatcherOption {
	return func(d *Dispatcher) {
		d.localOpts = append(d.localOpts, opts...)
	}
}

// WithDialOptions passes options to the remote executor, if one is chosen.
func WithDialOptions(opts ...grpc.DialOption) DispatcherOption {
	return func(d *Dispatcher) {
		d.dialOpts = append(d.dialOpts, opts...)
	}
}

/*
NewDispatcher reads cfg once. A non-empty Endpoint selects the remote
gateway, anything else the local simulator. The choice holds for the life of
the Dispatcher.
*/
func NewDispatcher(cfg *Config, opts ...DispatcherOption) (*Dispatcher, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}

	if d.executor != nil {
		return d, nil
	}

	if cfg.Remote() {
		remote, err := NewRemoteExecutor(cfg.Endpoint, d.dialOpts...)
		if err != nil {
			return nil, err
		}

		d.executor = remote
		d.mode = ModeRemote
		errnie.Info("dispatcher - remote mode, endpoint %s", cfg.Endpoint)

		return d, nil
	}

	localOpts := []LocalOption{WithMaxQubits(cfg.MaxQubits), WithMaxShots(cfg.MaxShots)}
	if cfg.Seed != 0 {
		localOpts = append(localOpts, WithSeed(cfg.Seed))
	}

	d.executor = NewLocalExecutor(append(localOpts, d.localOpts...)...)
	d.mode = ModeLocal
	errnie.Info("dispatcher - local mode")

	return d, nil
}

// Mode reports which executor the dispatcher was built with.
func (d *Dispatcher) Mode() string { return d.mode }

// Metrics returns the metrics sink, which may be nil.
func (d *Dispatcher) Metrics() *Metrics { return d.metrics }

/*
Execute runs program with values bound to params and returns the aggregated
result. Any failure aborts the call; there is no retry and no partial result.
*/
func (d *Dispatcher) Execute(
	ctx context.Context,
	program Program,
	params []string,
	values []float64,
	shots int,
) (result ExecutionResult, err error) {
	start := time.Now()
	defer func() {
		d.metrics.recordExecution(d.mode, start, shots, result.Expectation, err)
	}()

	if shots <= 0 {
		return ExecutionResult{}, newError(ErrConfig, "shots must be positive, got %d", shots)
	}

	bindings, err := Bind(params, values)
	if err != nil {
		return ExecutionResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return ExecutionResult{}, cancelled(err)
	}

	outcomes, err := d.executor.Run(ctx, Job{Program: program, Bindings: bindings, Shots: shots})
	if err != nil {
		return ExecutionResult{}, err
	}

	return Aggregate(outcomes)
}

// Close releases the executor's resources when it holds any.
func (d *Dispatcher) Close() error {
	if c, ok := d.executor.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
