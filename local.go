package qgate

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

const (
	// DefaultMaxQubits bounds the dense state vector at 2^20 amplitudes.
	DefaultMaxQubits = 20

	// DefaultMaxShots bounds the outcome slice a single run allocates.
	DefaultMaxShots = 1 << 20

	sampleBatch = 4096
)

/*
LocalExecutor simulates a program on an in-process state vector and samples
the requested number of shots from the resulting readout distribution. It
is the offline stand-in for RemoteExecutor.
*/
type LocalExecutor struct {
	mu        sync.Mutex
	rng       *rand.Rand
	maxQubits int
	maxShots  int
}

// LocalOption configures a LocalExecutor.
type LocalOption func(*LocalExecutor)

// WithSeed makes sampling reproducible.
func WithSeed(seed uint64) LocalOption {
	return func(l *LocalExecutor) {
		l.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithMaxQubits changes the largest program width the executor accepts.
func WithMaxQubits(n int) LocalOption {
	return func(l *LocalExecutor) {
		if n > 0 {
			l.maxQubits = n
		}
	}
}

// WithMaxShots changes the largest shot count a single run accepts.
func WithMaxShots(n int) LocalOption {
	return func(l *LocalExecutor) {
		if n > 0 {
			l.maxShots = n
		}
	}
}

// NewLocalExecutor returns a simulator seeded from the clock unless WithSeed is given.
func NewLocalExecutor(opts ...LocalOption) *LocalExecutor {
	now := uint64(time.Now().UnixNano())
	l := &LocalExecutor{
		rng:       rand.New(rand.NewPCG(now, now>>1)),
		maxQubits: DefaultMaxQubits,
		maxShots:  DefaultMaxShots,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *LocalExecutor) Run(ctx context.Context, job Job) ([]Outcome, error) {
	prog := job.Program

	if job.Shots <= 0 {
		return nil, newError(ErrConfig, "shots must be positive, got %d", job.Shots)
	}

	if job.Shots > l.maxShots {
		return nil, newError(ErrConfig, "%d shots exceeds simulator limit %d", job.Shots, l.maxShots)
	}

	if prog.Qubits() > l.maxQubits {
		return nil, newError(ErrConfig, "%d qubits exceeds simulator limit %d", prog.Qubits(), l.maxQubits)
	}

	if err := prog.Validate(); err != nil {
		return nil, err
	}

	measurements := prog.Measurements()
	if len(measurements) == 0 {
		return nil, newError(ErrConfig, "program measures nothing")
	}

	state, err := l.evolve(ctx, prog, job.Bindings)
	if err != nil {
		return nil, err
	}

	measure := make(map[int]int)
	for _, m := range measurements {
		measure[m.Slot] = m.Qubits[0]
	}

	s := newSampler(state.Distribution(prog.RegisterWidth(), measure))

	errnie.Info("local run - qubits %d, gates %d, shots %d", prog.Qubits(), prog.Len(), job.Shots)

	l.mu.Lock()
	defer l.mu.Unlock()

	outcomes := make([]Outcome, job.Shots)
	for i := range outcomes {
		if i%sampleBatch == 0 {
			if err := ctx.Err(); err != nil {
				return nil, cancelled(err)
			}
		}
		outcomes[i] = s.draw(l.rng)
	}

	return outcomes, nil
}

func (l *LocalExecutor) evolve(ctx context.Context, prog Program, bindings Bindings) (*QuantumState, error) {
	state := NewQuantumState(prog.Qubits())

	for _, in := range prog.instructions {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		switch in.Op {
		case OpDeclare, OpMeasure:
			continue
		case OpH:
			state.ApplyHadamard(in.Qubits[0])
		case OpCZ:
			state.ApplyCZ(in.Qubits[0], in.Qubits[1])
		case OpRX, OpRZ:
			theta, err := in.Angle.Resolve(bindings)
			if err != nil {
				return nil, err
			}

			if in.Op == OpRX {
				state.ApplyRX(in.Qubits[0], theta)
			} else {
				state.ApplyRZ(in.Qubits[0], theta)
			}
		default:
			return nil, newError(ErrParse, "no simulation for %s", in.Op)
		}
	}

	return state, nil
}
