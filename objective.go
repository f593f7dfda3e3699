package qgate

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
	"gonum.org/v1/gonum/optimize"
)

/*
Objective turns a parameterised program into a scalar cost for an
optimiser: the expectation of reading "1" on the first readout bit.
Evaluation failures cannot be returned through the optimiser, so the first
one is kept and the point is scored +Inf.
*/
type Objective struct {
	ctx        context.Context
	dispatcher *Dispatcher
	program    Program
	params     []string
	shots      int

	mu    sync.Mutex
	evals int
	err   error
}

// NewObjective binds program and params to d for repeated evaluation.
func NewObjective(ctx context.Context, d *Dispatcher, program Program, params []string, shots int) *Objective {
	return &Objective{
		ctx:        ctx,
		dispatcher: d,
		program:    program,
		params:     params,
		shots:      shots,
	}
}

// Evaluate runs the program at x and returns its expectation.
func (o *Objective) Evaluate(x []float64) float64 {
	result, err := o.dispatcher.Execute(o.ctx, o.program, o.params, x, o.shots)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.evals++
	if err != nil {
		if o.err == nil {
			o.err = err
		}
		return math.Inf(1)
	}

	return result.Expectation
}

// Evals is the number of times Evaluate has been called.
func (o *Objective) Evals() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.evals
}

// Err returns the first evaluation error, if any.
func (o *Objective) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.err
}

// Optimum is the best point an optimisation run found.
type Optimum struct {
	X           []float64 `json:"x"`
	Expectation float64   `json:"expectation"`
	Evaluations int       `json:"evaluations"`
}

/*
Minimize searches for parameters that minimise obj with Nelder-Mead,
starting at init. iterations caps the number of major iterations; zero
leaves gonum's convergence checks in charge.
*/
func Minimize(ctx context.Context, obj *Objective, init []float64, iterations int) (Optimum, error) {
	if len(init) != len(obj.params) {
		return Optimum{}, newError(ErrArityMismatch, "%d parameters, %d initial values", len(obj.params), len(init))
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return math.Inf(1)
			}
			return obj.Evaluate(x)
		},
	}

	settings := &optimize.Settings{MajorIterations: iterations}

	res, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Optimum{}, cancelled(ctxErr)
	}

	if evalErr := obj.Err(); evalErr != nil {
		return Optimum{}, evalErr
	}

	// Hitting the iteration cap still leaves a usable best point.
	if err != nil && (res == nil || res.X == nil) {
		return Optimum{}, errors.Wrap(err, "minimize")
	}

	errnie.Info("minimize - %s after %d evaluations, f=%v", res.Status, obj.Evals(), res.F)

	return Optimum{
		X:           res.X,
		Expectation: res.F,
		Evaluations: obj.Evals(),
	}, nil
}
