package qgate

import "context"

// Job is one execution request: a program, its bindings and a shot count.
type Job struct {
	Program  Program
	Bindings Bindings
	Shots    int
}

/*
Executor runs a job and returns one outcome per collected shot. Remote and
local implementations honour the same contract, so callers never need to
know which one ran.
*/
type Executor interface {
	Run(ctx context.Context, job Job) ([]Outcome, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, job Job) ([]Outcome, error)

func (f ExecutorFunc) Run(ctx context.Context, job Job) ([]Outcome, error) {
	return f(ctx, job)
}
