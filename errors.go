package qgate

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

/*
Sentinel errors for every failure a build, bind or execute call can surface.
Callers match them with errors.Is; the wrapped message carries the detail.
*/
var (
	ErrConfig             = errors.New("config error")
	ErrArityMismatch      = errors.New("parameter arity mismatch")
	ErrDuplicateParameter = errors.New("duplicate parameter")
	ErrTransport          = errors.New("transport error")
	ErrProtocol           = errors.New("protocol error")
	ErrParse              = errors.New("parse error")
	ErrEmptyResult        = errors.New("empty result")
	ErrCancelled          = errors.New("cancelled")
)

// taggedError keeps the sentinel reachable through errors.Is while
// carrying a specific message.
type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *taggedError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) error {
	return errors.WithStack(&taggedError{kind: kind, msg: fmt.Sprintf(format, args...)})
}

// cancelled converts a context error into ErrCancelled, keeping the cause.
func cancelled(err error) error {
	if err == nil {
		return nil
	}

	return errors.WithStack(&taggedError{kind: ErrCancelled, msg: err.Error()})
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
