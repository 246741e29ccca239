package transform

import "github.com/pkg/errors"

// ErrUsage is returned by the CLI layer on a malformed invocation.
var ErrUsage = errors.New("usage error")

// IOError wraps a failing filesystem operation with the path it was
// attempted against: a small named struct wrapping an inner error
// plus Unwrap, for idiomatic errors.As matching by callers.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }
