package runtime

import "github.com/pkg/errors"

// IOError wraps a failing filesystem operation with the path it was
// attempted against, mirroring transform.IOError's shape (see the
// now-deleted errdefs package both are grounded on). Only
// EnsureBreakpointFile returns one to its caller; every other runtime
// I/O failure degrades to a no-op or an empty/previous value and is
// at most logged.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

var errNoCommand = errors.New("no command")
