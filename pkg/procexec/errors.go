package procexec

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for precondition failures.
// Callers should use errors.Is() to check for these.
var (
	// ErrEmptyCommand indicates Execute was called with no command tokens.
	ErrEmptyCommand = errors.New("procexec: empty command")

	// ErrInvalidTimeout indicates Execute was called with a non-positive timeout.
	ErrInvalidTimeout = errors.New("procexec: timeout must be positive")
)

// SpawnError indicates the process could not be started at all
// (executable not found, not runnable, permission denied).
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("procexec: failed to spawn %q: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TimeoutError indicates the process did not exit within the configured
// bound and was forcibly terminated. No Result accompanies this error:
// the exit code of a killed process is meaningless.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("procexec: process timed out after %s", e.Timeout)
}
