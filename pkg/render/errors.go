package render

import (
	"fmt"
	"time"
)

// NavigationTimeoutError indicates the page did not reach network
// quiescence within the navigation bound. Distinct from NavigationError so
// callers can choose to retry only on timeout.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("render: navigation to %s timed out after %s", e.URL, e.Timeout)
}

// NavigationError indicates navigation failed for a non-timeout reason
// (DNS, connection refused, renderer crash).
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("render: navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// CaptureError indicates a screenshot file was not produced or came out
// empty. Likely an environment or logic bug, not worth retrying.
type CaptureError struct {
	Path   string
	Reason string
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("render: screenshot capture %s failed: %s", e.Path, e.Reason)
}
