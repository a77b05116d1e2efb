package procexec

import "time"

// Result holds the outcome of a completed process execution.
// It is created once per invocation and never mutated afterwards.
type Result struct {
	// Stdout is the complete standard output of the process.
	Stdout string

	// Stderr is the complete standard error of the process.
	Stderr string

	// ExitCode is the true exit status reported by the OS.
	ExitCode int

	// Duration is how long the process ran.
	Duration time.Duration
}

// Succeeded reports whether the process exited with status 0.
func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}
