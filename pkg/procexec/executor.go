// Package procexec runs external commands with a hard wall-clock bound.
// Stdout and stderr are drained concurrently into memory so a chatty child
// can never deadlock on a full pipe, and a child that overruns its bound is
// killed together with its process group rather than asked to stop.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Executor spawns child processes with a merged environment.
type Executor struct {
	logger *slog.Logger
}

// New creates an Executor. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger}
}

// Execute runs command with env merged over the ambient environment and
// blocks until the child exits, the timeout elapses, or ctx is cancelled.
//
// On timeout the child and its process group are force-killed and a
// *TimeoutError is returned with no Result. Cancellation of ctx likewise
// kills the child and propagates ctx.Err(). On any normal exit the Result
// carries the child's true exit status; both output streams are complete,
// though their ordering relative to each other is not defined.
func (e *Executor) Execute(ctx context.Context, command []string, env map[string]string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = mergeEnv(os.Environ(), env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group so a timeout kill reaches the child's children too.
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: command[0], Err: err}
	}

	e.logger.Debug("process started",
		slog.String("command", command[0]),
		slog.Int("pid", cmd.Process.Pid),
		slog.Duration("timeout", timeout))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case waitErr := <-done:
		return e.buildResult(cmd, &stdout, &stderr, start, waitErr)

	case <-timer.C:
		KillProcessTree(cmd.Process)
		<-done // reap the child so no zombie remains
		e.logger.Warn("process killed on timeout",
			slog.String("command", command[0]),
			slog.Duration("timeout", timeout))
		return nil, &TimeoutError{Timeout: timeout}

	case <-ctx.Done():
		KillProcessTree(cmd.Process)
		<-done
		return nil, fmt.Errorf("procexec: interrupted while waiting for %q: %w", command[0], ctx.Err())
	}
}

func (e *Executor) buildResult(cmd *exec.Cmd, stdout, stderr *bytes.Buffer, start time.Time, waitErr error) (*Result, error) {
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if waitErr == nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	// Wait failed for a reason other than a non-zero exit (I/O error on the
	// copy goroutines, for example). Surface it rather than fake a status.
	return nil, fmt.Errorf("procexec: wait failed: %w", waitErr)
}

// mergeEnv layers override KEY=VALUE pairs over the ambient environment.
// Ambient entries are kept unless the override names the same key.
func mergeEnv(ambient []string, override map[string]string) []string {
	if len(override) == 0 {
		return ambient
	}

	merged := make([]string, 0, len(ambient)+len(override))
	for _, kv := range ambient {
		keep := true
		for k := range override {
			if len(kv) > len(k) && kv[len(k)] == '=' && kv[:len(k)] == k {
				keep = false
				break
			}
		}
		if keep {
			merged = append(merged, kv)
		}
	}
	for k, v := range override {
		merged = append(merged, k+"="+v)
	}
	return merged
}
