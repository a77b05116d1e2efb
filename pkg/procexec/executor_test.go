//go:build !windows

package procexec

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcstester/gcstester/pkg/testutil"
)

func TestExecuteCapturesStdoutAndStderr(t *testing.T) {
	t.Parallel()

	res, err := New(nil).Execute(context.Background(),
		[]string{"sh", "-c", "echo out; echo err >&2"}, nil, 10*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Succeeded())
}

func TestExecuteReportsTrueExitCode(t *testing.T) {
	t.Parallel()

	res, err := New(nil).Execute(context.Background(),
		[]string{"sh", "-c", "exit 3"}, nil, 10*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Succeeded())
}

func TestExecuteMergesEnvironmentOverAmbient(t *testing.T) {
	t.Setenv("PROCEXEC_AMBIENT", "kept")

	res, err := New(nil).Execute(context.Background(),
		[]string{"sh", "-c", "echo $PROCEXEC_AMBIENT $PROCEXEC_EXTRA"},
		map[string]string{"PROCEXEC_EXTRA": "added"}, 10*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "kept added\n", res.Stdout)
}

func TestExecuteEnvOverrideWins(t *testing.T) {
	t.Setenv("PROCEXEC_CLASH", "ambient")

	res, err := New(nil).Execute(context.Background(),
		[]string{"sh", "-c", "echo $PROCEXEC_CLASH"},
		map[string]string{"PROCEXEC_CLASH": "override"}, 10*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "override\n", res.Stdout)
}

func TestExecuteLargeOutputDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	// 1MB on each stream exceeds any OS pipe buffer.
	res, err := New(nil).Execute(context.Background(),
		[]string{"sh", "-c", "head -c 1048576 /dev/zero | tr '\\0' 'a'; head -c 1048576 /dev/zero | tr '\\0' 'b' >&2"},
		nil, 30*time.Second)
	require.NoError(t, err)

	assert.Len(t, res.Stdout, 1048576)
	assert.Len(t, res.Stderr, 1048576)
}

// Not parallel: goroutine accounting needs a quiet runtime.
func TestExecuteTimeoutKillsProcess(t *testing.T) {
	// Unique sleep argument so the child can be found (or not) via pgrep.
	const marker = "5.73912"

	tracker := testutil.TrackGoroutines()
	start := time.Now()
	res, err := New(nil).Execute(context.Background(),
		[]string{"sleep", marker}, nil, 1*time.Second)
	elapsed := time.Since(start)

	assert.Nil(t, res, "no partial result on timeout")

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1*time.Second, te.Timeout)
	assert.Contains(t, te.Error(), "1s")
	assert.Less(t, elapsed, 3*time.Second, "call returned promptly after the bound")

	// Confirm the child is gone: pgrep exits non-zero when nothing matches.
	out := exec.Command("pgrep", "-f", "sleep "+marker).Run()
	assert.Error(t, out, "timed-out child should no longer be running")

	// The wait goroutine must have reaped and exited.
	tracker.CheckLeaks(t, 2)
}

func TestExecuteContextCancellationPropagates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res, err := New(nil).Execute(ctx, []string{"sleep", "10"}, nil, 30*time.Second)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteSpawnFailure(t *testing.T) {
	t.Parallel()

	res, err := New(nil).Execute(context.Background(),
		[]string{"definitely-not-a-real-binary-xyz"}, nil, 5*time.Second)
	assert.Nil(t, res)

	var se *SpawnError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "definitely-not-a-real-binary-xyz", se.Path)
}

func TestExecutePreconditions(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Execute(context.Background(), nil, nil, time.Second)
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = New(nil).Execute(context.Background(), []string{"true"}, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidTimeout)

	_, err = New(nil).Execute(context.Background(), []string{"true"}, nil, -time.Second)
	assert.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestMergeEnv(t *testing.T) {
	t.Parallel()

	merged := mergeEnv([]string{"A=1", "B=2"}, map[string]string{"B": "3", "C": "4"})
	assert.Contains(t, merged, "A=1")
	assert.Contains(t, merged, "B=3")
	assert.Contains(t, merged, "C=4")
	assert.NotContains(t, merged, "B=2")

	ambient := []string{"A=1"}
	assert.Equal(t, ambient, mergeEnv(ambient, nil))
}

func TestSpawnErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	se := &SpawnError{Path: "p", Err: inner}
	assert.ErrorIs(t, se, inner)
}
