package testutil

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRunConcurrentlyRunsAll(t *testing.T) {
	var n int64
	RunConcurrently(32, func(i int) {
		atomic.AddInt64(&n, 1)
	})
	if n != 32 {
		t.Fatalf("expected 32 runs, got %d", n)
	}
}

func TestAssertTimeoutPasses(t *testing.T) {
	AssertTimeout(t, "fast", time.Second, func() {})
}

func TestGoroutineTrackerNoLeak(t *testing.T) {
	tracker := TrackGoroutines()
	done := make(chan struct{})
	go func() { close(done) }()
	<-done
	tracker.CheckLeaks(t, 2)
}
