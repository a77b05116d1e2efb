package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcstester/gcstester/pkg/duration"
)

func TestQuiescenceTrackerCountsInflight(t *testing.T) {
	t.Parallel()

	tr := newQuiescenceTracker()

	tr.handle(&network.EventRequestWillBeSent{RequestID: "r1"})
	tr.handle(&network.EventRequestWillBeSent{RequestID: "r2"})
	assert.False(t, tr.quiet(time.Now().Add(time.Second)), "in-flight requests block quiescence")

	tr.handle(&network.EventLoadingFinished{RequestID: "r1"})
	tr.handle(&network.EventLoadingFailed{RequestID: "r2"})
	assert.True(t, tr.quiet(time.Now().Add(duration.NetworkQuiescence+time.Millisecond)))
}

func TestQuiescenceTrackerRequiresQuietWindow(t *testing.T) {
	t.Parallel()

	tr := newQuiescenceTracker()
	tr.handle(&network.EventRequestWillBeSent{RequestID: "r1"})
	tr.handle(&network.EventLoadingFinished{RequestID: "r1"})

	// Nothing in flight, but activity was just now: the window has not
	// elapsed yet.
	assert.False(t, tr.quiet(time.Now()))
	assert.True(t, tr.quiet(time.Now().Add(duration.NetworkQuiescence)))
}

func TestQuiescenceTrackerIgnoresUnknownEvents(t *testing.T) {
	t.Parallel()

	tr := newQuiescenceTracker()
	tr.handle("not a network event")
	assert.True(t, tr.quiet(time.Now().Add(duration.NetworkQuiescence)))
}

func TestWaitQuietHonorsContext(t *testing.T) {
	t.Parallel()

	tr := newQuiescenceTracker()
	tr.handle(&network.EventRequestWillBeSent{RequestID: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := tr.waitQuiet(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorTypes(t *testing.T) {
	t.Parallel()

	nav := &NavigationError{URL: "https://x", Err: errors.New("refused")}
	assert.Contains(t, nav.Error(), "https://x")
	assert.Contains(t, nav.Error(), "refused")

	inner := errors.New("root")
	assert.ErrorIs(t, &NavigationError{URL: "u", Err: inner}, inner)

	to := &NavigationTimeoutError{URL: "https://y", Timeout: 30 * time.Second}
	assert.Contains(t, to.Error(), "30s")

	ce := &CaptureError{Path: "screenshots/a.png", Reason: "empty"}
	assert.Contains(t, ce.Error(), "screenshots/a.png")
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "storage.example.com_bucket_obj", sanitizeFilename("https://storage.example.com/bucket/obj"))
	assert.Equal(t, "a_b_c", sanitizeFilename("a?b=c"))
	assert.Len(t, sanitizeFilename(string(make([]byte, 300))), 100)
}

func TestEnsurePNGExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "shot.png", ensurePNGExt("shot"))
	assert.Equal(t, "shot.png", ensurePNGExt("shot.png"))
	assert.Equal(t, "shot.PNG", ensurePNGExt("shot.PNG"))
}

// chromeInstalled reports whether a Chrome/Chromium binary is reachable,
// so the live-browser tests can skip cleanly on minimal CI images.
func chromeInstalled() bool {
	for _, name := range []string{"chrome", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil && path != "" {
			return true
		}
	}
	return false
}

func TestRenderLive(t *testing.T) {
	if !chromeInstalled() {
		t.Skip("no Chrome/Chromium installed")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>hello</title></head><body>rendered body</body></html>`))
	}))
	t.Cleanup(srv.Close)

	sess, err := NewSession(context.Background(), Options{ScreenshotDir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	res, err := sess.Render(context.Background(), srv.URL, duration.PageLoad)
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Title)
	assert.Contains(t, res.HTML, "rendered body")
	assert.Contains(t, res.FinalURL, srv.URL)
}
