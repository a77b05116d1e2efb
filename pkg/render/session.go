// Package render drives a headless Chrome instance to load signed URLs the
// way a victim's browser would: scripts run, redirects fire, async requests
// go out. One long-lived browser is shared across the whole run; every
// render borrows a fresh child context so no cookies, cache, or DOM state
// leak between validations.
package render

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/gcstester/gcstester/pkg/duration"
	"github.com/gcstester/gcstester/pkg/procexec"
)

// Options configures the shared browser session.
type Options struct {
	// ChromePath overrides browser discovery. Empty means let chromedp
	// find an installed Chrome/Chromium.
	ChromePath string

	// ScreenshotDir is where captures are written. Defaults to "screenshots".
	ScreenshotDir string
}

// Session owns the process-wide browser instance. Create it once at session
// start, pass it explicitly to whoever needs to render, and Close it once at
// session end. Its launch configuration is read-only after creation.
type Session struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	screenshotDir string
	logger        *slog.Logger
}

// NewSession launches the browser. The flags mirror what signed-URL checks
// need: certificate errors and mixed content must not block navigation,
// because payload inspection is the point, not transport hygiene.
func NewSession(ctx context.Context, opts Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("allow-running-insecure-content", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch eagerly so a missing browser fails the session constructor,
	// not the first render.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &NavigationError{URL: "about:blank", Err: err}
	}

	logger.Info("browser session started", slog.String("screenshot_dir", opts.ScreenshotDir))

	return &Session{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		screenshotDir: opts.ScreenshotDir,
		logger:        logger,
	}, nil
}

// Close tears the browser down. Chrome child processes (GPU helper,
// renderer) can block a graceful cancel indefinitely, so teardown is bounded
// and falls back to force-killing the whole process tree.
func (s *Session) Close() {
	// Capture the browser process before cancelling — after cancel the
	// process reference may be nil.
	var proc *os.Process
	if c := chromedp.FromContext(s.browserCtx); c != nil && c.Browser != nil {
		proc = c.Browser.Process()
	}

	done := make(chan struct{})
	go func() {
		s.browserCancel()
		s.allocCancel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(duration.BrowserShutdown):
		procexec.KillProcessTree(proc)
		s.logger.Warn("browser teardown timed out, process tree force-killed")
	}
}
