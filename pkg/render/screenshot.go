package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/gcstester/gcstester/pkg/duration"
)

const screenshotQuality = 90

// Screenshot navigates an isolated browsing context to url, waits for
// network quiescence, and writes a full-page capture under the session's
// screenshot directory. The directory is created if absent; a zero-byte
// capture is a CaptureError, not a silent success. Returns the written path.
func (s *Session) Screenshot(ctx context.Context, url, outputName string) (string, error) {
	if err := os.MkdirAll(s.screenshotDir, 0o755); err != nil {
		return "", &CaptureError{Path: s.screenshotDir, Reason: "create output dir: " + err.Error()}
	}

	path := filepath.Join(s.screenshotDir, ensurePNGExt(sanitizeFilename(outputName)))

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx, chromedp.WithNewBrowserContext())
	defer tabCancel()

	// Propagate caller cancellation into the browsing context.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	runCtx, cancel := context.WithTimeout(tabCtx, duration.Screenshot)
	defer cancel()

	tracker := newQuiescenceTracker()
	chromedp.ListenTarget(runCtx, tracker.handle)

	var buf []byte
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.ActionFunc(tracker.waitQuiet),
		chromedp.FullScreenshot(&buf, screenshotQuality),
	)
	if err != nil {
		if ctx.Err() == nil && runCtx.Err() != nil {
			return "", &NavigationTimeoutError{URL: url, Timeout: duration.Screenshot}
		}
		return "", &NavigationError{URL: url, Err: err}
	}

	if len(buf) == 0 {
		return "", &CaptureError{Path: path, Reason: "capture produced no data"}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", &CaptureError{Path: path, Reason: "write: " + err.Error()}
	}

	// Trust the filesystem, not the buffer: an interrupted write can leave
	// an empty file behind.
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(path)
		return "", &CaptureError{Path: path, Reason: "capture file missing or empty"}
	}

	s.logger.Info("screenshot saved",
		slog.String("url", url),
		slog.String("path", path),
		slog.Int64("bytes", info.Size()))

	return path, nil
}

// sanitizeFilename makes a URL or object name safe as a single path element.
func sanitizeFilename(name string) string {
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")

	replacer := strings.NewReplacer(
		"/", "_",
		":", "_",
		"?", "_",
		"&", "_",
		"=", "_",
		"#", "_",
		" ", "_",
	)
	name = replacer.Replace(name)

	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

func ensurePNGExt(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".png") {
		return name
	}
	return name + ".png"
}
