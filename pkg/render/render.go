package render

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/gcstester/gcstester/pkg/duration"
)

// PageResult holds what a render extracted from a fully loaded page.
type PageResult struct {
	Title    string
	FinalURL string
	HTML     string
	LoadTime time.Duration
}

// Render navigates a fresh, isolated browsing context to url and waits for
// network quiescence before extracting the title, final URL, and rendered
// DOM. Waiting for quiescence rather than the load event matters: injected
// async scripts (redirects, exfiltration calls) must have had a chance to
// run before content is captured.
//
// The browsing context is private to this call and torn down before return.
func (s *Session) Render(ctx context.Context, url string, timeout time.Duration) (*PageResult, error) {
	if timeout <= 0 {
		timeout = duration.PageLoad
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx, chromedp.WithNewBrowserContext())
	defer tabCancel()

	// Propagate caller cancellation into the browsing context.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	tracker := newQuiescenceTracker()
	chromedp.ListenTarget(runCtx, tracker.handle)

	start := time.Now()
	result := &PageResult{}

	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.ActionFunc(tracker.waitQuiet),
		chromedp.Title(&result.Title),
		chromedp.Location(&result.FinalURL),
		chromedp.OuterHTML("html", &result.HTML, chromedp.ByQuery),
	)
	result.LoadTime = time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &NavigationTimeoutError{URL: url, Timeout: timeout}
		}
		return nil, &NavigationError{URL: url, Err: err}
	}

	s.logger.Info("page rendered",
		slog.String("url", url),
		slog.String("final_url", result.FinalURL),
		slog.String("title", result.Title),
		slog.Duration("load_time", result.LoadTime))

	return result, nil
}

// quiescenceTracker counts in-flight network requests from CDP events and
// decides when the page has gone quiet: nothing in flight and no activity
// for the quiescence window.
type quiescenceTracker struct {
	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
}

func newQuiescenceTracker() *quiescenceTracker {
	return &quiescenceTracker{
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

func (t *quiescenceTracker) handle(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
		t.lastActivity = time.Now()
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	}
}

// quiet reports whether no request is in flight and the last network
// activity is older than the quiescence window.
func (t *quiescenceTracker) quiet(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && now.Sub(t.lastActivity) >= duration.NetworkQuiescence
}

func (t *quiescenceTracker) waitQuiet(ctx context.Context) error {
	ticker := time.NewTicker(duration.QuiescencePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if t.quiet(now) {
				return nil
			}
		}
	}
}
