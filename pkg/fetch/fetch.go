// Package fetch issues HTTP requests against signed URLs and validates the
// payload that comes back. Transport status and payload correctness are kept
// separate: a 200 with the wrong byte count is a failed outcome, not an error.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"

	"github.com/gcstester/gcstester/pkg/duration"
)

const (
	// SampleLimit caps how much of a response body is retained for
	// inspection. Large objects are drained but never buffered whole.
	SampleLimit = 1024

	// maxRedirects bounds redirect following so loops cannot hang a fetch.
	maxRedirects = 5
)

// LengthUnknown disables content-length validation in FetchValidated.
const LengthUnknown int64 = -1

// Outcome is the result of a validated fetch.
type Outcome struct {
	// Success is true only when the transport succeeded AND any expected
	// content length matched.
	Success bool

	// ErrorMessage describes why Success is false.
	ErrorMessage string

	// Headers holds response headers with lower-cased names,
	// last-write-wins for repeated names. Empty on transport failure.
	Headers map[string]string

	// ContentLength is the parsed content-length response header;
	// 0 when the header is missing or unparseable.
	ContentLength int64

	// ContentSample is at most the first SampleLimit bytes of the body.
	ContentSample []byte

	// StatusCode is the final HTTP status after redirects.
	StatusCode int
}

// Client fetches URLs with the relaxed TLS posture the signed-URL checks
// need (self-signed test endpoints must not fail the payload validation).
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a fetch client. A nil logger falls back to slog.Default().
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		logger: logger,
		http: &http.Client{
			Timeout: duration.FetchRequest,
			Jar:     jar,
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
				IdleConnTimeout:     duration.IdleConnTimeout,
				TLSHandshakeTimeout: duration.TLSHandshake,
				MaxIdleConns:        100,
				// Transparent gzip would detach content-length from the
				// bytes actually observed, so ask for the raw entity.
				DisableCompression: true,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// FetchHead issues a header-only request and returns the response headers
// with lower-cased names. Any transport error degrades to a single "error"
// entry so batch header audits keep going.
func (c *Client) FetchHead(ctx context.Context, url string) map[string]string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("head request failed", slog.String("url", url), slog.String("error", err.Error()))
		return map[string]string{"error": err.Error()}
	}
	defer drainAndClose(resp.Body)

	return lowerHeaders(resp.Header)
}

// FetchValidated issues a GET, retains the first SampleLimit bytes, and
// validates the content-length header against expectedLength. Pass
// LengthUnknown to skip validation. Redirects are followed up to
// maxRedirects hops. Connections are released on every path.
func (c *Client) FetchValidated(ctx context.Context, url string, expectedLength int64) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{ErrorMessage: "invalid request: " + err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{ErrorMessage: "request failed: " + err.Error()}
	}
	defer drainAndClose(resp.Body)

	sample, err := readSample(resp.Body)
	if err != nil {
		return Outcome{
			Headers:      lowerHeaders(resp.Header),
			StatusCode:   resp.StatusCode,
			ErrorMessage: "body read failed: " + err.Error(),
		}
	}

	outcome := Outcome{
		Success:       true,
		Headers:       lowerHeaders(resp.Header),
		ContentLength: parseContentLength(resp.Header.Get("Content-Length")),
		ContentSample: sample,
		StatusCode:    resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome.Success = false
		outcome.ErrorMessage = fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return outcome
	}

	// Payload identity, not transport status: a successful GET with the
	// wrong advertised size degrades to a failed outcome.
	if expectedLength > 0 && outcome.ContentLength != expectedLength {
		outcome.Success = false
		outcome.ErrorMessage = fmt.Sprintf("content length mismatch: expected %d, got %d",
			expectedLength, outcome.ContentLength)
	}

	return outcome
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// readSample buffers at most SampleLimit bytes and drains the remainder so
// the connection can be reused without holding a large body in memory.
func readSample(body io.Reader) ([]byte, error) {
	sample, err := io.ReadAll(io.LimitReader(body, SampleLimit))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	return sample, nil
}

// lowerHeaders flattens an http.Header into lower-cased names,
// last value wins for repeated names.
func lowerHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(name)] = values[len(values)-1]
	}
	return out
}

// parseContentLength treats a missing or non-numeric header as 0, not an
// error; absence of the header is a server quirk, not a fetch failure.
func parseContentLength(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// drainAndClose reads any remaining data (bounded) and closes the body so
// the underlying connection can go back to the keep-alive pool.
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
	_ = body.Close()
}
