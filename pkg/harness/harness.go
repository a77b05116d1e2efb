// Package harness orchestrates end-to-end runs against a live bucket:
// object lifecycle through the storage CLI, signed URL issuance, content
// validation over HTTP, and rendered-page threat classification.
//
// Every run is namespaced by a short random ID so concurrent runs on the
// same bucket cannot collide, and cleanup can remove exactly what the run
// created.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gcstester/gcstester/pkg/config"
	"github.com/gcstester/gcstester/pkg/fetch"
	"github.com/gcstester/gcstester/pkg/gcloud"
	"github.com/gcstester/gcstester/pkg/metrics"
	"github.com/gcstester/gcstester/pkg/phishing"
	"github.com/gcstester/gcstester/pkg/render"
	"github.com/gcstester/gcstester/pkg/ui"
)

// Harness drives one namespaced run. Construct with New, then call the
// step methods; every step is recorded in the run report regardless of
// outcome.
type Harness struct {
	cfg     *config.Config
	cli     *gcloud.CLI
	fetcher *fetch.Client
	printer *ui.Printer
	metrics *metrics.Server
	logger  *slog.Logger
	runID   string
	report  *Report
}

// Option customizes a Harness.
type Option func(*Harness)

// WithMetrics attaches a metrics server; steps then publish observations.
func WithMetrics(m *metrics.Server) Option {
	return func(h *Harness) { h.metrics = m }
}

// WithRunID pins the run ID instead of generating one. Used by tests and
// by cleanup of a previous run.
func WithRunID(id string) Option {
	return func(h *Harness) { h.runID = id }
}

// New creates a Harness over cfg. A nil logger falls back to
// slog.Default(), a nil printer writes to stdout.
func New(cfg *config.Config, logger *slog.Logger, printer *ui.Printer, opts ...Option) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	if printer == nil {
		printer = ui.NewPrinter(os.Stdout, false)
	}

	h := &Harness{
		cfg:     cfg,
		cli:     gcloud.New(cfg.GcloudPath, cfg.ExecEnv(), logger),
		fetcher: fetch.NewClient(logger),
		printer: printer,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.runID == "" {
		h.runID = uuid.NewString()[:8]
	}
	h.logger = h.logger.With(slog.String("run_id", h.runID))
	h.report = newReport(h.runID, cfg.BucketName)
	return h
}

// RunID returns the namespace of this run.
func (h *Harness) RunID() string { return h.runID }

// Report returns the run report accumulated so far.
func (h *Harness) Report() *Report { return h.report }

// ObjectName returns the namespaced object name for a suffix, e.g.
// "test-object-1a2b3c4d-benign.svg".
func (h *Harness) ObjectName(suffix string) string {
	return h.cfg.ObjectPrefix + h.runID + "-" + suffix
}

// Close releases the HTTP client's idle connections.
func (h *Harness) Close() {
	h.fetcher.Close()
}

// step runs fn, records the outcome, prints it, and feeds metrics.
func (h *Harness) step(name string, fn func() (string, error)) error {
	start := time.Now()
	detail, err := fn()
	elapsed := time.Since(start)

	if h.metrics != nil {
		h.metrics.ObserveCommand(name, elapsed, err == nil)
	}
	if err != nil {
		h.report.record(name, false, err.Error(), elapsed)
		h.printer.Fail("%s: %v", name, err)
		h.logger.Error("step failed", slog.String("step", name), slog.Any("error", err))
		return err
	}
	h.report.record(name, true, detail, elapsed)
	if detail != "" {
		h.printer.Pass("%s: %s", name, detail)
	} else {
		h.printer.Pass("%s", name)
	}
	return nil
}

// CheckVersion verifies the CLI is present and logs its version banner.
func (h *Harness) CheckVersion(ctx context.Context) error {
	return h.step("version", func() (string, error) {
		res, err := h.cli.Version(ctx)
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			return "", fmt.Errorf("version exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		first, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
		return first, nil
	})
}

// ProbeBucket verifies the configured bucket is reachable and listable.
func (h *Harness) ProbeBucket(ctx context.Context) error {
	return h.step("probe-bucket", func() (string, error) {
		res, err := h.cli.ListObjects(ctx, h.cfg.BucketName, "")
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			return "", fmt.Errorf("bucket %s not listable: %s", h.cfg.BucketName, strings.TrimSpace(res.Stderr))
		}
		return h.cfg.BucketURL(), nil
	})
}

// UploadFile copies a local file to the namespaced object name and
// returns the object's gs:// URL.
func (h *Harness) UploadFile(ctx context.Context, localPath, objectName string) (string, error) {
	dst := h.cfg.ObjectURL(objectName)
	err := h.step("upload", func() (string, error) {
		res, err := h.cli.CopyObjects(ctx, localPath, dst)
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			return "", fmt.Errorf("copy to %s exited %d: %s", dst, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		return dst, nil
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// ListRun lists the objects belonging to this run and returns their
// gs:// URLs.
func (h *Harness) ListRun(ctx context.Context) ([]string, error) {
	var listed []string
	err := h.step("list", func() (string, error) {
		filter := h.cfg.ObjectURL(h.cfg.ObjectPrefix + h.runID + "-*")
		res, err := h.cli.ListObjects(ctx, h.cfg.BucketName, filter)
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			return "", fmt.Errorf("list exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		for _, line := range strings.Split(res.Stdout, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "gs://") {
				listed = append(listed, line)
			}
		}
		return fmt.Sprintf("%d objects", len(listed)), nil
	})
	if err != nil {
		return nil, err
	}
	return listed, nil
}

// DeleteObject removes one namespaced object.
func (h *Harness) DeleteObject(ctx context.Context, objectName string) error {
	return h.step("delete", func() (string, error) {
		target := h.cfg.ObjectURL(objectName)
		res, err := h.cli.DeleteObjects(ctx, target, false)
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			return "", fmt.Errorf("delete %s exited %d: %s", target, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		return target, nil
	})
}

// Cleanup removes every object this run created. Safe to call when the
// run created nothing; "not found" from the CLI is treated as clean.
func (h *Harness) Cleanup(ctx context.Context) error {
	return h.step("cleanup", func() (string, error) {
		target := h.cfg.ObjectURL(h.cfg.ObjectPrefix + h.runID + "-*")
		res, err := h.cli.DeleteObjects(ctx, target, true)
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			stderr := strings.TrimSpace(res.Stderr)
			if strings.Contains(stderr, "not found") || strings.Contains(stderr, "matched no objects") {
				return "nothing to remove", nil
			}
			return "", fmt.Errorf("cleanup exited %d: %s", res.ExitCode, stderr)
		}
		return target, nil
	})
}

// SignObject issues a signed URL for a namespaced object and returns it.
func (h *Harness) SignObject(ctx context.Context, objectName string) (string, error) {
	var signed string
	err := h.step("sign-url", func() (string, error) {
		res, err := h.cli.SignURL(ctx, h.cfg.ObjectURL(objectName), h.cfg.DurationFlag(), h.cfg.KeyFilePath)
		if err != nil {
			return "", err
		}
		if !res.Succeeded() {
			return "", fmt.Errorf("sign-url exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		signed, err = gcloud.ExtractSignedURL(res.Stdout)
		if err != nil {
			return "", err
		}
		return "issued, valid " + h.cfg.DurationFlag(), nil
	})
	if err != nil {
		return "", err
	}
	h.printer.URL("signed url", signed)
	return signed, nil
}

// ValidateSignedURL fetches the signed URL and checks the body length
// against the uploaded size.
func (h *Harness) ValidateSignedURL(ctx context.Context, signedURL string, expectedLength int64) (fetch.Outcome, error) {
	var outcome fetch.Outcome
	err := h.step("validate", func() (string, error) {
		outcome = h.fetcher.FetchValidated(ctx, signedURL, expectedLength)
		if h.metrics != nil {
			h.metrics.ObserveFetch(outcome.StatusCode, outcome.Success)
		}
		if !outcome.Success {
			return "", fmt.Errorf("signed url validation: %s", outcome.ErrorMessage)
		}
		return fmt.Sprintf("status %d, %d bytes", outcome.StatusCode, outcome.ContentLength), nil
	})
	return outcome, err
}

// AnalyzeSignedURL renders the signed URL in the browser and classifies
// the resulting page. Pages with indicators get their HTML dumped for
// offline review.
func (h *Harness) AnalyzeSignedURL(ctx context.Context, session *render.Session, signedURL string, timeout time.Duration) (phishing.Report, error) {
	var verdict phishing.Report
	err := h.step("analyze", func() (string, error) {
		page, err := session.Render(ctx, signedURL, timeout)
		if err != nil {
			return "", err
		}
		if h.metrics != nil {
			h.metrics.ObserveRender(page.LoadTime)
		}

		verdict = phishing.Classify(page.HTML, page.FinalURL)
		if h.metrics != nil {
			h.metrics.SetIndicators(verdict.TotalIndicators)
		}

		h.printer.Verdict(verdict.TotalIndicators)
		for _, ind := range phishing.ScoredIndicators() {
			h.printer.IndicatorLine(ind.Name, verdict.Indicators[ind.Name])
		}

		if verdict.TotalIndicators > 0 {
			dump, err := DumpContent(page.HTML)
			if err != nil {
				h.logger.Warn("content dump failed", slog.Any("error", err))
			} else {
				h.printer.Info("page content dumped to %s", dump)
			}
			return fmt.Sprintf("%d indicators", verdict.TotalIndicators), nil
		}
		return "clean", nil
	})
	return verdict, err
}

// CaptureScreenshot captures the rendered signed URL to a PNG under the
// configured screenshot directory and returns the file path.
func (h *Harness) CaptureScreenshot(ctx context.Context, session *render.Session, signedURL, name string) (string, error) {
	var path string
	err := h.step("screenshot", func() (string, error) {
		var err error
		path, err = session.Screenshot(ctx, signedURL, name)
		if err != nil {
			return "", err
		}
		return path, nil
	})
	return path, err
}

// DumpContent writes page HTML to a timestamped file in the working
// directory and returns the file name.
func DumpContent(html string) (string, error) {
	name := fmt.Sprintf("phishing-content-%d.html", time.Now().UnixMilli())
	if err := os.WriteFile(name, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("dumping page content: %w", err)
	}
	return name, nil
}
