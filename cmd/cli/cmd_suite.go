package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gcstester/gcstester/pkg/duration"
	"github.com/gcstester/gcstester/pkg/harness"
)

// runSuite executes the full end-to-end pass: CLI sanity, object
// lifecycle, signed URL content validation, and browser classification of
// a benign and a hostile fixture. Fixtures are namespaced per run and
// removed at the end.
func runSuite() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cf := registerCommon(fs)
	size := fs.Int("size", 2048, "Random object size in bytes")
	timeout := fs.Duration("timeout", duration.PageLoad, "Page load timeout")
	skipBrowser := fs.Bool("skip-browser", false, "Skip the headless browser scenarios")
	_ = fs.Parse(os.Args[2:])

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	h := newHarness(env)
	defer h.Close()

	env.printer.Title("end-to-end run")
	env.printer.KeyValue("run id", h.RunID())
	env.printer.KeyValue("bucket", env.cfg.BucketURL())
	env.printer.Divider()

	err := runScenarios(ctx, env, h, *size, *timeout, *skipBrowser)
	writeReport(env, cf, h)
	if err != nil {
		env.fatal(err)
	}
	if !h.Report().Passed() {
		env.printer.Fail("run finished with %d failed steps", h.Report().Failures)
		env.close()
		os.Exit(1)
	}
	env.printer.Pass("all scenarios passed")
}

func runScenarios(ctx context.Context, env *runtimeEnv, h *harness.Harness, size int, timeout time.Duration, skipBrowser bool) error {
	if err := h.CheckVersion(ctx); err != nil {
		return err
	}
	if err := h.ProbeBucket(ctx); err != nil {
		return err
	}
	defer func() { _ = h.Cleanup(ctx) }()

	fixtureDir, err := os.MkdirTemp("", "gcstester-fixtures-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(fixtureDir)

	// Object lifecycle plus length validation over a signed URL.
	env.printer.Section("content validation")
	payloadName := h.ObjectName("payload.bin")
	local, err := harness.WriteRandomObject(fixtureDir, payloadName, size)
	if err != nil {
		return err
	}
	if _, err := h.UploadFile(ctx, local, payloadName); err != nil {
		return err
	}
	signed, err := h.SignObject(ctx, payloadName)
	if err != nil {
		return err
	}
	if _, err := h.ValidateSignedURL(ctx, signed, int64(size)); err != nil {
		return err
	}
	if _, err := h.ListRun(ctx); err != nil {
		return err
	}
	if err := h.DeleteObject(ctx, payloadName); err != nil {
		return err
	}

	if skipBrowser {
		env.printer.Warn("browser scenarios skipped")
		return nil
	}

	session, err := newSession(ctx, env)
	if err != nil {
		return err
	}
	defer session.Close()

	// A rendered benign image must classify clean.
	env.printer.Section("benign content")
	svgPath, err := harness.WriteSVGFixture(fixtureDir)
	if err != nil {
		return err
	}
	svgName := h.ObjectName("benign.svg")
	if _, err := h.UploadFile(ctx, svgPath, svgName); err != nil {
		return err
	}
	svgURL, err := h.SignObject(ctx, svgName)
	if err != nil {
		return err
	}
	verdict, err := h.AnalyzeSignedURL(ctx, session, svgURL, timeout)
	if err != nil {
		return err
	}
	if verdict.TotalIndicators != 0 {
		return fmt.Errorf("benign fixture classified with %d indicators", verdict.TotalIndicators)
	}

	// The hostile fixture must trip every scored indicator.
	env.printer.Section("hostile content")
	htmlPath, err := harness.WritePhishingFixture(fixtureDir)
	if err != nil {
		return err
	}
	htmlName := h.ObjectName("harvest.html")
	if _, err := h.UploadFile(ctx, htmlPath, htmlName); err != nil {
		return err
	}
	htmlURL, err := h.SignObject(ctx, htmlName)
	if err != nil {
		return err
	}
	verdict, err = h.AnalyzeSignedURL(ctx, session, htmlURL, timeout)
	if err != nil {
		return err
	}
	if verdict.TotalIndicators == 0 {
		return fmt.Errorf("hostile fixture classified clean")
	}
	if _, err := h.CaptureScreenshot(ctx, session, htmlURL, htmlName); err != nil {
		return err
	}
	return nil
}
