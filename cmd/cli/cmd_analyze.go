package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gcstester/gcstester/pkg/duration"
	"github.com/gcstester/gcstester/pkg/harness"
	"github.com/gcstester/gcstester/pkg/render"
)

// runAnalyze renders a page in a headless browser and classifies it for
// phishing indicators. The argument is either a full URL or an object
// name, which gets signed first. Exits nonzero when indicators fire.
func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cf := registerCommon(fs)
	timeout := fs.Duration("timeout", duration.PageLoad, "Page load timeout")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gcstester analyze [flags] <url-or-object>")
		os.Exit(1)
	}

	env := setup(cf)
	ctx, cancel := signalContext()

	flagged, err := analyzeTarget(ctx, env, cf, fs.Arg(0), *timeout)
	cancel()
	env.close()
	if err != nil {
		env.printer.Fail("%v", err)
		os.Exit(1)
	}
	if flagged {
		os.Exit(1)
	}
}

// analyzeTarget does the work behind a defer boundary so the browser is
// torn down before the process exits.
func analyzeTarget(ctx context.Context, env *runtimeEnv, cf *commonFlags, arg string, timeout time.Duration) (bool, error) {
	h := newHarness(env)
	defer h.Close()
	defer writeReport(env, cf, h)

	target, err := resolveTarget(ctx, h, arg)
	if err != nil {
		return false, err
	}

	session, err := newSession(ctx, env)
	if err != nil {
		return false, err
	}
	defer session.Close()

	env.printer.Title("page analysis")
	env.printer.URL("target", target)

	verdict, err := h.AnalyzeSignedURL(ctx, session, target, timeout)
	if err != nil {
		return false, err
	}
	return verdict.TotalIndicators > 0, nil
}

// runScreenshot captures a rendered page to PNG under the configured
// screenshot directory.
func runScreenshot() {
	fs := flag.NewFlagSet("screenshot", flag.ExitOnError)
	cf := registerCommon(fs)
	name := fs.String("name", "", "Output file name (default: derived from the URL)")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gcstester screenshot [flags] <url-or-object>")
		os.Exit(1)
	}

	env := setup(cf)
	ctx, cancel := signalContext()

	err := captureTarget(ctx, env, cf, fs.Arg(0), *name)
	cancel()
	env.close()
	if err != nil {
		env.printer.Fail("%v", err)
		os.Exit(1)
	}
}

func captureTarget(ctx context.Context, env *runtimeEnv, cf *commonFlags, arg, name string) error {
	h := newHarness(env)
	defer h.Close()
	defer writeReport(env, cf, h)

	target, err := resolveTarget(ctx, h, arg)
	if err != nil {
		return err
	}

	session, err := newSession(ctx, env)
	if err != nil {
		return err
	}
	defer session.Close()

	if name == "" {
		name = target
	}
	path, err := h.CaptureScreenshot(ctx, session, target, name)
	if err != nil {
		return err
	}
	env.printer.Pass("screenshot written to %s", path)
	return nil
}

// resolveTarget passes URLs through and signs bare object names.
func resolveTarget(ctx context.Context, h *harness.Harness, arg string) (string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, nil
	}
	return h.SignObject(ctx, arg)
}

func newSession(ctx context.Context, env *runtimeEnv) (*render.Session, error) {
	return render.NewSession(ctx, render.Options{
		ChromePath:    env.cfg.ChromePath,
		ScreenshotDir: env.cfg.ScreenshotDir,
	}, env.logger)
}
