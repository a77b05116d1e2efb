package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gcstester/gcstester/pkg/config"
	"github.com/gcstester/gcstester/pkg/harness"
	"github.com/gcstester/gcstester/pkg/metrics"
	"github.com/gcstester/gcstester/pkg/ui"
)

// commonFlags are shared by every subcommand.
type commonFlags struct {
	configFile  string
	verbose     bool
	noColor     bool
	metricsPort int
	reportFile  string
}

func registerCommon(fs *flag.FlagSet) *commonFlags {
	cf := &commonFlags{}
	fs.StringVar(&cf.configFile, "config", "", "Config file path (default: gcstester.yaml search)")
	fs.BoolVar(&cf.verbose, "verbose", false, "Debug logging")
	fs.BoolVar(&cf.verbose, "v", false, "Debug logging (alias)")
	fs.BoolVar(&cf.noColor, "no-color", false, "Disable colored output")
	fs.IntVar(&cf.metricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port (0 = off)")
	fs.StringVar(&cf.reportFile, "report", "", "Write a JSON run report to this file")
	return cf
}

// runtimeEnv is everything a subcommand needs wired up.
type runtimeEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *ui.Printer
	metrics *metrics.Server
}

// setup loads config and builds the logger, printer, and optional
// metrics endpoint. Exits on unusable configuration.
func setup(cf *commonFlags) *runtimeEnv {
	level := slog.LevelInfo
	if cf.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	printer := ui.NewPrinter(os.Stdout, cf.noColor)

	var cfg *config.Config
	var err error
	if cf.configFile != "" {
		cfg, err = config.LoadFile(cf.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		printer.Fail("configuration: %v", err)
		os.Exit(1)
	}

	env := &runtimeEnv{cfg: cfg, logger: logger, printer: printer}

	if cf.metricsPort > 0 {
		env.metrics, err = metrics.NewServer(metrics.Options{Port: cf.metricsPort}, logger)
		if err != nil {
			printer.Fail("metrics endpoint: %v", err)
			os.Exit(1)
		}
		printer.Info("metrics at %s", env.metrics.Addr())
	}
	return env
}

func (e *runtimeEnv) close() {
	if e.metrics != nil {
		_ = e.metrics.Close()
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// fatal prints the error and exits nonzero after cleanup.
func (e *runtimeEnv) fatal(err error) {
	e.printer.Fail("%v", err)
	e.close()
	os.Exit(1)
}

func newHarness(env *runtimeEnv) *harness.Harness {
	opts := []harness.Option{}
	if env.metrics != nil {
		opts = append(opts, harness.WithMetrics(env.metrics))
	}
	return harness.New(env.cfg, env.logger, env.printer, opts...)
}

// writeReport writes the run report when -report was given.
func writeReport(env *runtimeEnv, cf *commonFlags, h *harness.Harness) {
	if cf.reportFile == "" {
		return
	}
	if err := h.Report().Write(cf.reportFile); err != nil {
		env.printer.Warn("run report: %v", err)
		return
	}
	env.printer.Info("run report written to %s", cf.reportFile)
}
