// Package metrics exposes harness run metrics for Prometheus scraping.
// A Server owns a private registry so repeated runs in one process never
// collide with the default registry or with each other.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcstester/gcstester/pkg/duration"
)

// Options configures the metrics endpoint.
type Options struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// ReadTimeout for the HTTP server (default: duration.MetricsRead).
	ReadTimeout time.Duration

	// WriteTimeout for the HTTP server (default: duration.MetricsWrite).
	WriteTimeout time.Duration
}

// Server serves run metrics over HTTP and records observations from the
// harness. Safe for concurrent use.
type Server struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     Options
	logger   *slog.Logger

	commandsTotal   *prometheus.CounterVec
	commandSeconds  *prometheus.HistogramVec
	fetchesTotal    *prometheus.CounterVec
	renderSeconds   prometheus.Histogram
	indicatorsFound prometheus.Gauge

	mu     sync.Mutex
	closed bool
}

// NewServer registers the metric set and starts serving immediately.
// The server runs until Close is called.
func NewServer(opts Options, logger *slog.Logger) (*Server, error) {
	if opts.Port == 0 {
		opts.Port = 9090
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = duration.MetricsRead
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = duration.MetricsWrite
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		registry: prometheus.NewRegistry(),
		opts:     opts,
		logger:   logger,
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	s.startServer()
	return s, nil
}

func (s *Server) initMetrics() error {
	s.commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcstester_cli_commands_total",
			Help: "CLI invocations by subcommand and outcome",
		},
		[]string{"subcommand", "outcome"},
	)

	s.commandSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gcstester_cli_command_seconds",
			Help:    "CLI invocation wall time in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"subcommand"},
	)

	s.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcstester_signed_url_fetches_total",
			Help: "Signed URL fetch attempts by HTTP status and outcome",
		},
		[]string{"status", "outcome"},
	)

	s.renderSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gcstester_page_render_seconds",
			Help:    "Browser page render time in seconds",
			Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 20.0, 30.0},
		},
	)

	s.indicatorsFound = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gcstester_threat_indicators",
			Help: "Threat indicators detected in the last classification",
		},
	)

	collectors := []prometheus.Collector{
		s.commandsTotal,
		s.commandSeconds,
		s.fetchesTotal,
		s.renderSeconds,
		s.indicatorsFound,
	}
	for _, c := range collectors {
		if err := s.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) startServer() {
	mux := http.NewServeMux()
	mux.Handle(s.opts.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      mux,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server error", "error", err)
		}
	}()
}

// ObserveCommand records one CLI invocation.
func (s *Server) ObserveCommand(subcommand string, elapsed time.Duration, succeeded bool) {
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	s.commandsTotal.WithLabelValues(subcommand, outcome).Inc()
	s.commandSeconds.WithLabelValues(subcommand).Observe(elapsed.Seconds())
}

// ObserveFetch records one signed URL fetch attempt.
func (s *Server) ObserveFetch(statusCode int, succeeded bool) {
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	s.fetchesTotal.WithLabelValues(fmt.Sprintf("%d", statusCode), outcome).Inc()
}

// ObserveRender records one browser render.
func (s *Server) ObserveRender(elapsed time.Duration) {
	s.renderSeconds.Observe(elapsed.Seconds())
}

// SetIndicators records the indicator tally of the latest classification.
func (s *Server) SetIndicators(count int) {
	s.indicatorsFound.Set(float64(count))
}

// Addr returns the address where metrics are served.
func (s *Server) Addr() string {
	return fmt.Sprintf("http://localhost:%d%s", s.opts.Port, s.opts.Path)
}

// Close shuts the endpoint down, bounded by the write timeout.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
