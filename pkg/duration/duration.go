// Package duration provides canonical time constants for the entire codebase.
// This is the single source of truth for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.CLIList)
//	res, err := executor.Execute(ctx, cmd, env, duration.CLICopy)
//
// Do not hardcode time.Duration values like `30 * time.Second` elsewhere.
// Reference the appropriate constant from this package instead.
package duration

import "time"

// ============================================================================
// STORAGE CLI TIMEOUTS
// ============================================================================
//
// Per-operation bounds for the storage subcommands. Copy and sign-url carry
// a higher bound because both can touch the network and the signing key
// material; version is a purely local call.
// ============================================================================

const (
	// CLIList bounds `storage ls` invocations (30s)
	CLIList = 30 * time.Second

	// CLICopy bounds `storage cp` invocations (60s)
	CLICopy = 60 * time.Second

	// CLIDelete bounds `storage rm` invocations (30s)
	CLIDelete = 30 * time.Second

	// CLISignURL bounds `storage sign-url` invocations (60s)
	CLISignURL = 60 * time.Second

	// CLIVersion bounds `version` invocations (10s)
	CLIVersion = 10 * time.Second
)

// ============================================================================
// BROWSER/RENDER TIMEOUTS
// ============================================================================
//
// Bounds for chromedp navigation, quiescence detection, and capture.
// ============================================================================

const (
	// PageLoad is the navigation timeout for rendering a page (30s)
	PageLoad = 30 * time.Second

	// NetworkQuiescence is the window of no observed network activity
	// treated as "page finished loading" (500ms). Injected async scripts
	// must have had a chance to run before content is captured.
	NetworkQuiescence = 500 * time.Millisecond

	// QuiescencePoll is how often in-flight request counts are checked
	// while waiting for quiescence (50ms)
	QuiescencePoll = 50 * time.Millisecond

	// BrowserShutdown bounds graceful browser teardown before the process
	// tree is force-killed (5s)
	BrowserShutdown = 5 * time.Second

	// Screenshot bounds a single capture operation (30s)
	Screenshot = 30 * time.Second
)

// ============================================================================
// HTTP FETCH TIMEOUTS
// ============================================================================

const (
	// FetchRequest bounds a single HEAD or GET round-trip (30s)
	FetchRequest = 30 * time.Second

	// IdleConnTimeout is how long idle keep-alive connections are kept (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake bounds the TLS handshake (10s)
	TLSHandshake = 10 * time.Second
)

// ============================================================================
// METRICS SERVER TIMEOUTS
// ============================================================================

const (
	// MetricsRead is the metrics endpoint read timeout (5s)
	MetricsRead = 5 * time.Second

	// MetricsWrite is the metrics endpoint write timeout (10s)
	MetricsWrite = 10 * time.Second
)
