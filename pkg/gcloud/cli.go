// Package gcloud wraps the cloud storage CLI's object-management commands.
// Every operation delegates to procexec with an operation-specific bound;
// the package never interprets stderr semantics, leaving "not found" versus
// other failures to the caller.
package gcloud

import (
	"context"
	"log/slog"
	"time"

	"github.com/gcstester/gcstester/pkg/duration"
	"github.com/gcstester/gcstester/pkg/procexec"
)

// CLI invokes the storage command-line tool as a child process.
type CLI struct {
	path     string
	env      map[string]string
	executor *procexec.Executor
	logger   *slog.Logger
}

// New creates a CLI façade around the binary at path. env is merged over the
// ambient environment of every invocation. A nil logger falls back to
// slog.Default().
func New(path string, env map[string]string, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{
		path:     path,
		env:      env,
		executor: procexec.New(logger),
		logger:   logger,
	}
}

// ListObjects lists objects in a bucket. An empty filter lists everything
// under gs://bucket/*; otherwise filter is passed through verbatim so
// callers can narrow to a prefix.
func (c *CLI) ListObjects(ctx context.Context, bucket, filter string) (*procexec.Result, error) {
	target := filter
	if target == "" {
		target = "gs://" + bucket + "/*"
	}
	return c.run(ctx, []string{c.path, "storage", "ls", target}, duration.CLIList)
}

// CopyObjects copies src to dst. Either side may be a local path or a
// gs:// object path.
func (c *CLI) CopyObjects(ctx context.Context, src, dst string) (*procexec.Result, error) {
	return c.run(ctx, []string{c.path, "storage", "cp", src, dst}, duration.CLICopy)
}

// DeleteObjects removes the object (or, with recursive, every object under
// the path).
func (c *CLI) DeleteObjects(ctx context.Context, path string, recursive bool) (*procexec.Result, error) {
	cmd := []string{c.path, "storage", "rm"}
	if recursive {
		cmd = append(cmd, "--recursive")
	}
	cmd = append(cmd, path)
	return c.run(ctx, cmd, duration.CLIDelete)
}

// SignURL generates a time-limited signed URL for an object. dur uses the
// CLI's own duration grammar (e.g. "1h"); keyFile is the private key used
// for signing. Use ExtractSignedURL to pull the URL out of the stdout.
func (c *CLI) SignURL(ctx context.Context, objectPath, dur, keyFile string) (*procexec.Result, error) {
	cmd := []string{
		c.path, "storage", "sign-url",
		objectPath,
		"--duration=" + dur,
		"--private-key-file=" + keyFile,
	}
	return c.run(ctx, cmd, duration.CLISignURL)
}

// Version reports the CLI's version information.
func (c *CLI) Version(ctx context.Context) (*procexec.Result, error) {
	return c.run(ctx, []string{c.path, "version"}, duration.CLIVersion)
}

func (c *CLI) run(ctx context.Context, command []string, timeout time.Duration) (*procexec.Result, error) {
	c.logger.Debug("storage cli invocation",
		slog.String("subcommand", command[1]),
		slog.Duration("timeout", timeout))
	return c.executor.Execute(ctx, command, c.env, timeout)
}
