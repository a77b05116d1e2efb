package main

import (
	"context"
	"flag"
	"os"

	"github.com/gcstester/gcstester/pkg/harness"
)

// runValidate uploads a random object, signs it, fetches the signed URL
// and verifies the body length matches what was uploaded. The object is
// removed afterwards even when validation fails.
func runValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cf := registerCommon(fs)
	size := fs.Int("size", 2048, "Random object size in bytes")
	keep := fs.Bool("keep", false, "Leave the uploaded object in place")
	_ = fs.Parse(os.Args[2:])

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	h := newHarness(env)
	defer h.Close()
	env.printer.Title("signed URL validation")
	env.printer.KeyValue("run id", h.RunID())
	env.printer.KeyValue("bucket", env.cfg.BucketURL())

	err := validateObject(ctx, env, h, *size, *keep)
	writeReport(env, cf, h)
	if err != nil {
		env.fatal(err)
	}
}

func validateObject(ctx context.Context, env *runtimeEnv, h *harness.Harness, size int, keep bool) error {
	name := h.ObjectName("payload.bin")
	local, err := harness.WriteRandomObject(os.TempDir(), name, size)
	if err != nil {
		return err
	}
	defer os.Remove(local)

	if _, err := h.UploadFile(ctx, local, name); err != nil {
		return err
	}
	if !keep {
		defer func() { _ = h.Cleanup(ctx) }()
	}

	signed, err := h.SignObject(ctx, name)
	if err != nil {
		return err
	}

	outcome, err := h.ValidateSignedURL(ctx, signed, int64(size))
	if err != nil {
		return err
	}
	env.printer.StatusCode("status", outcome.StatusCode)
	return nil
}
