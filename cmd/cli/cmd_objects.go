package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gcstester/gcstester/pkg/gcloud"
)

func runVersion() {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	cf := registerCommon(fs)
	_ = fs.Parse(os.Args[2:])

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	cli := gcloud.New(env.cfg.GcloudPath, env.cfg.ExecEnv(), env.logger)
	res, err := cli.Version(ctx)
	if err != nil {
		env.fatal(err)
	}
	fmt.Print(res.Stdout)
	if !res.Succeeded() {
		env.fatal(fmt.Errorf("version exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	cf := registerCommon(fs)
	filter := fs.String("filter", "", "gs:// pattern to narrow the listing")
	_ = fs.Parse(os.Args[2:])

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	cli := gcloud.New(env.cfg.GcloudPath, env.cfg.ExecEnv(), env.logger)
	res, err := cli.ListObjects(ctx, env.cfg.BucketName, *filter)
	if err != nil {
		env.fatal(err)
	}
	fmt.Print(res.Stdout)
	if !res.Succeeded() {
		env.fatal(fmt.Errorf("list exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
}

func runCopy() {
	fs := flag.NewFlagSet("copy", flag.ExitOnError)
	cf := registerCommon(fs)
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: gcstester copy [flags] <src> <dst>")
		os.Exit(1)
	}

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	src, dst := fs.Arg(0), fs.Arg(1)
	cli := gcloud.New(env.cfg.GcloudPath, env.cfg.ExecEnv(), env.logger)
	res, err := cli.CopyObjects(ctx, src, dst)
	if err != nil {
		env.fatal(err)
	}
	if !res.Succeeded() {
		env.fatal(fmt.Errorf("copy exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	env.printer.Pass("copied %s to %s", src, dst)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	cf := registerCommon(fs)
	recursive := fs.Bool("recursive", false, "Delete everything under the path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gcstester delete [flags] <object>")
		os.Exit(1)
	}

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	target := objectURL(env, fs.Arg(0))
	cli := gcloud.New(env.cfg.GcloudPath, env.cfg.ExecEnv(), env.logger)
	res, err := cli.DeleteObjects(ctx, target, *recursive)
	if err != nil {
		env.fatal(err)
	}
	if !res.Succeeded() {
		env.fatal(fmt.Errorf("delete exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	env.printer.Pass("deleted %s", target)
}

func runSign() {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	cf := registerCommon(fs)
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gcstester sign [flags] <object>")
		os.Exit(1)
	}

	env := setup(cf)
	defer env.close()
	ctx, cancel := signalContext()
	defer cancel()

	target := objectURL(env, fs.Arg(0))
	cli := gcloud.New(env.cfg.GcloudPath, env.cfg.ExecEnv(), env.logger)
	res, err := cli.SignURL(ctx, target, env.cfg.DurationFlag(), env.cfg.KeyFilePath)
	if err != nil {
		env.fatal(err)
	}
	if !res.Succeeded() {
		env.fatal(fmt.Errorf("sign-url exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	signed, err := gcloud.ExtractSignedURL(res.Stdout)
	if err != nil {
		env.fatal(err)
	}
	fmt.Println(signed)
}

// objectURL expands a bare object name to a gs:// URL in the configured
// bucket; full gs:// paths pass through.
func objectURL(env *runtimeEnv, arg string) string {
	if strings.HasPrefix(arg, "gs://") {
		return arg
	}
	return env.cfg.ObjectURL(arg)
}
