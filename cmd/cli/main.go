// Command gcstester exercises a cloud storage bucket end to end: object
// lifecycle through the storage CLI, signed URL issuance, content
// validation over HTTP, and rendered-page threat classification.
package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Println("gcstester - cloud storage signed URL test harness")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gcstester <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  version       Show the storage CLI version")
	fmt.Println("  list          List objects in the configured bucket")
	fmt.Println("  copy          Copy a file or object (local or gs:// on either side)")
	fmt.Println("  delete        Delete an object")
	fmt.Println("  sign          Issue a signed URL for an object")
	fmt.Println("  validate      Upload an object, sign it, and verify the fetched content")
	fmt.Println("  analyze       Render a signed URL and classify it for phishing indicators")
	fmt.Println("  screenshot    Capture a rendered page to PNG")
	fmt.Println("  run           Full end-to-end suite (benign and hostile fixtures)")
	fmt.Println()
	fmt.Println("Configuration comes from gcstester.yaml and environment variables;")
	fmt.Println("run 'gcstester <command> -h' for per-command flags.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  gcstester validate -size 4096")
	fmt.Println("  gcstester sign test-object-demo.txt")
	fmt.Println("  gcstester analyze https://storage.googleapis.com/bucket/page.html")
	fmt.Println("  gcstester run -report run-report.json -metrics-port 9090")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		runVersion()
	case "list", "ls":
		runList()
	case "copy", "cp":
		runCopy()
	case "delete", "rm":
		runDelete()
	case "sign", "sign-url":
		runSign()
	case "validate":
		runValidate()
	case "analyze", "classify":
		runAnalyze()
	case "screenshot", "capture":
		runScreenshot()
	case "run", "suite", "e2e":
		runSuite()
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}
