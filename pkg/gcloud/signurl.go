package gcloud

import (
	"errors"
	"regexp"
)

// ErrNoSignedURL indicates sign-url output carried no extractable URL.
// That is a usage error — a misconfigured signing key or an altered CLI
// output format — and is surfaced instead of silently returning nothing.
var ErrNoSignedURL = errors.New("gcloud: no URL extracted from sign-url output")

// The sign-url command emits the result as a YAML-ish field on its own line:
//
//	signed_url: https://storage.googleapis.com/bucket/object?X-Goog-...
//
// This line grammar is part of the façade's contract and is fixture-tested
// independently of a live CLI.
var signedURLPattern = regexp.MustCompile(`signed_url:\s+(https://\S+)`)

// ExtractSignedURL pulls the signed URL out of sign-url stdout.
func ExtractSignedURL(output string) (string, error) {
	m := signedURLPattern.FindStringSubmatch(output)
	if m == nil {
		return "", ErrNoSignedURL
	}
	return m[1], nil
}
