// Package phishing scans rendered page content and its resolved URL for a
// fixed set of independent threat indicators. The classifier is a pure
// function: identical inputs always produce an identical report, and no
// indicator depends on another's result, so each one stays independently
// testable and independently explainable.
//
// The classifier makes no verdict. Whether "more than zero indicators"
// means malicious is the caller's policy, not a property this package
// asserts.
package phishing

import "strings"

// Scored indicator names. Keys of Report.Indicators.
const (
	IndicatorBrandMismatch  = "brand_mismatch"
	IndicatorScriptRedirect = "script_redirect"
	IndicatorExfiltration   = "network_exfiltration"
)

// Brand keywords checked for mismatched branding: content that mentions a
// brand the URL does not carry is claiming to be someone it is not.
var brandKeywords = []string{"BRI", "bank", "rakyat", "indonesia"}

// Client-side navigation primitives. Phishing pages reassign the location
// to bounce victims after harvesting credentials.
var redirectPrimitives = []string{"window.location", "document.location", "window.navigate"}

// Asynchronous-request idioms used to ship harvested data off-page.
var exfiltrationPrimitives = []string{"XMLHttpRequest", "fetch(", "$.ajax", "$.post"}

// Raw financial terms logged for human review. Presence alone is far too
// noisy to gate a verdict, so these never count toward TotalIndicators.
var diagnosticKeywords = []string{"bank", "login", "debit", "card", "password", "BRI"}

// Indicator is one independent boolean signal: a named pure predicate over
// the rendered content and the resolved URL.
type Indicator struct {
	Name   string
	Detect func(content, resolvedURL string) bool
}

// scoredIndicators is the fixed, ordered indicator table. Extending the
// set means adding a row here, not new control flow.
var scoredIndicators = []Indicator{
	{Name: IndicatorBrandMismatch, Detect: detectBrandMismatch},
	{Name: IndicatorScriptRedirect, Detect: detectScriptRedirect},
	{Name: IndicatorExfiltration, Detect: detectExfiltration},
}

// ScoredIndicators returns the indicator table in evaluation order.
func ScoredIndicators() []Indicator {
	out := make([]Indicator, len(scoredIndicators))
	copy(out, scoredIndicators)
	return out
}

// Report is the outcome of one classification. Computed fresh per call,
// never cached or reused across targets.
type Report struct {
	// Indicators maps each scored indicator name to its presence.
	Indicators map[string]bool

	// TotalIndicators counts the true entries among the scored set.
	TotalIndicators int

	// DiagnosticKeywords records raw keyword presence for audit only.
	// It never contributes to TotalIndicators.
	DiagnosticKeywords map[string]bool
}

// Classify evaluates every indicator against the rendered content and the
// URL it resolved to.
func Classify(renderedHTML, resolvedURL string) Report {
	report := Report{
		Indicators:         make(map[string]bool, len(scoredIndicators)),
		DiagnosticKeywords: make(map[string]bool, len(diagnosticKeywords)),
	}

	for _, ind := range scoredIndicators {
		present := ind.Detect(renderedHTML, resolvedURL)
		report.Indicators[ind.Name] = present
		if present {
			report.TotalIndicators++
		}
	}

	lowered := strings.ToLower(renderedHTML)
	for _, kw := range diagnosticKeywords {
		report.DiagnosticKeywords[kw] = strings.Contains(lowered, strings.ToLower(kw))
	}

	return report
}

// detectBrandMismatch fires when the content mentions a brand keyword that
// the resolved URL does not carry, both compared case-insensitively.
func detectBrandMismatch(content, resolvedURL string) bool {
	loweredContent := strings.ToLower(content)
	loweredURL := strings.ToLower(resolvedURL)

	for _, brand := range brandKeywords {
		b := strings.ToLower(brand)
		if strings.Contains(loweredContent, b) && !strings.Contains(loweredURL, b) {
			return true
		}
	}
	return false
}

func detectScriptRedirect(content, _ string) bool {
	return containsAny(content, redirectPrimitives)
}

func detectExfiltration(content, _ string) bool {
	return containsAny(content, exfiltrationPrimitives)
}

func containsAny(content string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(content, n) {
			return true
		}
	}
	return false
}
