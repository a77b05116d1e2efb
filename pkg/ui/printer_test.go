package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests run with color forced off so output is byte-stable regardless of
// the terminal the suite runs under.

func plainPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf, true), &buf
}

func TestStepLines(t *testing.T) {
	p, buf := plainPrinter()

	p.Pass("object copied: %s", "test-object-1.txt")
	p.Fail("delete failed")
	p.Warn("bucket probe slow")
	p.Info("run id %s", "1a2b3c4d")

	out := buf.String()
	assert.Contains(t, out, "[+] object copied: test-object-1.txt")
	assert.Contains(t, out, "[-] delete failed")
	assert.Contains(t, out, "[!] bucket probe slow")
	assert.Contains(t, out, "[*] run id 1a2b3c4d")
}

func TestNoColorOutputHasNoEscapes(t *testing.T) {
	p, buf := plainPrinter()

	p.Title("signed URL validation")
	p.Section("classification")
	p.KeyValue("bucket", "example_bucket1sy")
	p.URL("signed url", "https://storage.googleapis.com/b/o?sig=x")
	p.StatusCode("status", 200)
	p.Verdict(0)
	p.IndicatorLine("brand_mismatch", true)
	p.Divider()

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestVerdictWording(t *testing.T) {
	p, buf := plainPrinter()
	p.Verdict(0)
	assert.Contains(t, buf.String(), "CLEAN")

	p, buf = plainPrinter()
	p.Verdict(3)
	assert.Contains(t, buf.String(), "FLAGGED (3 indicators)")
}

func TestIndicatorLineMarks(t *testing.T) {
	p, buf := plainPrinter()
	p.IndicatorLine("script_redirect", true)
	p.IndicatorLine("network_exfiltration", false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Contains(t, lines[0], "PRESENT")
	assert.Contains(t, lines[1], "absent")
}

func TestVerdictStyleSelection(t *testing.T) {
	assert.Equal(t, CleanStyle, VerdictStyle(0))
	assert.Equal(t, FlaggedStyle, VerdictStyle(1))
	assert.Equal(t, FlaggedStyle, VerdictStyle(3))
}
