// Package ui renders harness progress and classification results to the
// terminal, with color degrading gracefully on dumb terminals and pipes.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled lines to a single destination. Construct one per
// run and pass it down rather than writing to os.Stdout directly, so
// tests can capture output.
type Printer struct {
	out     io.Writer
	noColor bool
}

// NewPrinter returns a Printer writing to out. Color is dropped when the
// terminal cannot render it or noColor forces plain output.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	return &Printer{out: out, noColor: noColor || !ColorEnabled()}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if p.noColor {
		return s
	}
	return style.Render(s)
}

// Title prints a run banner line.
func (p *Printer) Title(s string) {
	fmt.Fprintln(p.out, p.render(TitleStyle, s))
}

// Section prints a section header.
func (p *Printer) Section(s string) {
	fmt.Fprintln(p.out, p.render(SectionStyle, s))
}

// KeyValue prints an aligned label/value pair.
func (p *Printer) KeyValue(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(LabelStyle, label), p.render(ValueStyle, value))
}

// Pass prints a passing step line.
func (p *Printer) Pass(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(PassStyle, "[+]"), fmt.Sprintf(format, args...))
}

// Fail prints a failing step line.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(FailStyle, "[-]"), fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(WarnStyle, "[!]"), fmt.Sprintf(format, args...))
}

// Info prints a neutral informational line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(MutedStyle, "[*]"), fmt.Sprintf(format, args...))
}

// URL prints a labeled URL on its own line.
func (p *Printer) URL(label, url string) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(LabelStyle, label), p.render(URLStyle, url))
}

// StatusCode prints a labeled HTTP status code with outcome coloring.
func (p *Printer) StatusCode(label string, code int) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(LabelStyle, label), p.render(StatusCodeStyle(code), fmt.Sprintf("%d", code)))
}

// Verdict prints the indicator tally with clean/flagged coloring.
func (p *Printer) Verdict(indicators int) {
	word := "CLEAN"
	if indicators > 0 {
		word = fmt.Sprintf("FLAGGED (%d indicators)", indicators)
	}
	fmt.Fprintf(p.out, "%s %s\n", p.render(LabelStyle, "verdict"), p.render(VerdictStyle(indicators), word))
}

// IndicatorLine prints one named indicator and whether it fired.
func (p *Printer) IndicatorLine(name string, present bool) {
	mark, style := "absent", MutedStyle
	if present {
		mark, style = "PRESENT", FlaggedStyle
	}
	fmt.Fprintf(p.out, "  %s %s\n", p.render(LabelStyle, name), p.render(style, mark))
}

// Divider prints a horizontal rule.
func (p *Printer) Divider() {
	fmt.Fprintln(p.out, p.render(MutedStyle, strings.Repeat("-", 60)))
}
