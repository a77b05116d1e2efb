package ui

import "github.com/charmbracelet/lipgloss"

// Color palette for harness output.
var (
	Primary   = lipgloss.Color("#4D96FF") // Blue
	Secondary = lipgloss.Color("#00D4AA") // Teal

	Success = lipgloss.Color("#00D26A") // Bright green
	Warning = lipgloss.Color("#FFB800") // Amber
	Error   = lipgloss.Color("#FF3838") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray

	// Verdict colors. A page with zero indicators is clean, anything
	// above that is flagged.
	Clean   = lipgloss.Color("#00D26A")
	Flagged = lipgloss.Color("#FF3838")
)

// Pre-configured styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(18)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	CleanStyle = lipgloss.NewStyle().
			Foreground(Clean).
			Bold(true)

	FlaggedStyle = lipgloss.NewStyle().
			Foreground(Flagged).
			Bold(true)
)

// StatusCodeStyle returns the style for an HTTP status code.
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case code >= 200 && code < 300:
		return base.Foreground(Success)
	case code >= 300 && code < 400:
		return base.Foreground(Primary)
	case code >= 400 && code < 500:
		return base.Foreground(Warning)
	case code >= 500:
		return base.Foreground(Error)
	default:
		return base.Foreground(Muted)
	}
}

// VerdictStyle returns the style for an indicator count.
func VerdictStyle(indicators int) lipgloss.Style {
	if indicators == 0 {
		return CleanStyle
	}
	return FlaggedStyle
}
