// Package output provides styled terminal rendering for querywatch
// reports.
package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sondelabs/querywatch/internal/severity"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorCritical is used for critical issues.
	ColorCritical = lipgloss.Color("#ef5350")

	// ColorWarning is used for warning issues.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorInfo is used for informational issues.
	ColorInfo = lipgloss.Color("#66bb6a")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// StyleCritical renders critical severity badges.
	StyleCritical = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	// StyleWarning renders warning severity badges.
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleInfo renders info severity badges.
	StyleInfo = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// StyleMuted is used for de-emphasized text.
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleBold is used for emphasized text.
	StyleBold = lipgloss.NewStyle().
			Bold(true)
)

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally.
// When disabled, all package-level styles are reassigned to unstyled
// renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleCritical = plain
		StyleWarning = plain
		StyleInfo = plain
		StyleMuted = plain
		StyleBold = plain
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// SeverityStyle returns the style for a severity tier.
func SeverityStyle(s severity.Severity) lipgloss.Style {
	switch s {
	case severity.Critical:
		return StyleCritical
	case severity.Warning:
		return StyleWarning
	default:
		return StyleInfo
	}
}
