// Package ui centralizes terminal styling for user-facing output: the job
// listing, dry-run reports and fatal diagnostics. Log records go through
// internal/log instead.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Theme centralizes all styling for CLI output. Keeping the styles in one
// place makes future theme support trivial.
type Theme struct {
	Label   lipgloss.Style
	Alias   lipgloss.Style
	Heading lipgloss.Style
	DryRun  lipgloss.Style
	Fatal   lipgloss.Style
	Dim     lipgloss.Style
}

func NewDefaultTheme() Theme {
	return Theme{
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		Alias:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")),
		DryRun:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		Fatal:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// SetColorMode applies the --color flag: "always", "never", or "auto"
// (color only when stderr is a terminal).
func SetColorMode(mode string) {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if !isatty.IsTerminal(os.Stderr.Fd()) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}
