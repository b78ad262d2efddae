package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// ProgressStyles holds the styles used by the progress bar.
type ProgressStyles struct {
	Filled lipgloss.Style
	Empty  lipgloss.Style
	Label  lipgloss.Style
}

// NewProgressStyles creates progress styles from a theme.
func NewProgressStyles(t Theme) ProgressStyles {
	return ProgressStyles{
		Filled: lipgloss.NewStyle().Foreground(t.Primary),
		Empty:  lipgloss.NewStyle().Foreground(t.Dim),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
	}
}

// ProgressBar renders a single-line transfer progress indicator.
type ProgressBar struct {
	Styles ProgressStyles
	Width  int // bar width in cells, 0 uses a default
}

// NewProgressBar creates a progress bar with the default theme.
func NewProgressBar() ProgressBar {
	return ProgressBar{Styles: NewProgressStyles(DefaultTheme), Width: 30}
}

// Render renders the progress line for the given state. total may be -1 when
// the stream size is unknown, in which case only the transferred count and
// rate are shown.
func (p ProgressBar) Render(transferred, total int64, rate float64) string {
	width := p.Width
	if width <= 0 {
		width = 30
	}

	label := FormatBytes(transferred)
	if rate > 0 {
		label += "  " + FormatRate(rate)
	}

	if total <= 0 {
		return p.Styles.Label.Render(label)
	}

	ratio := float64(transferred) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := p.Styles.Filled.Render(strings.Repeat("█", filled)) +
		p.Styles.Empty.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%  %s", bar, ratio*100, p.Styles.Label.Render(label))
}
