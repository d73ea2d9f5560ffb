package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studyhall/studyhall/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar. Percent is clamped to
// [0, 1] at render time, so callers can pass raw ratios.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar. The label, bar, and percent column
// together occupy exactly Width cells unless the bar would drop below
// its minimum.
func (p ProgressBar) View() string {
	percent := p.Percent
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}

	label := ""
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	suffix := ""
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3.0f%%", percent*100))
	}

	barWidth := p.Width - lipgloss.Width(label) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth)*percent + 0.5)
	if filled > barWidth {
		filled = barWidth
	}

	bar := lipgloss.NewStyle().
		Background(theme.Secondary).
		Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().
			Background(theme.Border).
			Render(strings.Repeat(" ", barWidth-filled))

	return label + bar + suffix
}
