package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/ui/theme"
)

// ProgressBar displays how far through a sequence the user is.
type ProgressBar struct {
	Current int
	Total   int
	Width   int
}

// NewProgressBar creates a bar for step current (1-based) of total.
func NewProgressBar(current, total, width int) ProgressBar {
	return ProgressBar{Current: current, Total: total, Width: width}
}

// Percent returns the completed fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Current) / float64(p.Total)
	return min(max(f, 0), 1)
}

// View renders the bar followed by the percentage.
func (p ProgressBar) View() string {
	suffix := fmt.Sprintf("  %d%%", int(p.Percent()*100))

	barWidth := p.Width - len(suffix)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * p.Percent())

	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
}
