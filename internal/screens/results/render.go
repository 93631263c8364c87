package results

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/coach"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

// RenderRecommendation renders the three recommendation sections.
func RenderRecommendation(rec gateway.Recommendation, width int) string {
	var b strings.Builder
	section(&b, "Recommended Streams", rec.Streams)
	section(&b, "Suggested Careers", rec.Careers)
	b.WriteString(theme.Heading.Render("Analysis"))
	b.WriteString("\n")
	analysis := rec.Analysis
	if analysis == "" {
		analysis = "No analysis available."
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(analysis))
	return b.String()
}

// RenderPlan renders a coach action plan.
func RenderPlan(p coach.Plan, width int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Your Action Plan"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(p.Summary))
	b.WriteString("\n\n")
	section(&b, "Next Steps", p.NextSteps)
	section(&b, "Subjects to Focus On", p.SubjectsToFocus)
	return strings.TrimRight(b.String(), "\n")
}

func section(b *strings.Builder, title string, items []string) {
	b.WriteString(theme.Heading.Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(theme.Hint.Render("  None yet"))
		b.WriteString("\n\n")
		return
	}
	for _, it := range items {
		b.WriteString(theme.Body.Render("  • " + it))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
