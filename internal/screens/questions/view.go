package questions

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/quiz"
	"github.com/abhisek/careerguider/internal/ui/components"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

func (s *QuestionsScreen) View(width, height int) string {
	switch s.flow.State() {
	case quiz.StateLoading:
		return centered(width, height, theme.Hint.Render("Loading questions..."))
	case quiz.StateLoadFailed:
		return centered(width, height,
			theme.Alert.Render(s.errorText())+"\n\n"+theme.Hint.Render("press r to retry"))
	case quiz.StateEmpty:
		return centered(width, height, theme.ErrorText.Render("No questions available"))
	case quiz.StateFinished:
		return centered(width, height, theme.Hint.Render("Preparing your results..."))
	}
	return s.renderQuestion(width, height)
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *QuestionsScreen) renderQuestion(width, height int) string {
	q, _ := s.flow.Current()
	inner := min(width-4, 90)

	var b strings.Builder

	// Info line: position left, score right.
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("Question %d of %d", s.flow.Index()+1, s.flow.Total()))
	right := theme.Tag.Render(fmt.Sprintf("Score: %d", s.flow.Score()))
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar(s.flow.Index()+1, s.flow.Total(), inner).View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(inner).Render(q.Text))
	b.WriteString("\n\n")

	if s.isChoice() {
		b.WriteString(s.options.View())
	} else {
		b.WriteString(s.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.alert != "":
		b.WriteString(theme.Alert.Render(s.alert))
	case s.flow.Err() != nil:
		b.WriteString(theme.Alert.Render(s.errorText()))
	case s.flow.State() == quiz.StateSubmitting:
		b.WriteString(theme.Hint.Render("Processing..."))
	default:
		b.WriteString(components.ButtonRow(
			components.NewButton("← Back", "Ctrl+B", s.flow.CanGoBack()),
			components.NewButton(s.submitLabel()+" →", "Enter", s.flow.CanSubmit()),
		))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 0).Render(b.String()))
}
