package dashboard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/screens/results"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

var quickTips = []string{
	"Answer honestly. There are no right or wrong answers.",
	"Take your time with each question.",
	"You can resume an unfinished quiz from here.",
	"Keep your profile up to date for better recommendations.",
}

func (s *DashboardScreen) View(width, height int) string {
	inner := min(width-8, 96)

	var b strings.Builder
	b.WriteString(s.renderTabs())
	b.WriteString("\n\n")

	switch s.tab {
	case TabHome:
		b.WriteString(s.viewHome(inner))
	case TabHistory:
		b.WriteString(s.viewHistory(inner))
	case TabRecommendations:
		b.WriteString(s.viewRecommendations(inner))
	case TabProfile:
		b.WriteString(s.viewProfile(inner))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Width(inner).Padding(1, 0).Render(b.String()))
}

func (s *DashboardScreen) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		style := theme.ButtonInactive
		if Tab(i) == s.tab {
			style = theme.ButtonActive
		}
		tab := style.Render(label)
		if Tab(i) == TabHistory && s.stats != nil && s.stats.IncompleteQuizzes > 0 {
			tab += theme.Badge.Render(fmt.Sprint(s.stats.IncompleteQuizzes))
		}
		parts[i] = tab
	}
	return strings.Join(parts, " ")
}

func (s *DashboardScreen) viewHome(width int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Welcome back, " + s.store.Current().DisplayName() + "!"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Ready to continue your career discovery journey?"))
	b.WriteString("\n\n")

	switch {
	case s.statsErr != "":
		b.WriteString(theme.ErrorText.Render(s.statsErr))
	case s.stats == nil:
		b.WriteString(theme.Hint.Render("Loading your stats..."))
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statCard("Total Quizzes", fmt.Sprint(s.stats.TotalQuizzes)),
			statCard("Completed", fmt.Sprint(s.stats.CompletedQuizzes)),
			statCard("In Progress", fmt.Sprint(s.stats.IncompleteQuizzes)),
			statCard("Avg Score", fmt.Sprintf("%.0f%%", s.stats.AverageScore)),
		))
	}
	b.WriteString("\n\n")

	b.WriteString(theme.Heading.Render("Quick Actions"))
	b.WriteString("\n")
	b.WriteString(s.menu.View())
	b.WriteString("\n")

	b.WriteString(theme.Heading.Render("Quick Tips"))
	b.WriteString("\n")
	for _, tip := range quickTips {
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.TextDim).Render("  • " + tip))
		b.WriteString("\n")
	}
	return b.String()
}

func statCard(label, value string) string {
	body := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(value) + "\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
	return theme.Card.Width(20).Padding(0, 1).MarginRight(1).Render(body)
}

func (s *DashboardScreen) viewHistory(width int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Quiz History"))
	b.WriteString("\n\n")

	switch {
	case s.historyErr != "":
		b.WriteString(theme.ErrorText.Render(s.historyErr))
		return b.String()
	case len(s.history) == 0:
		b.WriteString(theme.Body.Render("No quizzes yet"))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Take your first quiz from the Home tab."))
		return b.String()
	}

	for i, e := range s.history {
		status := theme.SuccessText.Render("Completed")
		if !e.IsCompleted {
			status = lipgloss.NewStyle().Foreground(theme.Accent).Render("In progress")
		}
		date := ""
		if !e.CreatedAt.IsZero() {
			date = e.CreatedAt.Local().Format("02 Jan 2006")
		}
		line := fmt.Sprintf("%-6s %s  Score: %d  %s",
			strings.ToUpper(e.Mode), status, e.Score, theme.Hint.Render(date))

		prefix := "    "
		if i == s.historySel {
			prefix = theme.Selected.Render("  ▸ ")
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(prefix + line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *DashboardScreen) viewRecommendations(width int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Career Recommendations"))
	b.WriteString("\n\n")

	if s.rec == nil {
		if s.recErr == "" {
			b.WriteString(theme.Hint.Render("Loading your recommendations..."))
			return b.String()
		}
		b.WriteString(theme.Body.Render("Complete a quiz to get personalised career recommendations."))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press Enter to start a quiz."))
		return b.String()
	}
	b.WriteString(results.RenderRecommendation(*s.rec, width))
	return b.String()
}

func (s *DashboardScreen) viewProfile(width int) string {
	p := s.profile
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Profile Settings"))
	b.WriteString("\n\n")

	if p.editing {
		b.WriteString(p.form.View())
		b.WriteString("\n\n")
		if p.saving {
			b.WriteString(theme.Hint.Render("Saving..."))
		} else if p.err != "" {
			b.WriteString(theme.Alert.Render(p.err))
		}
		return b.String()
	}

	if p.notice != "" {
		b.WriteString(theme.SuccessText.Render(p.notice))
		b.WriteString("\n\n")
	}
	if p.loadErr != "" {
		b.WriteString(theme.ErrorText.Render(p.loadErr))
		b.WriteString("\n\n")
	}

	sess := s.store.Current()
	rows := [][2]string{
		{"Username", sess.UserName},
		{"Email", sess.Email},
		{"Phone", p.current.Phone},
		{"Date of Birth", p.current.DateOfBirth},
		{"Gender", p.current.Gender},
		{"School / College", p.current.SchoolCollege},
		{"City", p.current.City},
		{"State", p.current.State},
	}
	for _, r := range rows {
		v := r[1]
		if v == "" {
			v = theme.Disabled.Render("Not set")
		}
		label := lipgloss.NewStyle().Width(18).Foreground(theme.TextDim).Render(r[0])
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(label + v))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Press E to edit your profile."))
	return b.String()
}
