package quote

import (
	"math/rand/v2"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

// Quotes is the pool one quote is drawn from per visit.
var Quotes = []string{
	"Your career is a journey, not a destination!",
	"Dream big, work hard, stay focused!",
	"The future belongs to those who believe in their dreams!",
	"Success is not final, failure is not fatal!",
	"Believe in yourself and magic will happen!",
}

type doneMsg struct{}

// QuoteScreen shows a motivational quote, then starts the quiz.
type QuoteScreen struct {
	quote string
	delay time.Duration
	done  bool
}

var _ screen.Screen = (*QuoteScreen)(nil)

// New creates a QuoteScreen with a random quote.
func New(delay time.Duration) *QuoteScreen {
	return &QuoteScreen{quote: Quotes[rand.IntN(len(Quotes))], delay: delay}
}

func (s *QuoteScreen) Title() string {
	return ""
}

func (s *QuoteScreen) Init() tea.Cmd {
	return tea.Tick(s.delay, func(time.Time) tea.Msg { return doneMsg{} })
}

func (s *QuoteScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case doneMsg, tea.KeyPressMsg:
		if s.done {
			return s, nil
		}
		s.done = true
		return s, router.Redirect(guard.PathQuestions)
	}
	return s, nil
}

func (s *QuoteScreen) View(width, height int) string {
	content := strings.Join([]string{
		lipgloss.NewStyle().Foreground(theme.Accent).Render("✦"),
		"",
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Italic(true).Render(s.quote),
		"",
		theme.Subtitle.Render("Let's begin your journey!"),
	}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
