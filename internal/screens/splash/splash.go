package splash

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

const tickInterval = 250 * time.Millisecond

var loaderFrames = []string{"◐", "◓", "◑", "◒"}

type tickMsg time.Time

// SplashScreen greets the user after sign-in and moves on to mode selection.
type SplashScreen struct {
	store   *session.Store
	delay   time.Duration
	elapsed time.Duration
	frame   int
	done    bool
}

var _ screen.Screen = (*SplashScreen)(nil)

// New creates a SplashScreen that stays up for delay.
func New(store *session.Store, delay time.Duration) *SplashScreen {
	return &SplashScreen{store: store, delay: delay}
}

func (s *SplashScreen) Title() string {
	return ""
}

func (s *SplashScreen) Init() tea.Cmd {
	// Seen once per process: later visits go straight through.
	if s.store.Progress().HasSeenSplash {
		return s.finish()
	}
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *SplashScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if s.done {
			return s, nil
		}
		s.elapsed += tickInterval
		s.frame++
		if s.elapsed >= s.delay {
			return s, s.finish()
		}
		return s, tick()

	case tea.KeyPressMsg:
		return s, s.finish()
	}
	return s, nil
}

func (s *SplashScreen) finish() tea.Cmd {
	if s.done {
		return nil
	}
	s.done = true
	s.store.MarkSplashSeen()
	return router.Redirect(guard.PathModeSelect)
}

func (s *SplashScreen) View(width, height int) string {
	name := s.store.Current().DisplayName()

	sections := []string{
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Welcome, " + name + "!"),
		"",
		lipgloss.NewStyle().Foreground(theme.Text).Render("Let's discover your perfect career path!"),
		"",
		lipgloss.NewStyle().Foreground(theme.Accent).Render(loaderFrames[s.frame%len(loaderFrames)]),
		"",
		theme.Hint.Render("press any key to continue"),
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
