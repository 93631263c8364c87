package modeselect

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/components"
	"github.com/abhisek/careerguider/internal/ui/layout"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

// Mode is one selectable question set.
type Mode struct {
	ID         string
	ClassLevel string
	Label      string
	Blurb      string
}

// Modes lists the question sets the server offers.
var Modes = []Mode{
	{ID: "ssc", ClassLevel: "10", Label: "Class 10 (SSC)", Blurb: "Choosing a stream after class 10"},
	{ID: "hsc", ClassLevel: "12", Label: "Class 12 (HSC)", Blurb: "Choosing a degree after class 12"},
}

// ModeSelectScreen lets the user pick which quiz to take.
type ModeSelectScreen struct {
	store  *session.Store
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*ModeSelectScreen)(nil)
var _ screen.KeyHintProvider = (*ModeSelectScreen)(nil)

type modeChosenMsg struct {
	mode Mode
}

// New creates a ModeSelectScreen. The previously chosen mode is preselected.
func New(store *session.Store) *ModeSelectScreen {
	s := &ModeSelectScreen{store: store}

	items := make([]components.MenuItem, 0, len(Modes)+1)
	for _, m := range Modes {
		items = append(items, components.MenuItem{
			Label: m.Label,
			Note:  m.Blurb,
			Action: func() tea.Cmd {
				return func() tea.Msg { return modeChosenMsg{mode: m} }
			},
		})
	}
	items = append(items, components.MenuItem{Label: "College", Note: "Coming soon", Disabled: true})

	s.menu = components.NewMenu(items)
	current := store.Current().Mode
	for i, m := range Modes {
		if m.ID == current {
			s.menu.Selected = i
		}
	}
	return s
}

func (s *ModeSelectScreen) Title() string {
	return "Choose Your Path"
}

func (s *ModeSelectScreen) Init() tea.Cmd {
	return nil
}

func (s *ModeSelectScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start quiz"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ModeSelectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case modeChosenMsg:
		if err := s.store.SetMode(context.Background(), msg.mode.ID, msg.mode.ClassLevel); err != nil {
			s.errMsg = "Could not save your choice. Please try again."
			return s, nil
		}
		return s, router.Navigate(guard.PathQuote)

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ModeSelectScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Choose Your Path"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Select the category that matches your current education level"))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())
	if s.errMsg != "" {
		b.WriteString("\n" + theme.Alert.Render(s.errMsg))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
