package dashboard

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/components"
	"github.com/abhisek/careerguider/internal/ui/layout"
)

// API is the set of gateway calls the dashboard makes.
type API interface {
	DashboardStats(ctx context.Context, userID string) (*gateway.DashboardStats, error)
	QuizHistory(ctx context.Context, userID string) ([]gateway.QuizHistoryEntry, error)
	GetRecommendations(ctx context.Context, userID string) (*gateway.Recommendation, error)
	GetProfile(ctx context.Context, userID string) (*gateway.Profile, error)
	UpdateProfile(ctx context.Context, userID string, p gateway.Profile) error
}

// Tab identifies a dashboard tab.
type Tab int

const (
	TabHome Tab = iota
	TabHistory
	TabRecommendations
	TabProfile
)

var tabNames = []string{"Home", "History", "Recommendations", "Profile"}

func (t Tab) String() string {
	return tabNames[t]
}

type statsMsg struct {
	Stats *gateway.DashboardStats
	Err   error
}

type historyMsg struct {
	Entries []gateway.QuizHistoryEntry
	Err     error
}

type recommendationMsg struct {
	Rec *gateway.Recommendation
	Err error
}

type profileMsg struct {
	Profile *gateway.Profile
	Err     error
}

type profileSavedMsg struct {
	Profile gateway.Profile
	Err     error
}

// tabSelectMsg is emitted by the home menu.
type tabSelectMsg Tab

// resumeMsg is emitted by the home menu to continue an unfinished quiz.
type resumeMsg struct {
	Mode       string
	ClassLevel string
}

// DashboardScreen is the signed-in landing view.
type DashboardScreen struct {
	api   API
	store *session.Store
	tab   Tab

	stats    *gateway.DashboardStats
	statsErr string

	history    []gateway.QuizHistoryEntry
	historyErr string
	historySel int

	rec    *gateway.Recommendation
	recErr string

	profile *profileEditor

	menu components.Menu
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)
var _ screen.BackHandler = (*DashboardScreen)(nil)

// New creates a DashboardScreen on the home tab.
func New(api API, store *session.Store) *DashboardScreen {
	s := &DashboardScreen{
		api:     api,
		store:   store,
		profile: newProfileEditor(),
	}
	s.menu = s.homeMenu()
	return s
}

func (s *DashboardScreen) Title() string {
	return "Dashboard"
}

func (s *DashboardScreen) Init() tea.Cmd {
	api, userID := s.api, s.store.Current().UserID
	ctx := context.Background()
	return tea.Batch(
		func() tea.Msg {
			st, err := api.DashboardStats(ctx, userID)
			return statsMsg{Stats: st, Err: err}
		},
		func() tea.Msg {
			h, err := api.QuizHistory(ctx, userID)
			return historyMsg{Entries: h, Err: err}
		},
		func() tea.Msg {
			rec, err := api.GetRecommendations(ctx, userID)
			return recommendationMsg{Rec: rec, Err: err}
		},
		func() tea.Msg {
			p, err := api.GetProfile(ctx, userID)
			return profileMsg{Profile: p, Err: err}
		},
	)
}

// HandlesBack is true while the profile form is open so Esc closes it.
func (s *DashboardScreen) HandlesBack() bool {
	return s.tab == TabProfile && s.profile.editing
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	if s.profile.editing && s.tab == TabProfile {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next / Save"},
			{Key: "Tab", Description: "Switch field"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{{Key: "←→/1-4", Description: "Tabs"}}
	switch s.tab {
	case TabHome:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Select"})
	case TabHistory:
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Scroll"})
	case TabProfile:
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Edit profile"})
	}
	return hints
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		if msg.Err != nil {
			s.statsErr = gateway.UserMessage(msg.Err)
		} else {
			s.stats = msg.Stats
		}
		s.menu = s.homeMenu()
		return s, nil

	case historyMsg:
		if msg.Err != nil {
			s.historyErr = gateway.UserMessage(msg.Err)
		} else {
			s.history = msg.Entries
		}
		s.menu = s.homeMenu()
		return s, nil

	case recommendationMsg:
		if msg.Err != nil {
			s.recErr = gateway.UserMessage(msg.Err)
		} else {
			s.rec = msg.Rec
		}
		return s, nil

	case profileMsg:
		s.profile.loaded(msg.Profile, msg.Err)
		return s, nil

	case profileSavedMsg:
		s.profile.saved(msg.Profile, msg.Err)
		return s, nil

	case tabSelectMsg:
		s.tab = Tab(msg)
		return s, nil

	case resumeMsg:
		if err := s.store.SetMode(context.Background(), msg.Mode, msg.ClassLevel); err != nil {
			return s, nil
		}
		return s, router.Navigate(guard.PathQuestions)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.profile.editing {
		return s, s.profile.update(msg)
	}
	return s, nil
}

func (s *DashboardScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.tab == TabProfile && s.profile.editing {
		switch key {
		case "esc":
			s.profile.cancel()
			return s, nil
		case "enter":
			if !s.profile.form.OnLast() {
				return s, s.profile.form.Next()
			}
			return s, s.saveProfile()
		}
		return s, s.profile.update(msg)
	}

	switch key {
	case "left", "h":
		s.tab = (s.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return s, nil
	case "right", "l", "tab":
		s.tab = (s.tab + 1) % Tab(len(tabNames))
		return s, nil
	case "1", "2", "3", "4":
		s.tab = Tab(key[0] - '1')
		return s, nil
	}

	switch s.tab {
	case TabHome:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	case TabHistory:
		switch key {
		case "up", "k":
			if s.historySel > 0 {
				s.historySel--
			}
		case "down", "j":
			if s.historySel < len(s.history)-1 {
				s.historySel++
			}
		}
	case TabRecommendations:
		if key == "enter" && s.rec == nil {
			return s, router.Navigate(guard.PathModeSelect)
		}
	case TabProfile:
		if key == "e" {
			return s, s.profile.edit()
		}
	}
	return s, nil
}

func (s *DashboardScreen) saveProfile() tea.Cmd {
	p, ok := s.profile.submit()
	if !ok {
		return nil
	}
	api, userID := s.api, s.store.Current().UserID
	return func() tea.Msg {
		err := api.UpdateProfile(context.Background(), userID, p)
		return profileSavedMsg{Profile: p, Err: err}
	}
}

// homeMenu builds the home tab actions. A resume entry is offered when the
// server reports an unfinished quiz.
func (s *DashboardScreen) homeMenu() components.Menu {
	var items []components.MenuItem
	if in := s.incomplete(); in != nil {
		mode, class := in.Mode, in.ClassLevel
		items = append(items, components.MenuItem{
			Label: "Resume Your Quiz",
			Note:  "Unfinished " + strings.ToUpper(mode) + " quiz",
			Action: func() tea.Cmd {
				return func() tea.Msg { return resumeMsg{Mode: mode, ClassLevel: class} }
			},
		})
	}
	items = append(items,
		components.MenuItem{
			Label:  "Take New Quiz",
			Note:   "Start your career discovery journey",
			Action: func() tea.Cmd { return router.Navigate(guard.PathSplash) },
		},
		components.MenuItem{
			Label:  "View History",
			Note:   "Review your past quizzes",
			Action: selectTab(TabHistory),
		},
		components.MenuItem{
			Label:  "Career Paths",
			Note:   "Explore recommended careers",
			Action: selectTab(TabRecommendations),
		},
		components.MenuItem{
			Label:  "Settings",
			Note:   "Update your profile",
			Action: selectTab(TabProfile),
		},
	)
	return components.NewMenu(items)
}

func selectTab(t Tab) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return tabSelectMsg(t) }
	}
}

// incomplete returns the newest unfinished quiz, if any.
func (s *DashboardScreen) incomplete() *gateway.QuizHistoryEntry {
	if s.stats == nil || s.stats.IncompleteQuizzes == 0 {
		return nil
	}
	var newest *gateway.QuizHistoryEntry
	for i := range s.history {
		e := &s.history[i]
		if e.IsCompleted || e.Mode == "" {
			continue
		}
		if newest == nil || e.CreatedAt.After(newest.CreatedAt) {
			newest = e
		}
	}
	return newest
}
