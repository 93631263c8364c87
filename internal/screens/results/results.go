package results

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/coach"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/layout"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

// Recommender fetches the server's recommendation.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID string) (*gateway.Recommendation, error)
}

// Planner turns a recommendation into an action plan.
type Planner interface {
	Enabled() bool
	Plan(ctx context.Context, in coach.Input) (*coach.Plan, error)
}

type recommendationMsg struct {
	Rec *gateway.Recommendation
	Err error
}

type planMsg struct {
	Plan *coach.Plan
	Err  error
}

// ResultsScreen shows the recommendation for the finished quiz.
type ResultsScreen struct {
	api     Recommender
	planner Planner
	store   *session.Store

	rec     *gateway.Recommendation
	errMsg  string
	loading bool

	plan     *coach.Plan
	planning bool
	planErr  string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen. planner may be nil.
func New(api Recommender, planner Planner, store *session.Store) *ResultsScreen {
	return &ResultsScreen{api: api, planner: planner, store: store, loading: true}
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) Init() tea.Cmd {
	api, userID := s.api, s.store.Current().UserID
	return func() tea.Msg {
		rec, err := api.GetRecommendations(context.Background(), userID)
		return recommendationMsg{Rec: rec, Err: err}
	}
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Dashboard"},
		{Key: "R", Description: "Retake quiz"},
	}
	if s.canPlan() {
		hints = append(hints, layout.KeyHint{Key: "P", Description: "Action plan"})
	}
	return hints
}

func (s *ResultsScreen) canPlan() bool {
	return s.planner != nil && s.planner.Enabled() && s.rec != nil && s.plan == nil && !s.planning
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case recommendationMsg:
		s.loading = false
		if msg.Err != nil {
			s.errMsg = gateway.UserMessage(msg.Err)
			return s, nil
		}
		s.rec = msg.Rec
		return s, nil

	case planMsg:
		s.planning = false
		if msg.Err != nil {
			s.planErr = planError(msg.Err)
			return s, nil
		}
		s.plan = msg.Plan
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, router.Reset(guard.PathDashboard)
		case "r":
			return s, router.Redirect(guard.PathModeSelect)
		case "p":
			return s, s.requestPlan()
		}
	}
	return s, nil
}

func (s *ResultsScreen) requestPlan() tea.Cmd {
	if !s.canPlan() {
		return nil
	}
	s.planning = true
	s.planErr = ""

	cur := s.store.Current()
	in := coach.Input{
		Mode:           cur.Mode,
		ClassLevel:     cur.ClassLevel,
		Name:           cur.DisplayName(),
		Recommendation: *s.rec,
	}
	planner := s.planner
	return func() tea.Msg {
		p, err := planner.Plan(context.Background(), in)
		return planMsg{Plan: p, Err: err}
	}
}

func planError(err error) string {
	if errors.Is(err, coach.ErrDisabled) {
		return "The career coach is not configured."
	}
	return "Could not build an action plan right now."
}

func (s *ResultsScreen) View(width, height int) string {
	inner := min(width-8, 90)
	var b strings.Builder

	b.WriteString(theme.Title.Render("Quiz Completed!"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Amazing work, " + s.name() + "!"))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(theme.Hint.Render("Loading your recommendations..."))
	case s.errMsg != "":
		b.WriteString(theme.Alert.Render(s.errMsg))
	case s.rec != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Your Career Recommendations"))
		b.WriteString("\n\n")
		b.WriteString(RenderRecommendation(*s.rec, inner))
	}

	switch {
	case s.planning:
		b.WriteString("\n\n" + theme.Hint.Render("Building your action plan..."))
	case s.planErr != "":
		b.WriteString("\n\n" + theme.ErrorText.Render(s.planErr))
	case s.plan != nil:
		b.WriteString("\n\n" + RenderPlan(*s.plan, inner))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 0).Render(b.String()))
}

func (s *ResultsScreen) name() string {
	if n := s.store.Current().UserName; n != "" {
		return n
	}
	return "Friend"
}
