package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/coach"
	"github.com/abhisek/careerguider/internal/config"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/oauth"
	"github.com/abhisek/careerguider/internal/quiz"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/screens/authcallback"
	"github.com/abhisek/careerguider/internal/screens/dashboard"
	"github.com/abhisek/careerguider/internal/screens/login"
	"github.com/abhisek/careerguider/internal/screens/modeselect"
	"github.com/abhisek/careerguider/internal/screens/questions"
	"github.com/abhisek/careerguider/internal/screens/quote"
	"github.com/abhisek/careerguider/internal/screens/results"
	"github.com/abhisek/careerguider/internal/screens/signup"
	"github.com/abhisek/careerguider/internal/screens/splash"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/layout"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

// logoutTimeout bounds the best-effort server logout.
const logoutTimeout = 3 * time.Second

const leaveQuizPrompt = "Your progress will be saved. Leave the quiz? (y/n)"

// Options holds the dependencies the screens are built from.
type Options struct {
	Config  config.Config
	Session *session.Store
	API     gateway.Client
	Runner  *quiz.Runner
	// Coach may be nil; the results screen then hides the action plan.
	Coach *coach.Service
	// OAuth is nil when no identity provider is configured.
	OAuth *oauth.Client
	// OpenURL launches a browser. Defaults to oauth.OpenBrowser.
	OpenURL func(string) error
	Logger  *zap.Logger
}

// Routes returns the screen factories for every path.
func Routes(opts Options) router.Routes {
	q := opts.Config.Quiz
	st := opts.Session

	routes := router.Routes{
		guard.PathLogin: func() screen.Screen {
			return login.New(opts.API, st, opts.OAuth != nil)
		},
		guard.PathSignup: func() screen.Screen {
			return signup.New(opts.API)
		},
		guard.PathSplash: func() screen.Screen {
			return splash.New(st, q.SplashDelay)
		},
		guard.PathModeSelect: func() screen.Screen {
			return modeselect.New(st)
		},
		guard.PathQuote: func() screen.Screen {
			return quote.New(q.QuoteDelay)
		},
		guard.PathQuestions: func() screen.Screen {
			return questions.New(opts.Runner, st, questions.Config{
				AdvanceDelay: q.AdvanceDelay,
				DefaultMode:  q.DefaultMode,
			})
		},
		guard.PathResults: func() screen.Screen {
			var planner results.Planner
			if opts.Coach != nil {
				planner = opts.Coach
			}
			return results.New(opts.API, planner, st)
		},
		guard.PathDashboard: func() screen.Screen {
			return dashboard.New(opts.API, st)
		},
	}
	if opts.OAuth != nil {
		open := opts.OpenURL
		if open == nil {
			open = oauth.OpenBrowser
		}
		routes[guard.PathAuthCallback] = func() screen.Screen {
			return authcallback.New(opts.OAuth, st, open)
		}
	}
	return routes
}

type loggedOutMsg struct{}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	opts    Options
	logger  *zap.Logger
	width   int
	height  int
	leaving bool
	leaveTo string
}

// NewModel builds the root model. The first screen is chosen by the guard
// from the persisted session.
func NewModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = logger
	st := opts.Session
	r := router.New(Routes(opts), func() string { return st.Current().UserID }, logger)
	return AppModel{router: r, opts: opts, logger: logger}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Start(guard.PathRoot)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loggedOutMsg:
		next, err := guard.Logout(context.Background(), m.opts.Session)
		if err != nil {
			m.logger.Error("clear session", zap.Error(err))
		}
		return m, router.Reset(next)

	case tea.KeyMsg:
		if m.leaving {
			switch msg.String() {
			case "y", "Y":
				m.leaving = false
				m.opts.Session.SetCurrentQuestion(0)
				return m, router.Reset(m.leaveTo)
			case "n", "N", "esc":
				m.leaving = false
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Back()
			}
			return m, nil
		}

		if m.navbarVisible() {
			switch msg.String() {
			case "ctrl+d":
				return m.leaveFor(guard.PathDashboard)
			case "ctrl+t":
				// The quiz screen only receives messages while on top, so
				// it is replaced rather than buried under mode selection.
				if m.router.Path() == guard.PathQuestions {
					return m.leaveFor(guard.PathModeSelect)
				}
				return m, router.Navigate(guard.PathModeSelect)
			case "ctrl+l":
				return m, m.logout()
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// leaveFor resets to path, asking first when a quiz is on screen.
func (m AppModel) leaveFor(path string) (tea.Model, tea.Cmd) {
	if m.router.Path() == guard.PathQuestions {
		m.leaving = true
		m.leaveTo = path
		return m, nil
	}
	return m, router.Reset(path)
}

// logout tells the server first, while the token is still available, then
// clears local state whatever the outcome.
func (m AppModel) logout() tea.Cmd {
	api, logger := m.opts.API, m.logger
	return func() tea.Msg {
		if api != nil {
			ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
			defer cancel()
			if err := api.Logout(ctx); err != nil {
				logger.Warn("server logout", zap.Error(err))
			}
		}
		return loggedOutMsg{}
	}
}

func (m AppModel) identity() session.Session {
	return m.opts.Session.Current()
}

func (m AppModel) navbarVisible() bool {
	return guard.ShowNavbar(m.router.Path(), m.identity().UserID)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the whole frame for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	user := ""
	if id := m.identity(); id.Authenticated() {
		user = id.DisplayName()
	}
	header := layout.RenderHeader(title, user, m.width)

	navbar := ""
	if m.navbarVisible() {
		navbar = m.renderNavbar()
	}

	// Short terminals give the footer rows to content.
	footer := ""
	if !layout.IsCompactHeight(m.height) {
		footer = layout.RenderFooter(m.footerHints(active), m.width)
	}

	top := header
	if navbar != "" {
		top += "\n" + navbar
	}
	content := m.router.View(m.width, layout.ContentHeight(top, footer, m.height))
	return layout.RenderFrame(header, navbar, content, footer, m.width, m.height)
}

func (m AppModel) renderNavbar() string {
	path := m.router.Path()
	items := []layout.NavItem{
		{Key: "^d", Label: "Dashboard", Active: path == guard.PathDashboard},
		{Key: "^t", Label: "Take Quiz", Active: path == guard.PathModeSelect || path == guard.PathQuestions},
		{Key: "^l", Label: "Logout"},
	}

	status := ""
	switch {
	case m.leaving:
		status = theme.ErrorText.Render(leaveQuizPrompt)
	case path == guard.PathQuestions:
		if n := m.opts.Session.Progress().CurrentQuestion; n > 0 {
			status = fmt.Sprintf("Question %d", n)
		}
	}
	return layout.RenderNavbar(items, status, m.width)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if m.leaving {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
