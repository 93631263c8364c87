package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/forms"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/components"
	"github.com/abhisek/careerguider/internal/ui/layout"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

const failedMessage = "Login failed. Please try again."

// Authenticator is the gateway call this screen makes.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*gateway.AuthResult, error)
}

type loginDoneMsg struct {
	Result *gateway.AuthResult
	Err    error
}

// LoginScreen collects credentials and signs the user in.
type LoginScreen struct {
	auth  Authenticator
	store *session.Store
	oauth bool

	form   components.Form
	busy   bool
	errMsg string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. oauthEnabled adds the browser sign-in option.
func New(auth Authenticator, store *session.Store, oauthEnabled bool) *LoginScreen {
	return &LoginScreen{
		auth:  auth,
		store: store,
		oauth: oauthEnabled,
		form: components.NewForm(
			components.NewTextInput(forms.FieldIdentifier, "Username or email", "alice or alice@example.com", 128),
			components.NewPasswordInput(forms.FieldPassword, "Password"),
		),
	}
}

func (s *LoginScreen) Title() string {
	return "Login"
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Next / Login"},
		{Key: "Tab", Description: "Switch field"},
		{Key: "Ctrl+N", Description: "Create account"},
	}
	if s.oauth {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+G", Description: "Sign in with Google"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		return s.handleDone(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+n":
			return s, router.Navigate(guard.PathSignup)
		case "ctrl+g":
			if s.oauth && !s.busy {
				return s, router.Navigate(guard.PathAuthCallback)
			}
			return s, nil
		case "enter":
			if !s.form.OnLast() {
				return s, s.form.Next()
			}
			return s.submit()
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	in := forms.Login{
		Identifier: s.form.Value(forms.FieldIdentifier),
		Password:   s.form.Value(forms.FieldPassword),
	}
	s.errMsg = ""
	if err := in.Validate(); err != nil {
		s.form.SetErrors(forms.FieldErrors(err))
		return s, nil
	}
	s.form.SetErrors(nil)
	s.busy = true

	auth := s.auth
	return s, func() tea.Msg {
		res, err := auth.Login(context.Background(), in.Identifier, in.Password)
		return loginDoneMsg{Result: res, Err: err}
	}
}

func (s *LoginScreen) handleDone(msg loginDoneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	switch {
	case msg.Err != nil:
		s.errMsg = gateway.UserMessage(msg.Err)
		return s, nil
	case msg.Result == nil || !msg.Result.Success:
		s.errMsg = failedMessage
		if msg.Result != nil && msg.Result.Message != "" {
			s.errMsg = msg.Result.Message
		}
		return s, nil
	}

	u := msg.Result.User
	err := s.store.SetSession(context.Background(), session.Session{
		UserID:      u.ID,
		UserName:    u.Username,
		Email:       u.Email,
		AccessToken: msg.Result.AccessToken,
	})
	if err != nil {
		s.errMsg = failedMessage
		return s, nil
	}
	return s, router.Reset(guard.PathDashboard)
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Career Guider"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Let's discover your perfect career path!"))
	b.WriteString("\n\n")
	b.WriteString(s.form.View())
	b.WriteString("\n\n")

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("Logging in..."))
	case s.errMsg != "":
		b.WriteString(theme.Alert.Render(s.errMsg))
	default:
		b.WriteString(components.NewButton("Login", "Enter", s.form.OnLast()).View())
	}

	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Don't have an account? Press Ctrl+N to sign up."))

	card := theme.Card.Width(min(60, width-4)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
