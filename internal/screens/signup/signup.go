package signup

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
	"github.com/abhisek/careerguider/internal/ui/components"
	"github.com/abhisek/careerguider/internal/ui/layout"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

const (
	failedMessage  = "Signup failed. Please try again."
	successMessage = "Signup successful! Please login."
)

// Registrar is the gateway call this screen makes.
type Registrar interface {
	Signup(ctx context.Context, username, email, password string) (*gateway.AuthResult, error)
}

type signupDoneMsg struct {
	Result *gateway.AuthResult
	Err    error
}

// SignupScreen creates an account. It does not sign the user in.
type SignupScreen struct {
	api Registrar

	form    components.Form
	busy    bool
	created bool
	errMsg  string
}

var _ screen.Screen = (*SignupScreen)(nil)
var _ screen.KeyHintProvider = (*SignupScreen)(nil)

// New creates a SignupScreen.
func New(api Registrar) *SignupScreen {
	return &SignupScreen{
		api: api,
		form: components.NewForm(
			components.NewTextInput(forms.FieldUsername, "Username", "Choose a username", 64),
			components.NewTextInput(forms.FieldEmail, "Email", "your.email@example.com", 128),
			components.NewPasswordInput(forms.FieldPassword, "Password (minimum 6 characters)"),
			components.NewPasswordInput(forms.FieldConfirm, "Confirm password"),
		),
	}
}

func (s *SignupScreen) Title() string {
	return "Create Account"
}

func (s *SignupScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *SignupScreen) KeyHints() []layout.KeyHint {
	if s.created {
		return []layout.KeyHint{{Key: "any key", Description: "Go to login"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Next / Sign up"},
		{Key: "Tab", Description: "Switch field"},
		{Key: "Esc", Description: "Back to login"},
	}
}

func (s *SignupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signupDoneMsg:
		return s.handleDone(msg)

	case tea.KeyMsg:
		if s.created {
			return s, router.Reset(guard.PathLogin)
		}
		if msg.String() == "enter" {
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

func (s *SignupScreen) submit() (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	in := forms.Signup{
		Username:        s.form.Value(forms.FieldUsername),
		Email:           s.form.Value(forms.FieldEmail),
		Password:        s.form.Value(forms.FieldPassword),
		ConfirmPassword: s.form.Value(forms.FieldConfirm),
	}
	s.errMsg = ""
	if err := in.Validate(); err != nil {
		s.form.SetErrors(forms.FieldErrors(err))
		return s, nil
	}
	s.form.SetErrors(nil)
	s.busy = true

	api := s.api
	return s, func() tea.Msg {
		res, err := api.Signup(context.Background(), in.Username, in.Email, in.Password)
		return signupDoneMsg{Result: res, Err: err}
	}
}

func (s *SignupScreen) handleDone(msg signupDoneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	switch {
	case msg.Err != nil:
		s.errMsg = gateway.UserMessage(msg.Err)
	case msg.Result == nil || !msg.Result.Success:
		s.errMsg = failedMessage
		if msg.Result != nil && msg.Result.Message != "" {
			s.errMsg = msg.Result.Message
		}
	default:
		s.created = true
	}
	return s, nil
}

func (s *SignupScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Create Account"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Join Career Guider to discover your perfect path"))
	b.WriteString("\n\n")

	if s.created {
		b.WriteString(theme.SuccessText.Render(successMessage))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("press any key to continue"))
	} else {
		b.WriteString(s.form.View())
		b.WriteString("\n\n")
		switch {
		case s.busy:
			b.WriteString(theme.Hint.Render("Creating account..."))
		case s.errMsg != "":
			b.WriteString(theme.Alert.Render(s.errMsg))
		default:
			b.WriteString(components.NewButton("Sign up", "Enter", s.form.OnLast()).View())
		}
	}

	card := theme.Card.Width(min(60, width-4)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
