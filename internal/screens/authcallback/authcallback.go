package authcallback

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/oauth"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/layout"
	"github.com/abhisek/careerguider/internal/ui/theme"
)

// signInTimeout bounds how long we wait for the browser round trip.
const signInTimeout = 5 * time.Minute

const failedMessage = "Google sign-in failed. Please try again."

// SignInClient runs the browser hand-off.
type SignInClient interface {
	SignIn(ctx context.Context, open func(string) error) (*oauth.Identity, error)
}

type authURLMsg string

type signInDoneMsg struct {
	Identity *oauth.Identity
	Err      error
}

// AuthCallbackScreen waits for the identity provider to redirect back,
// then signs the user in.
type AuthCallbackScreen struct {
	client  SignInClient
	store   *session.Store
	open    func(string) error
	urls    chan string
	cancel  context.CancelFunc
	authURL string
	errMsg  string
}

var _ screen.Screen = (*AuthCallbackScreen)(nil)
var _ screen.KeyHintProvider = (*AuthCallbackScreen)(nil)
var _ screen.BackHandler = (*AuthCallbackScreen)(nil)

// New creates the screen. open launches a browser; nil only shows the URL.
func New(client SignInClient, store *session.Store, open func(string) error) *AuthCallbackScreen {
	return &AuthCallbackScreen{
		client: client,
		store:  store,
		open:   open,
		urls:   make(chan string, 1),
	}
}

func (s *AuthCallbackScreen) Title() string {
	return "Sign in"
}

func (s *AuthCallbackScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back to login"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
}

// HandlesBack is always true: Esc must stop the callback listener.
func (s *AuthCallbackScreen) HandlesBack() bool {
	return true
}

func (s *AuthCallbackScreen) Init() tea.Cmd {
	ctx, cancel := context.WithTimeout(context.Background(), signInTimeout)
	s.cancel = cancel

	client, open, urls := s.client, s.open, s.urls
	signIn := func() tea.Msg {
		defer cancel()
		id, err := client.SignIn(ctx, func(u string) error {
			urls <- u
			if open == nil {
				return nil
			}
			return open(u)
		})
		return signInDoneMsg{Identity: id, Err: err}
	}
	waitURL := func() tea.Msg {
		select {
		case u := <-urls:
			return authURLMsg(u)
		case <-ctx.Done():
			select {
			case u := <-urls:
				return authURLMsg(u)
			default:
				return nil
			}
		}
	}
	return tea.Batch(signIn, waitURL)
}

func (s *AuthCallbackScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authURLMsg:
		s.authURL = string(msg)
		return s, nil

	case signInDoneMsg:
		return s.handleDone(msg)

	case tea.KeyMsg:
		if s.errMsg != "" {
			return s, router.Reset(guard.PathLogin)
		}
		if msg.String() == "esc" {
			s.stop()
			return s, router.Reset(guard.PathLogin)
		}
	}
	return s, nil
}

func (s *AuthCallbackScreen) handleDone(msg signInDoneMsg) (screen.Screen, tea.Cmd) {
	s.stop()
	if msg.Err != nil || msg.Identity == nil || msg.Identity.UserID == "" {
		s.errMsg = failedMessage
		return s, nil
	}
	id := msg.Identity
	err := s.store.SetSession(context.Background(), session.Session{
		UserID:      id.UserID,
		UserName:    id.Name,
		Email:       id.Email,
		AccessToken: id.AccessToken,
	})
	if err != nil {
		s.errMsg = failedMessage
		return s, nil
	}
	return s, router.Reset(guard.PathModeSelect)
}

func (s *AuthCallbackScreen) stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *AuthCallbackScreen) View(width, height int) string {
	var lines []string
	if s.errMsg != "" {
		lines = append(lines,
			theme.Alert.Render(s.errMsg),
			"",
			theme.Hint.Render("press any key to return to login"),
		)
	} else {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Completing sign in..."),
			"",
			theme.Body.Render("Finish signing in with Google in your browser."),
		)
		if s.authURL != "" {
			lines = append(lines,
				"",
				theme.Hint.Render("If the browser did not open, visit:"),
				lipgloss.NewStyle().Foreground(theme.Accent).Width(min(width-4, 100)).Render(s.authURL),
			)
		}
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}
