package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerguider/internal/config"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/gateway/fakeapi"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/quiz"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/session"
)

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func send(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

// drive runs cmd and feeds its message back until a command yields nothing
// the router acts on.
func drive(t *testing.T, m AppModel, cmd tea.Cmd) AppModel {
	t.Helper()
	for i := 0; cmd != nil && i < 8; i++ {
		msg := cmd()
		switch msg.(type) {
		case router.NavigateMsg, router.RedirectMsg, router.ResetMsg, router.PopScreenMsg, loggedOutMsg:
		default:
			return m
		}
		m, cmd = send(t, m, msg)
	}
	return m
}

func newOptions(t *testing.T, sess session.Session) Options {
	t.Helper()
	st := session.NewStore(session.NewMemoryKV(nil))
	if sess.UserID != "" {
		require.NoError(t, st.SetSession(context.Background(), sess))
	}
	return Options{Config: config.DefaultConfig(), Session: st}
}

func TestStartSignedOutShowsLogin(t *testing.T) {
	m := NewModel(newOptions(t, session.Session{}))
	m.Init()
	assert.Equal(t, guard.PathLogin, m.router.Path())
}

func TestStartSignedInShowsDashboard(t *testing.T) {
	m := NewModel(newOptions(t, session.Session{UserID: "u1", UserName: "alice"}))
	m.Init()
	assert.Equal(t, guard.PathDashboard, m.router.Path())

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.render()
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "Logout")
}

func TestOAuthRouteOnlyWhenConfigured(t *testing.T) {
	routes := Routes(newOptions(t, session.Session{}))
	_, ok := routes[guard.PathAuthCallback]
	assert.False(t, ok)
}

func TestEscGoesBack(t *testing.T) {
	m := NewModel(newOptions(t, session.Session{UserID: "u1"}))
	m.Init()

	m, cmd := send(t, m, ctrl('t'))
	m = drive(t, m, cmd)
	require.Equal(t, guard.PathModeSelect, m.router.Path())

	m, cmd = send(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	m = drive(t, m, cmd)
	assert.Equal(t, guard.PathDashboard, m.router.Path())
}

func TestLogoutClearsSessionAndShowsLogin(t *testing.T) {
	opts := newOptions(t, session.Session{UserID: "u1", UserName: "alice", AccessToken: "tok"})
	m := NewModel(opts)
	m.Init()

	m, cmd := send(t, m, ctrl('l'))
	require.NotNil(t, cmd)
	m = drive(t, m, cmd)

	assert.Equal(t, guard.PathLogin, m.router.Path())
	assert.False(t, opts.Session.Current().Authenticated())
	assert.Empty(t, opts.Session.Token())

	// Protected paths now resolve to login.
	m, _ = send(t, m, router.NavigateMsg{Path: guard.PathDashboard})
	assert.Equal(t, guard.PathLogin, m.router.Path())
}

func TestNavbarHotkeysIgnoredWhenHidden(t *testing.T) {
	m := NewModel(newOptions(t, session.Session{}))
	m.Init()

	_, cmd := send(t, m, ctrl('l'))
	if cmd != nil {
		_, isLogout := cmd().(loggedOutMsg)
		assert.False(t, isLogout)
	}
}

func TestLeavingQuizAsksFirst(t *testing.T) {
	opts := newOptions(t, session.Session{UserID: "u1", Mode: "ssc"})
	opts.Runner = quiz.NewRunner(nil, nil)
	m := NewModel(opts)
	m.Init()
	m, cmd := send(t, m, router.NavigateMsg{Path: guard.PathQuestions})
	_ = cmd
	require.Equal(t, guard.PathQuestions, m.router.Path())

	m, cmd = send(t, m, ctrl('d'))
	assert.Nil(t, cmd)
	assert.True(t, m.leaving)

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	assert.Contains(t, m.render(), "Leave the quiz?")

	m, _ = send(t, m, keyPress('n'))
	assert.False(t, m.leaving)
	assert.Equal(t, guard.PathQuestions, m.router.Path())

	m, _ = send(t, m, ctrl('d'))
	m, cmd = send(t, m, keyPress('y'))
	m = drive(t, m, cmd)
	assert.Equal(t, guard.PathDashboard, m.router.Path())
}

type stubQuizAPI struct {
	submitted int
}

func (s *stubQuizAPI) GetQuestions(context.Context, string) ([]gateway.Question, error) {
	return []gateway.Question{
		{ID: "name", Text: "What is your name?", Kind: gateway.KindFreeText},
		{ID: "city", Text: "Where do you live?", Kind: gateway.KindFreeText},
	}, nil
}

func (s *stubQuizAPI) SubmitAnswer(context.Context, string, string, string) (*gateway.SubmitResult, error) {
	s.submitted++
	return &gateway.SubmitResult{Score: 20 * s.submitted}, nil
}

func (s *stubQuizAPI) AnalyzeAnswer(context.Context, string) (*gateway.Analysis, error) {
	return &gateway.Analysis{}, nil
}

// startSubmission opens the quiz, answers the first question and returns
// the pending submission command.
func startSubmission(t *testing.T) (AppModel, tea.Cmd) {
	t.Helper()
	opts := newOptions(t, session.Session{UserID: "u1", Mode: "ssc"})
	opts.Runner = quiz.NewRunner(&stubQuizAPI{}, nil)
	opts.Config.Quiz.AdvanceDelay = time.Millisecond
	m := NewModel(opts)
	m.Init()

	m, load := send(t, m, router.NavigateMsg{Path: guard.PathQuestions})
	require.NotNil(t, load)
	m, _ = send(t, m, load())
	require.Equal(t, guard.PathQuestions, m.router.Path())

	for _, r := range "Alice" {
		m, _ = send(t, m, keyPress(r))
	}
	m, submit := send(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, submit)
	return m, submit
}

func TestTakeQuizDuringSubmissionAsksFirst(t *testing.T) {
	m, submit := startSubmission(t)

	m, cmd := send(t, m, ctrl('t'))
	assert.Nil(t, cmd)
	assert.True(t, m.leaving)
	assert.Equal(t, guard.PathQuestions, m.router.Path())

	// The result still reaches the quiz while the prompt is up.
	m, advance := send(t, m, submit())
	assert.NotNil(t, advance)

	m, cmd = send(t, m, keyPress('y'))
	m = drive(t, m, cmd)
	assert.Equal(t, guard.PathModeSelect, m.router.Path())
	assert.Equal(t, 1, m.router.Depth(), "quiz screen must not stay underneath")
}

func TestTakeQuizDeclinedKeepsQuizUsable(t *testing.T) {
	m, submit := startSubmission(t)

	m, _ = send(t, m, ctrl('t'))
	m, _ = send(t, m, keyPress('n'))
	require.False(t, m.leaving)

	m, advance := send(t, m, submit())
	require.NotNil(t, advance)
	m, _ = send(t, m, advance())

	assert.Equal(t, guard.PathQuestions, m.router.Path())
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	assert.Contains(t, ansi.Strip(m.render()), "Where do you live?")
}

func TestLoginAgainstFakeAPI(t *testing.T) {
	srv, err := fakeapi.New(fakeapi.Options{
		Seeds:      []fakeapi.Seed{{Username: "alice", Email: "alice@example.com", Password: "secret"}},
		BcryptCost: 4,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	opts := newOptions(t, session.Session{})
	api, err := gateway.NewHTTPClient(gateway.Config{
		BaseURL: ts.URL + "/api",
		Token:   opts.Session.Token,
	})
	require.NoError(t, err)
	opts.API = api

	m := NewModel(opts)
	m.Init()
	for _, r := range "alice" {
		m, _ = send(t, m, keyPress(r))
	}
	m, _ = send(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	for _, r := range "secret" {
		m, _ = send(t, m, keyPress(r))
	}
	_, cmd := send(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	// The login request resolves into a message for the screen.
	m, cmd = send(t, m, cmd())
	m = drive(t, m, cmd)

	assert.Equal(t, guard.PathDashboard, m.router.Path())
	cur := opts.Session.Current()
	assert.Equal(t, "alice", cur.UserName)
	assert.NotEmpty(t, cur.AccessToken)
}
