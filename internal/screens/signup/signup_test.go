package signup

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerguider/internal/forms"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/router"
)

type fakeRegistrar struct {
	calls    int
	username string
	result   *gateway.AuthResult
	err      error
}

func (f *fakeRegistrar) Signup(_ context.Context, username, email, password string) (*gateway.AuthResult, error) {
	f.calls++
	f.username = username
	return f.result, f.err
}

func fill(s *SignupScreen, values ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, v := range values {
		for _, r := range v {
			s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
		}
		_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	}
	return cmd
}

func TestSignupSuccessThenLogin(t *testing.T) {
	api := &fakeRegistrar{result: &gateway.AuthResult{Success: true}}
	s := New(api)

	cmd := fill(s, "alice", "a@x.com", "secret1", "secret1")
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "alice", api.username)
	assert.True(t, s.created)
	assert.Contains(t, s.View(100, 40), successMessage)

	_, next := s.Update(tea.KeyPressMsg{Code: ' '})
	require.NotNil(t, next)
	assert.Equal(t, router.ResetMsg{Path: guard.PathLogin}, next())
}

func TestSignupValidationBlocksRequest(t *testing.T) {
	api := &fakeRegistrar{}
	s := New(api)

	cmd := fill(s, "al", "not-an-email", "123", "456")
	assert.Nil(t, cmd)
	assert.Equal(t, 0, api.calls)

	errs := map[string]string{}
	for _, in := range s.form.Inputs {
		errs[in.Name] = in.Error
	}
	for _, f := range []string{forms.FieldUsername, forms.FieldEmail, forms.FieldPassword, forms.FieldConfirm} {
		assert.NotEmpty(t, errs[f], "field %s", f)
	}
}

func TestSignupServerMessage(t *testing.T) {
	api := &fakeRegistrar{err: &gateway.RequestError{Op: gateway.OpSignup, Status: 409, Message: "Username already exists"}}
	s := New(api)

	cmd := fill(s, "alice", "a@x.com", "secret1", "secret1")
	s.Update(cmd())

	assert.False(t, s.created)
	assert.Equal(t, "Username already exists", s.errMsg)
}
