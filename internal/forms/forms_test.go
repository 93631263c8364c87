package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want *ValidationError, got %T", err)
	return ve.FieldErrors
}

func TestLogin_Validate(t *testing.T) {
	assert.NoError(t, Login{Identifier: "alice", Password: "secret"}.Validate())

	errs := fieldErrors(t, Login{Identifier: "  "}.Validate())
	assert.Contains(t, errs, FieldIdentifier)
	assert.Contains(t, errs, FieldPassword)
}

func TestSignup_Validate(t *testing.T) {
	valid := Signup{Username: "alice", Email: "a@x.com", Password: "secret", ConfirmPassword: "secret"}

	tests := []struct {
		name   string
		mutate func(*Signup)
		field  string
		msg    string
	}{
		{"valid", func(*Signup) {}, "", ""},
		{"no username", func(s *Signup) { s.Username = " " }, FieldUsername, "Username is required"},
		{"short username", func(s *Signup) { s.Username = "al" }, FieldUsername, "Username must be at least 3 characters"},
		{"no email", func(s *Signup) { s.Email = "" }, FieldEmail, "Email is required"},
		{"bad email", func(s *Signup) { s.Email = "alice@x" }, FieldEmail, "Email is invalid"},
		{"no password", func(s *Signup) { s.Password, s.ConfirmPassword = "", "" }, FieldPassword, "Password is required"},
		{"short password", func(s *Signup) { s.Password, s.ConfirmPassword = "12345", "12345" }, FieldPassword, "Password must be at least 6 characters"},
		{"mismatch", func(s *Signup) { s.ConfirmPassword = "secreT" }, FieldConfirm, "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := f.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			errs := fieldErrors(t, err)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	assert.NoError(t, Profile{}.Validate())
	assert.NoError(t, Profile{
		Phone:       "+91 98765-43210",
		DateOfBirth: "2008-04-01",
		Gender:      "female",
		State:       "tamil nadu",
	}.Validate())

	errs := fieldErrors(t, Profile{
		Phone:       "12ab",
		DateOfBirth: "01/04/2008",
		Gender:      "robot",
		State:       "Atlantis",
	}.Validate())
	assert.Len(t, errs, 4)

	errs = fieldErrors(t, Profile{Phone: "123"}.Validate())
	assert.Contains(t, errs, FieldPhone)

	errs = fieldErrors(t, Profile{DateOfBirth: "2999-01-01"}.Validate())
	assert.Equal(t, "Date of birth is in the future", errs[FieldDateOfBirth])
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "Prefer not to say", CanonicalGender("prefer NOT to say"))
	assert.Equal(t, "West Bengal", CanonicalState(" west bengal "))
	assert.Empty(t, CanonicalState("Bengal"))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{FieldErrors: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "invalid input: a: one; b: two", err.Error())
	assert.Equal(t, "one", err.Field("a"))

	var nilErr *ValidationError
	assert.Empty(t, nilErr.Field("a"))
}

func TestFieldErrors(t *testing.T) {
	err := Login{}.Validate()
	wrapped := errors.Join(errors.New("login"), err)
	assert.Contains(t, FieldErrors(wrapped), FieldIdentifier)
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}
