package session

import "strings"

// Session is the locally persisted identity of the signed-in user plus the
// selected quiz mode. A zero Session means nobody is signed in.
type Session struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"access_token,omitempty"`

	// Mode is the question set chosen on the mode selection screen ("ssc", "hsc").
	Mode       string `json:"mode,omitempty"`
	ClassLevel string `json:"class_level,omitempty"`
}

// Authenticated reports whether the session carries a user identifier.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// DisplayName returns the best available name for the header.
func (s Session) DisplayName() string {
	switch {
	case s.UserName != "":
		return s.UserName
	case s.Email != "":
		return s.Email
	default:
		return s.UserID
	}
}

// Progress is process-scoped state that is never persisted.
type Progress struct {
	// CurrentQuestion is 1-based; zero means no quiz is running.
	CurrentQuestion int
	HasSeenSplash   bool
}
