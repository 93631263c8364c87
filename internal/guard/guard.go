// Package guard decides which screen a navigation request may show, based
// only on whether a signed-in identity is present.
package guard

import (
	"context"
	"strings"
)

// Route paths.
const (
	PathRoot         = "/"
	PathLogin        = "/login"
	PathSignup       = "/signup"
	PathAuthCallback = "/auth/callback"
	PathSplash       = "/splash"
	PathModeSelect   = "/mode-selection"
	PathQuote        = "/motivational-quote"
	PathQuestions    = "/questions"
	PathResults      = "/results"
	PathDashboard    = "/dashboard"
)

// DefaultAuthenticated is where the root path sends a signed-in user.
const DefaultAuthenticated = PathDashboard

// maxHops bounds redirect chains. The table below resolves in at most two.
const maxHops = 4

// Access classifies a route.
type Access int

const (
	Unknown Access = iota
	Public
	Protected
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

var routes = map[string]Access{
	PathRoot:         Public,
	PathLogin:        Public,
	PathSignup:       Public,
	PathAuthCallback: Public,
	PathSplash:       Protected,
	PathModeSelect:   Protected,
	PathQuote:        Protected,
	PathQuestions:    Protected,
	PathResults:      Protected,
	PathDashboard:    Protected,
}

var navbarPaths = map[string]bool{
	PathModeSelect: true,
	PathQuestions:  true,
	PathResults:    true,
	PathDashboard:  true,
}

// Decision is the outcome of resolving a path.
type Decision struct {
	// Path is the screen to mount.
	Path string
	// Redirected is true when Path differs from the request.
	Redirected bool
}

// Classify returns the access class of path.
func Classify(path string) Access {
	return routes[normalize(path)]
}

// Resolve follows redirects for path until it reaches a screen that may be
// mounted for identity. identity is the session user id; empty means signed out.
func Resolve(path, identity string) Decision {
	signedIn := strings.TrimSpace(identity) != ""
	requested := normalize(path)
	cur := requested

	for hop := 0; hop < maxHops; hop++ {
		next, ok := step(cur, signedIn)
		if !ok {
			break
		}
		cur = next
	}
	// A protected screen must never come out of here without identity.
	if !signedIn && routes[cur] != Public {
		cur = PathLogin
	}
	return Decision{Path: cur, Redirected: cur != requested}
}

// step applies one redirect rule. ok is false when path is final.
func step(path string, signedIn bool) (string, bool) {
	switch routes[path] {
	case Unknown:
		return PathRoot, true
	case Protected:
		if !signedIn {
			return PathLogin, true
		}
		return "", false
	}
	if path == PathRoot {
		if signedIn {
			return DefaultAuthenticated, true
		}
		return PathLogin, true
	}
	return "", false
}

// ShowNavbar reports whether the navigation strip is drawn on path. It is a
// rendering rule only.
func ShowNavbar(path, identity string) bool {
	return strings.TrimSpace(identity) != "" && navbarPaths[normalize(path)]
}

// SessionClearer is the part of the session store Logout needs.
type SessionClearer interface {
	ClearSession(ctx context.Context) error
}

// Logout clears persisted and ephemeral session state and returns the path
// to navigate to next.
func Logout(ctx context.Context, s SessionClearer) (string, error) {
	if err := s.ClearSession(ctx); err != nil {
		return PathRoot, err
	}
	return PathRoot, nil
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
