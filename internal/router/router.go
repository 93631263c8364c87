package router

import (
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/screen"
)

// maxDepth bounds the history stack. The oldest entry is dropped first.
const maxDepth = 16

// Factory builds a fresh screen for a route.
type Factory func() screen.Screen

// Routes maps guard paths to screen factories.
type Routes map[string]Factory

// NavigateMsg asks the router to push path onto the history.
type NavigateMsg struct {
	Path string
}

// RedirectMsg asks the router to replace the top of the history with path.
type RedirectMsg struct {
	Path string
}

// ResetMsg asks the router to drop the history and mount path alone.
type ResetMsg struct {
	Path string
}

// PopScreenMsg requests the router to go back one entry.
type PopScreenMsg struct{}

// Navigate returns a command that emits NavigateMsg.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Redirect returns a command that emits RedirectMsg.
func Redirect(path string) tea.Cmd {
	return func() tea.Msg { return RedirectMsg{Path: path} }
}

// Reset returns a command that emits ResetMsg.
func Reset(path string) tea.Cmd {
	return func() tea.Msg { return ResetMsg{Path: path} }
}

// Back returns a command that emits PopScreenMsg.
func Back() tea.Cmd {
	return func() tea.Msg { return PopScreenMsg{} }
}

type entry struct {
	path   string
	screen screen.Screen
}

// Router manages a history of path-addressed screens. Every mount goes
// through guard.Resolve, so a protected screen is never built for a
// signed-out user.
type Router struct {
	routes   Routes
	identity func() string
	logger   *zap.Logger
	stack    []entry
}

// New creates a Router. identity returns the current session user id.
// Call Start to mount the first screen.
func New(routes Routes, identity func() string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		routes:   routes,
		identity: identity,
		logger:   logger.Named("router"),
	}
}

// Start resets the history to path.
func (r *Router) Start(path string) tea.Cmd {
	return r.Reset(path)
}

// Push resolves path and pushes the resulting screen.
func (r *Router) Push(path string) tea.Cmd {
	e, ok := r.build(path)
	if !ok {
		return nil
	}
	r.stack = append(r.stack, e)
	if len(r.stack) > maxDepth {
		r.stack = r.stack[len(r.stack)-maxDepth:]
	}
	return e.screen.Init()
}

// Replace resolves path and swaps it in for the active screen.
func (r *Router) Replace(path string) tea.Cmd {
	e, ok := r.build(path)
	if !ok {
		return nil
	}
	if len(r.stack) == 0 {
		r.stack = []entry{e}
	} else {
		r.stack[len(r.stack)-1] = e
	}
	return e.screen.Init()
}

// Reset resolves path and makes it the only entry.
func (r *Router) Reset(path string) tea.Cmd {
	e, ok := r.build(path)
	if !ok {
		return nil
	}
	r.stack = []entry{e}
	return e.screen.Init()
}

// Pop goes back one entry. The entry underneath is re-checked against the
// guard and rebuilt when its path is no longer allowed. No-op at the bottom.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]
	top := r.stack[len(r.stack)-1]
	d := guard.Resolve(top.path, r.identity())
	if d.Path != top.path {
		return r.Replace(top.path)
	}
	return nil
}

// build resolves path and constructs its screen.
func (r *Router) build(path string) (entry, bool) {
	d := guard.Resolve(path, r.identity())
	if d.Redirected {
		r.logger.Debug("redirect", zap.String("from", path), zap.String("to", d.Path))
	}
	factory, ok := r.routes[d.Path]
	if !ok {
		r.logger.Error("no screen for route", zap.String("path", d.Path))
		return entry{}, false
	}
	r.logger.Debug("mount", zap.String("path", d.Path))
	return entry{path: d.Path, screen: factory()}, true
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].screen
}

// Path returns the route of the active screen, or "" before Start.
func (r *Router) Path() string {
	if len(r.stack) == 0 {
		return ""
	}
	return r.stack[len(r.stack)-1].path
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NavigateMsg:
		return r.Push(msg.Path)
	case RedirectMsg:
		return r.Replace(msg.Path)
	case ResetMsg:
		return r.Reset(msg.Path)
	case PopScreenMsg:
		return r.Pop()
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1].screen = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
