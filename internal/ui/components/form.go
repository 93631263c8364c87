package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// Form is an ordered set of text inputs with one focused at a time.
type Form struct {
	Inputs []TextInput
	focus  int
}

// NewForm creates a form with the first input focused.
func NewForm(inputs ...TextInput) Form {
	f := Form{Inputs: inputs}
	if len(f.Inputs) > 0 {
		f.Inputs[0].Focus()
	}
	return f
}

// Init returns the cursor blink command for the focused input.
func (f *Form) Init() tea.Cmd {
	if len(f.Inputs) == 0 {
		return nil
	}
	return f.Inputs[f.focus].Focus()
}

// Focus returns the index of the focused input.
func (f Form) Focus() int {
	return f.focus
}

// OnLast reports whether the last input has focus.
func (f Form) OnLast() bool {
	return f.focus == len(f.Inputs)-1
}

// Next moves focus down, wrapping to the top.
func (f *Form) Next() tea.Cmd {
	return f.setFocus((f.focus + 1) % len(f.Inputs))
}

// Prev moves focus up, wrapping to the bottom.
func (f *Form) Prev() tea.Cmd {
	return f.setFocus((f.focus - 1 + len(f.Inputs)) % len(f.Inputs))
}

func (f *Form) setFocus(i int) tea.Cmd {
	f.Inputs[f.focus].Blur()
	f.focus = i
	return f.Inputs[i].Focus()
}

// Update routes focus keys and forwards everything else to the focused input.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if len(f.Inputs) == 0 {
		return f, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return f, f.Next()
		case "shift+tab", "up":
			return f, f.Prev()
		}
	}
	var cmd tea.Cmd
	f.Inputs[f.focus], cmd = f.Inputs[f.focus].Update(msg)
	return f, cmd
}

// Value returns the trimmed value of the named input.
func (f Form) Value(name string) string {
	for _, in := range f.Inputs {
		if in.Name == name {
			return strings.TrimSpace(in.Value())
		}
	}
	return ""
}

// SetValue fills the named input.
func (f *Form) SetValue(name, v string) {
	for i := range f.Inputs {
		if f.Inputs[i].Name == name {
			f.Inputs[i].SetValue(v)
		}
	}
}

// SetErrors shows field errors and clears the rest. A nil map clears all.
func (f *Form) SetErrors(errs map[string]string) {
	for i := range f.Inputs {
		f.Inputs[i].Error = errs[f.Inputs[i].Name]
	}
}

// View renders the inputs one under another.
func (f Form) View() string {
	parts := make([]string, len(f.Inputs))
	for i, in := range f.Inputs {
		parts[i] = in.View()
	}
	return strings.Join(parts, "\n\n")
}
