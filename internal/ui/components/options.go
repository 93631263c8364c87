package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerguider/internal/ui/theme"
)

// OptionList is a single-choice selector for multiple choice questions.
// There is no correct answer; the chosen text is the answer.
type OptionList struct {
	Options  []string
	Selected int
}

// NewOptionList creates a list with the option equal to current selected.
// With no match nothing is selected and Value is empty until the user
// picks one.
func NewOptionList(options []string, current string) OptionList {
	o := OptionList{Options: options, Selected: -1}
	for i, opt := range options {
		if opt == current {
			o.Selected = i
		}
	}
	return o
}

// Update handles arrow keys and number shortcuts.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(o.Options) == 0 {
		return o, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		switch {
		case o.Selected < 0:
			o.Selected = 0
		case o.Selected > 0:
			o.Selected--
		}
	case "down", "j":
		if o.Selected < len(o.Options)-1 {
			o.Selected++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(o.Options) {
				o.Selected = i
			}
		}
	}
	return o, nil
}

// Value returns the selected option text.
func (o OptionList) Value() string {
	if o.Selected < 0 || o.Selected >= len(o.Options) {
		return ""
	}
	return o.Options[o.Selected]
}

// View renders the options, numbered from 1.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		style := theme.Unselected
		if i == o.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)) + "\n")
	}
	return b.String()
}
