package dashboard

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerguider/internal/forms"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/ui/components"
)

const savedMessage = "Profile updated successfully!"

// profileEditor holds the profile tab: the last loaded profile and, while
// editing, the form over it.
type profileEditor struct {
	current gateway.Profile
	loadErr string

	form    components.Form
	editing bool
	saving  bool

	notice string
	err    string
}

func newProfileEditor() *profileEditor {
	return &profileEditor{}
}

func (p *profileEditor) loaded(prof *gateway.Profile, err error) {
	if err != nil {
		// A missing profile is normal for new accounts.
		if !gateway.IsNotFound(err) {
			p.loadErr = gateway.UserMessage(err)
		}
		return
	}
	if prof != nil {
		p.current = *prof
	}
}

// edit opens the form prefilled with the current values.
func (p *profileEditor) edit() tea.Cmd {
	p.form = components.NewForm(
		components.NewTextInput(forms.FieldPhone, "Phone", "+91 98765 43210", 20),
		components.NewTextInput(forms.FieldDateOfBirth, "Date of Birth", "YYYY-MM-DD", 10),
		components.NewTextInput(forms.FieldGender, "Gender", "Male / Female / Other / Prefer not to say", 32),
		components.NewTextInput(forms.FieldSchoolCollege, "School / College", "", 120),
		components.NewTextInput(forms.FieldCity, "City", "", 60),
		components.NewTextInput(forms.FieldState, "State", "e.g. Maharashtra", 40),
	)
	p.form.SetValue(forms.FieldPhone, p.current.Phone)
	p.form.SetValue(forms.FieldDateOfBirth, p.current.DateOfBirth)
	p.form.SetValue(forms.FieldGender, p.current.Gender)
	p.form.SetValue(forms.FieldSchoolCollege, p.current.SchoolCollege)
	p.form.SetValue(forms.FieldCity, p.current.City)
	p.form.SetValue(forms.FieldState, p.current.State)

	p.editing = true
	p.notice, p.err = "", ""
	return p.form.Init()
}

func (p *profileEditor) cancel() {
	p.editing = false
	p.saving = false
	p.err = ""
}

func (p *profileEditor) update(msg tea.Msg) tea.Cmd {
	if p.saving {
		return nil
	}
	var cmd tea.Cmd
	p.form, cmd = p.form.Update(msg)
	return cmd
}

// submit validates the form. On success it returns the canonicalized profile
// to send and marks the editor as saving.
func (p *profileEditor) submit() (gateway.Profile, bool) {
	if p.saving {
		return gateway.Profile{}, false
	}
	in := forms.Profile{
		Phone:         p.form.Value(forms.FieldPhone),
		DateOfBirth:   p.form.Value(forms.FieldDateOfBirth),
		Gender:        p.form.Value(forms.FieldGender),
		SchoolCollege: p.form.Value(forms.FieldSchoolCollege),
		City:          p.form.Value(forms.FieldCity),
		State:         p.form.Value(forms.FieldState),
	}
	if err := in.Validate(); err != nil {
		p.form.SetErrors(forms.FieldErrors(err))
		p.err = ""
		return gateway.Profile{}, false
	}
	p.form.SetErrors(nil)
	p.saving = true
	p.err = ""

	out := gateway.Profile{
		Phone:         in.Phone,
		DateOfBirth:   in.DateOfBirth,
		Gender:        forms.CanonicalGender(in.Gender),
		SchoolCollege: in.SchoolCollege,
		City:          in.City,
		State:         forms.CanonicalState(in.State),
	}
	return out, true
}

func (p *profileEditor) saved(prof gateway.Profile, err error) {
	p.saving = false
	if err != nil {
		p.err = gateway.UserMessage(err)
		return
	}
	p.current = prof
	p.editing = false
	p.notice = savedMessage
}
