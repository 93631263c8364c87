// Package quiz drives one quiz run: one question at a time, one blocking
// submission per answer, and a best-effort analysis on the side.
package quiz

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/careerguider/internal/forms"
	"github.com/abhisek/careerguider/internal/gateway"
)

// State is the phase of a Flow.
type State int

const (
	// StateLoading waits for the question list.
	StateLoading State = iota
	// StatePresenting shows questions[index].
	StatePresenting
	// StateSubmitting has a submission for index in flight, or accepted
	// and waiting to advance.
	StateSubmitting
	// StateFinished follows the last accepted answer.
	StateFinished
	// StateEmpty means the server returned no questions.
	StateEmpty
	// StateLoadFailed means the question list could not be fetched.
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePresenting:
		return "presenting"
	case StateSubmitting:
		return "submitting"
	case StateFinished:
		return "finished"
	case StateEmpty:
		return "empty"
	case StateLoadFailed:
		return "load-failed"
	default:
		return "unknown"
	}
}

// FieldAnswer is the validation field for the answer input.
const FieldAnswer = "answer"

// ErrNotPresenting is returned when an action needs a question on screen.
var ErrNotPresenting = errors.New("no question is awaiting an answer")

// ErrStale is returned for a result that does not belong to the current
// submission.
var ErrStale = errors.New("result does not match the pending submission")

// Submission identifies one in-flight answer.
type Submission struct {
	RunID      string
	UserID     string
	Index      int
	QuestionID string
	Answer     string
}

// Flow is the quiz state machine. It performs no I/O; callers run the
// gateway calls and report back. Not safe for concurrent use.
type Flow struct {
	runID  string
	userID string
	mode   string

	state     State
	questions []gateway.Question
	index     int
	score     int
	accepted  bool
	err       error
	drafts    map[int]string
}

// NewFlow starts a run in StateLoading.
func NewFlow(userID, mode string) *Flow {
	return &Flow{
		runID:  uuid.NewString(),
		userID: userID,
		mode:   mode,
		state:  StateLoading,
		drafts: map[int]string{},
	}
}

// RunID identifies this run. Messages for another run are stale.
func (f *Flow) RunID() string { return f.runID }

func (f *Flow) UserID() string { return f.userID }
func (f *Flow) Mode() string { return f.mode }
func (f *Flow) State() State { return f.state }
func (f *Flow) Index() int { return f.index }
func (f *Flow) Score() int { return f.score }
func (f *Flow) Total() int { return len(f.questions) }

// Err is the last load or submission error, cleared by the next action.
func (f *Flow) Err() error { return f.err }

// DismissError clears the surfaced error.
func (f *Flow) DismissError() { f.err = nil }

// Current returns the question at the current index.
func (f *Flow) Current() (gateway.Question, bool) {
	if f.index < 0 || f.index >= len(f.questions) {
		return gateway.Question{}, false
	}
	return f.questions[f.index], true
}

// IsLast reports whether the current question is the final one.
func (f *Flow) IsLast() bool {
	return len(f.questions) > 0 && f.index == len(f.questions)-1
}

// CanSubmit reports whether a submit control should be offered.
func (f *Flow) CanSubmit() bool { return f.state == StatePresenting }

// CanGoBack reports whether Back would move.
func (f *Flow) CanGoBack() bool { return f.state == StatePresenting && f.index > 0 }

// Draft returns the remembered answer for index.
func (f *Flow) Draft(index int) string { return f.drafts[index] }

// SetDraft remembers a typed or selected answer for the current question.
func (f *Flow) SetDraft(text string) {
	if f.state == StatePresenting {
		f.drafts[f.index] = text
	}
}

// Loaded installs the fetched questions.
func (f *Flow) Loaded(qs []gateway.Question) {
	if f.state != StateLoading {
		return
	}
	f.questions = qs
	f.index = 0
	f.err = nil
	if len(qs) == 0 {
		f.state = StateEmpty
		return
	}
	f.state = StatePresenting
}

// LoadFailed records a failed fetch.
func (f *Flow) LoadFailed(err error) {
	if f.state != StateLoading {
		return
	}
	f.err = err
	f.state = StateLoadFailed
}

// Retry returns a failed run to StateLoading.
func (f *Flow) Retry() bool {
	if f.state != StateLoadFailed {
		return false
	}
	f.err = nil
	f.state = StateLoading
	return true
}

// BeginSubmit validates answer and moves to StateSubmitting. A blank answer
// returns a *forms.ValidationError and leaves the state unchanged.
func (f *Flow) BeginSubmit(answer string) (Submission, error) {
	if f.state != StatePresenting {
		return Submission{}, ErrNotPresenting
	}
	text := strings.TrimSpace(answer)
	if text == "" {
		return Submission{}, &forms.ValidationError{
			FieldErrors: map[string]string{FieldAnswer: "Please answer the question before continuing"},
		}
	}
	q := f.questions[f.index]
	f.drafts[f.index] = text
	f.err = nil
	f.accepted = false
	f.state = StateSubmitting
	return Submission{RunID: f.runID, UserID: f.userID, Index: f.index, QuestionID: q.ID, Answer: text}, nil
}

// SubmitSucceeded records the server score. The flow stays in
// StateSubmitting until Advance is called after the visual delay.
func (f *Flow) SubmitSucceeded(sub Submission, score int) error {
	if !f.pending(sub) || f.accepted {
		return ErrStale
	}
	f.score = score
	f.accepted = true
	return nil
}

// SubmitFailed returns to StatePresenting at the same index with the score
// untouched and err surfaced.
func (f *Flow) SubmitFailed(sub Submission, err error) error {
	if !f.pending(sub) || f.accepted {
		return ErrStale
	}
	f.err = err
	f.state = StatePresenting
	return nil
}

// Advance moves past an accepted submission: to the next question, or to
// StateFinished from the last one.
func (f *Flow) Advance(sub Submission) error {
	if !f.pending(sub) || !f.accepted {
		return ErrStale
	}
	f.accepted = false
	if f.index == len(f.questions)-1 {
		f.state = StateFinished
		return nil
	}
	f.index++
	f.state = StatePresenting
	return nil
}

// Back moves to the previous question. It never goes below zero and does
// nothing while a submission is in flight.
func (f *Flow) Back() bool {
	if !f.CanGoBack() {
		return false
	}
	f.index--
	f.err = nil
	return true
}

func (f *Flow) pending(sub Submission) bool {
	return f.state == StateSubmitting && sub.RunID == f.runID && sub.Index == f.index
}
