package questions

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/careerguider/internal/forms"
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/quiz"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/screen"
	"github.com/abhisek/careerguider/internal/session"
	"github.com/abhisek/careerguider/internal/ui/components"
	"github.com/abhisek/careerguider/internal/ui/layout"
)

const genericError = "Something went wrong. Please try again."

// Runner performs the network calls for a quiz run.
type Runner interface {
	Load(ctx context.Context, mode string) ([]gateway.Question, error)
	Submit(ctx context.Context, sub quiz.Submission) (int, error)
}

// Config holds the screen's timing and fallback mode.
type Config struct {
	AdvanceDelay time.Duration
	DefaultMode  string
}

// QuestionsScreen drives one quiz run.
type QuestionsScreen struct {
	runner Runner
	store  *session.Store
	cfg    Config

	flow    *quiz.Flow
	input   components.TextInput
	options components.OptionList
	alert   string
}

var _ screen.Screen = (*QuestionsScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionsScreen)(nil)

// New creates a QuestionsScreen for the signed-in user's selected mode.
func New(runner Runner, store *session.Store, cfg Config) *QuestionsScreen {
	cur := store.Current()
	mode := cur.Mode
	if mode == "" {
		mode = cfg.DefaultMode
	}
	return &QuestionsScreen{
		runner: runner,
		store:  store,
		cfg:    cfg,
		flow:   quiz.NewFlow(cur.UserID, mode),
	}
}

func (s *QuestionsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *QuestionsScreen) Title() string {
	return "Career Quiz"
}

func (s *QuestionsScreen) KeyHints() []layout.KeyHint {
	switch s.flow.State() {
	case quiz.StateLoadFailed:
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
	case quiz.StatePresenting:
		hints := []layout.KeyHint{{Key: "Enter", Description: s.submitLabel()}}
		if s.isChoice() {
			hints = append(hints, layout.KeyHint{Key: "↑↓/1-9", Description: "Choose"})
		}
		if s.flow.CanGoBack() {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+B", Description: "Previous"})
		}
		return hints
	case quiz.StateSubmitting:
		return []layout.KeyHint{{Key: "…", Description: "Processing"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *QuestionsScreen) load() tea.Cmd {
	runner, runID, mode := s.runner, s.flow.RunID(), s.flow.Mode()
	return func() tea.Msg {
		qs, err := runner.Load(context.Background(), mode)
		return questionsLoadedMsg{RunID: runID, Questions: qs, Err: err}
	}
}

func (s *QuestionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		return s.handleLoaded(msg)

	case submitDoneMsg:
		return s.handleSubmitDone(msg)

	case advanceMsg:
		return s.handleAdvance(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and similar.
	if s.flow.State() == quiz.StatePresenting && !s.isChoice() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuestionsScreen) handleLoaded(msg questionsLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.RunID != s.flow.RunID() {
		return s, nil
	}
	if msg.Err != nil {
		s.flow.LoadFailed(msg.Err)
		return s, nil
	}
	s.flow.Loaded(msg.Questions)
	return s, s.prepareQuestion()
}

func (s *QuestionsScreen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		// ErrStale: the run moved on; nothing to show.
		_ = s.flow.SubmitFailed(msg.Sub, msg.Err)
		return s, nil
	}
	if err := s.flow.SubmitSucceeded(msg.Sub, msg.Score); err != nil {
		return s, nil
	}
	sub := msg.Sub
	return s, tea.Tick(s.cfg.AdvanceDelay, func(time.Time) tea.Msg {
		return advanceMsg{Sub: sub}
	})
}

func (s *QuestionsScreen) handleAdvance(msg advanceMsg) (screen.Screen, tea.Cmd) {
	if err := s.flow.Advance(msg.Sub); err != nil {
		return s, nil
	}
	if s.flow.State() == quiz.StateFinished {
		s.store.SetCurrentQuestion(0)
		return s, router.Redirect(guard.PathResults)
	}
	return s, s.prepareQuestion()
}

func (s *QuestionsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.flow.State() {
	case quiz.StateLoadFailed:
		if key == "r" && s.flow.Retry() {
			return s, s.load()
		}
		return s, nil
	case quiz.StatePresenting:
	default:
		return s, nil
	}

	s.alert = ""
	if s.flow.Err() != nil && key != "enter" {
		s.flow.DismissError()
	}

	switch key {
	case "enter":
		return s.submit()
	case "ctrl+b":
		if s.flow.Back() {
			return s, s.prepareQuestion()
		}
		return s, nil
	}

	var cmd tea.Cmd
	if s.isChoice() {
		s.options, cmd = s.options.Update(msg)
		s.flow.SetDraft(s.options.Value())
	} else {
		s.input, cmd = s.input.Update(msg)
		s.flow.SetDraft(s.input.Value())
	}
	return s, cmd
}

func (s *QuestionsScreen) submit() (screen.Screen, tea.Cmd) {
	answer := s.input.Value()
	if s.isChoice() {
		answer = s.options.Value()
	}

	sub, err := s.flow.BeginSubmit(answer)
	if err != nil {
		var ve *forms.ValidationError
		if errors.As(err, &ve) {
			s.alert = ve.Field(quiz.FieldAnswer)
		}
		return s, nil
	}

	runner := s.runner
	return s, func() tea.Msg {
		score, err := runner.Submit(context.Background(), sub)
		return submitDoneMsg{Sub: sub, Score: score, Err: err}
	}
}

// prepareQuestion resets the answer widget for the current question and
// restores any remembered answer.
func (s *QuestionsScreen) prepareQuestion() tea.Cmd {
	q, ok := s.flow.Current()
	if !ok {
		return nil
	}
	s.store.SetCurrentQuestion(s.flow.Index() + 1)
	draft := s.flow.Draft(s.flow.Index())

	if s.isChoice() {
		s.options = components.NewOptionList(q.Options, draft)
		return nil
	}
	s.input = components.NewTextInput(quiz.FieldAnswer, "Your answer", "Type your answer here...", 500)
	s.input.SetValue(draft)
	return s.input.Focus()
}

func (s *QuestionsScreen) isChoice() bool {
	q, ok := s.flow.Current()
	return ok && q.Kind == gateway.KindMultipleChoice && len(q.Options) > 0
}

func (s *QuestionsScreen) submitLabel() string {
	if s.flow.IsLast() {
		return "Finish"
	}
	return "Next"
}

func (s *QuestionsScreen) errorText() string {
	err := s.flow.Err()
	if err == nil {
		return ""
	}
	var re *gateway.RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return genericError
}
