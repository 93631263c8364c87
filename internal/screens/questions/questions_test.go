package questions

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/guard"
	"github.com/abhisek/careerguider/internal/quiz"
	"github.com/abhisek/careerguider/internal/router"
	"github.com/abhisek/careerguider/internal/session"
)

type fakeRunner struct {
	questions []gateway.Question
	loadErr   error
	loads     int
	mode      string

	submitErr error
	submitted []quiz.Submission
}

func (f *fakeRunner) Load(_ context.Context, mode string) ([]gateway.Question, error) {
	f.loads++
	f.mode = mode
	return f.questions, f.loadErr
}

func (f *fakeRunner) Submit(_ context.Context, sub quiz.Submission) (int, error) {
	if f.submitErr != nil {
		return 0, f.submitErr
	}
	f.submitted = append(f.submitted, sub)
	return 20 * len(f.submitted), nil
}

func sampleQuestions() []gateway.Question {
	return []gateway.Question{
		{ID: "name", Text: "What is your name?", Kind: gateway.KindFreeText},
		{ID: "subject", Text: "Favourite subject?", Kind: gateway.KindMultipleChoice, Options: []string{"Maths", "Biology", "History"}},
		{ID: "dream", Text: "Dream job?", Kind: gateway.KindFreeText},
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newScreen(t *testing.T, runner *fakeRunner) (*QuestionsScreen, *session.Store) {
	t.Helper()
	st := session.NewStore(session.NewMemoryKV(nil))
	require.NoError(t, st.SetSession(context.Background(), session.Session{UserID: "u1", Mode: "hsc", ClassLevel: "12"}))
	s := New(runner, st, Config{AdvanceDelay: time.Millisecond, DefaultMode: "ssc"})
	return s, st
}

func loaded(t *testing.T, runner *fakeRunner) (*QuestionsScreen, *session.Store) {
	t.Helper()
	s, st := newScreen(t, runner)
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	return s, st
}

func typeText(s *QuestionsScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

// answer submits the current answer and runs the submission and advance.
func answer(t *testing.T, s *QuestionsScreen) tea.Cmd {
	t.Helper()
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd, "expected a submission")
	msg := cmd()
	done, ok := msg.(submitDoneMsg)
	require.True(t, ok, "expected submitDoneMsg, got %T", msg)
	s.Update(done)
	if done.Err != nil {
		return nil
	}
	_, next := s.Update(advanceMsg{Sub: done.Sub})
	return next
}

func TestLoadsSelectedMode(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, st := loaded(t, runner)

	assert.Equal(t, "hsc", runner.mode)
	assert.Equal(t, quiz.StatePresenting, s.flow.State())
	assert.Equal(t, 1, st.Progress().CurrentQuestion)
	assert.Contains(t, s.View(100, 40), "Question 1 of 3")
	assert.Contains(t, s.View(100, 40), "Score: 0")
}

func TestDefaultModeWhenUnset(t *testing.T) {
	runner := &fakeRunner{}
	st := session.NewStore(session.NewMemoryKV(nil))
	require.NoError(t, st.SetSession(context.Background(), session.Session{UserID: "u1"}))
	s := New(runner, st, Config{DefaultMode: "ssc"})
	s.Update(s.Init()())
	assert.Equal(t, "ssc", runner.mode)
}

func TestEmptyQuestionsHasNoSubmit(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := loaded(t, runner)

	assert.Equal(t, quiz.StateEmpty, s.flow.State())
	assert.Contains(t, s.View(100, 40), "No questions available")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Empty(t, runner.submitted)
}

func TestBlankAnswerRejectedLocally(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, _ := loaded(t, runner)

	typeText(s, "   ")
	_, cmd := s.Update(specialKey(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.NotEmpty(t, s.alert)
	assert.Equal(t, quiz.StatePresenting, s.flow.State())
	assert.Contains(t, s.View(100, 40), s.alert)
}

func TestSubmitAdvancesWithServerScore(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, st := loaded(t, runner)

	typeText(s, "Asha")
	answer(t, s)

	require.Len(t, runner.submitted, 1)
	assert.Equal(t, "name", runner.submitted[0].QuestionID)
	assert.Equal(t, "Asha", runner.submitted[0].Answer)
	assert.Equal(t, 1, s.flow.Index())
	assert.Equal(t, 20, s.flow.Score())
	assert.Equal(t, 2, st.Progress().CurrentQuestion)
}

func TestSubmitFailureKeepsPosition(t *testing.T) {
	runner := &fakeRunner{
		questions: sampleQuestions(),
		submitErr: &gateway.RequestError{Op: gateway.OpSubmitAnswer, Status: 500, Message: "database unavailable"},
	}
	s, _ := loaded(t, runner)

	typeText(s, "Asha")
	answer(t, s)

	assert.Equal(t, quiz.StatePresenting, s.flow.State())
	assert.Equal(t, 0, s.flow.Index())
	assert.Equal(t, 0, s.flow.Score())
	assert.Contains(t, s.View(100, 40), "database unavailable")
	assert.Equal(t, "Asha", s.input.Value(), "answer kept for retry")
}

func TestSubmitFailureWithoutMessageIsGeneric(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions(), submitErr: errors.New("dial tcp: refused")}
	s, _ := loaded(t, runner)

	typeText(s, "Asha")
	answer(t, s)
	assert.Equal(t, genericError, s.errorText())
}

func TestChoiceNeedsAPick(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, _ := loaded(t, runner)

	typeText(s, "Asha")
	answer(t, s)
	require.True(t, s.isChoice())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.NotEmpty(t, s.alert)
	assert.Len(t, runner.submitted, 1)
	assert.Equal(t, quiz.StatePresenting, s.flow.State())
}

func TestChoiceQuestionAndFinish(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, st := loaded(t, runner)

	typeText(s, "Asha")
	answer(t, s)

	require.True(t, s.isChoice())
	s.Update(keyPress('2'))
	answer(t, s)
	require.Len(t, runner.submitted, 2)
	assert.Equal(t, "Biology", runner.submitted[1].Answer)

	typeText(s, "Doctor")
	assert.Contains(t, s.View(100, 40), "Finish")
	next := answer(t, s)

	require.NotNil(t, next)
	assert.Equal(t, router.RedirectMsg{Path: guard.PathResults}, next())
	assert.Equal(t, quiz.StateFinished, s.flow.State())
	assert.Equal(t, 0, st.Progress().CurrentQuestion)
}

func TestBackRestoresDraft(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, st := loaded(t, runner)

	typeText(s, "Asha")
	answer(t, s)

	s.Update(tea.KeyPressMsg{Code: 'b', Mod: tea.ModCtrl})
	assert.Equal(t, 0, s.flow.Index())
	assert.Equal(t, "Asha", s.input.Value())
	assert.Equal(t, 1, st.Progress().CurrentQuestion)

	// Already at the first question.
	s.Update(tea.KeyPressMsg{Code: 'b', Mod: tea.ModCtrl})
	assert.Equal(t, 0, s.flow.Index())
}

func TestStaleMessagesIgnored(t *testing.T) {
	runner := &fakeRunner{questions: sampleQuestions()}
	s, _ := loaded(t, runner)

	s.Update(questionsLoadedMsg{RunID: "other-run", Questions: nil})
	assert.Equal(t, 3, s.flow.Total())

	s.Update(submitDoneMsg{Sub: quiz.Submission{RunID: "other-run"}, Score: 100})
	assert.Equal(t, 0, s.flow.Score())

	s.Update(advanceMsg{Sub: quiz.Submission{RunID: "other-run"}})
	assert.Equal(t, 0, s.flow.Index())
}

func TestLoadFailureRetry(t *testing.T) {
	runner := &fakeRunner{loadErr: &gateway.RequestError{Op: gateway.OpQuestions, Status: 400, Message: "Invalid mode. Use ssc or hsc"}}
	s, _ := loaded(t, runner)

	assert.Equal(t, quiz.StateLoadFailed, s.flow.State())
	assert.Contains(t, s.View(100, 40), "Invalid mode")

	runner.loadErr = nil
	runner.questions = sampleQuestions()
	_, cmd := s.Update(keyPress('r'))
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Equal(t, 2, runner.loads)
	assert.Equal(t, quiz.StatePresenting, s.flow.State())
}
