package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/careerguider/internal/forms"
	"github.com/abhisek/careerguider/internal/gateway"
)

func threeQuestions() []gateway.Question {
	return []gateway.Question{
		{ID: "name", Text: "Name?", Kind: gateway.KindFreeText},
		{ID: "age", Text: "Age?", Kind: gateway.KindMultipleChoice, Options: []string{"13", "14"}},
		{ID: "dream", Text: "Dream job?", Kind: gateway.KindFreeText},
	}
}

func loadedFlow(t *testing.T) *Flow {
	t.Helper()
	f := NewFlow("u1", "ssc")
	require.Equal(t, StateLoading, f.State())
	f.Loaded(threeQuestions())
	require.Equal(t, StatePresenting, f.State())
	return f
}

func answer(t *testing.T, f *Flow, text string, score int) {
	t.Helper()
	sub, err := f.BeginSubmit(text)
	require.NoError(t, err)
	require.NoError(t, f.SubmitSucceeded(sub, score))
	require.NoError(t, f.Advance(sub))
}

func TestFlow_EmptyQuestions(t *testing.T) {
	f := NewFlow("u1", "ssc")
	f.Loaded(nil)
	assert.Equal(t, StateEmpty, f.State())
	assert.False(t, f.CanSubmit())
	_, err := f.BeginSubmit("anything")
	assert.ErrorIs(t, err, ErrNotPresenting)
}

func TestFlow_LoadFailedAndRetry(t *testing.T) {
	f := NewFlow("u1", "ssc")
	f.LoadFailed(errors.New("boom"))
	assert.Equal(t, StateLoadFailed, f.State())
	assert.EqualError(t, f.Err(), "boom")
	assert.False(t, f.CanSubmit())

	require.True(t, f.Retry())
	assert.Equal(t, StateLoading, f.State())
	assert.NoError(t, f.Err())
	f.Loaded(threeQuestions())
	assert.Equal(t, 3, f.Total())
}

func TestFlow_BlankAnswerRejected(t *testing.T) {
	f := loadedFlow(t)
	_, err := f.BeginSubmit("   ")
	var ve *forms.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Field(FieldAnswer))
	assert.Equal(t, StatePresenting, f.State())
}

func TestFlow_NoConcurrentSubmission(t *testing.T) {
	f := loadedFlow(t)
	_, err := f.BeginSubmit("Alice")
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, f.State())
	assert.False(t, f.CanSubmit())

	_, err = f.BeginSubmit("Alice again")
	assert.ErrorIs(t, err, ErrNotPresenting)
	assert.False(t, f.Back())
}

func TestFlow_SuccessAdvancesOnlyAfterDelay(t *testing.T) {
	f := loadedFlow(t)
	sub, err := f.BeginSubmit(" Alice ")
	require.NoError(t, err)
	assert.Equal(t, Submission{RunID: f.RunID(), UserID: "u1", Index: 0, QuestionID: "name", Answer: "Alice"}, sub)

	require.NoError(t, f.SubmitSucceeded(sub, 20))
	assert.Equal(t, 20, f.Score())
	assert.Equal(t, 0, f.Index(), "index moves only on Advance")
	assert.Equal(t, StateSubmitting, f.State())

	require.NoError(t, f.Advance(sub))
	assert.Equal(t, 1, f.Index())
	assert.Equal(t, StatePresenting, f.State())
}

func TestFlow_FailureLeavesIndexAndScore(t *testing.T) {
	f := loadedFlow(t)
	answer(t, f, "Alice", 20)

	sub, err := f.BeginSubmit("14")
	require.NoError(t, err)
	reqErr := &gateway.RequestError{Op: gateway.OpSubmitAnswer, Status: 500, Message: "db down"}
	require.NoError(t, f.SubmitFailed(sub, reqErr))

	assert.Equal(t, StatePresenting, f.State())
	assert.Equal(t, 1, f.Index())
	assert.Equal(t, 20, f.Score())
	assert.Equal(t, reqErr, f.Err())
	assert.Equal(t, "14", f.Draft(1))

	// Advance for the failed submission is ignored.
	assert.ErrorIs(t, f.Advance(sub), ErrStale)
	assert.Equal(t, 1, f.Index())

	f.DismissError()
	assert.NoError(t, f.Err())
}

func TestFlow_FinishOnlyFromLast(t *testing.T) {
	f := loadedFlow(t)
	answer(t, f, "Alice", 20)
	assert.NotEqual(t, StateFinished, f.State())
	answer(t, f, "14", 40)
	assert.True(t, f.IsLast())
	assert.NotEqual(t, StateFinished, f.State())
	answer(t, f, "Pilot", 60)

	assert.Equal(t, StateFinished, f.State())
	assert.Equal(t, 2, f.Index())
	assert.Equal(t, 60, f.Score())
}

func TestFlow_BackNeverBelowZero(t *testing.T) {
	f := loadedFlow(t)
	assert.False(t, f.CanGoBack())
	assert.False(t, f.Back())
	assert.Equal(t, 0, f.Index())

	answer(t, f, "Alice", 20)
	answer(t, f, "14", 40)
	assert.True(t, f.Back())
	assert.True(t, f.Back())
	assert.False(t, f.Back())
	assert.Equal(t, 0, f.Index())
	assert.Equal(t, "Alice", f.Draft(0))
}

func TestFlow_StaleResultsIgnored(t *testing.T) {
	f := loadedFlow(t)
	sub, err := f.BeginSubmit("Alice")
	require.NoError(t, err)

	other := sub
	other.RunID = "another-run"
	assert.ErrorIs(t, f.SubmitSucceeded(other, 999), ErrStale)
	assert.ErrorIs(t, f.SubmitFailed(other, errors.New("late")), ErrStale)
	assert.Equal(t, 0, f.Score())

	require.NoError(t, f.SubmitSucceeded(sub, 20))
	assert.ErrorIs(t, f.SubmitSucceeded(sub, 40), ErrStale)
	assert.ErrorIs(t, f.SubmitFailed(sub, errors.New("late")), ErrStale)
	assert.Equal(t, 20, f.Score())
}

func TestFlow_IndexBounds(t *testing.T) {
	f := loadedFlow(t)
	for i := 0; i < 10 && f.State() != StateFinished; i++ {
		answer(t, f, "x", (i+1)*20)
		assert.GreaterOrEqual(t, f.Index(), 0)
		assert.Less(t, f.Index(), f.Total())
	}
	assert.Equal(t, StateFinished, f.State())
	_, ok := f.Current()
	assert.True(t, ok)
}

func TestFlow_LoadedIgnoredOutsideLoading(t *testing.T) {
	f := loadedFlow(t)
	answer(t, f, "Alice", 20)
	f.Loaded(nil)
	assert.Equal(t, StatePresenting, f.State())
	assert.Equal(t, 1, f.Index())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", State(99).String())
}
