package quiz

import (
	"context"

	"github.com/abhisek/careerguider/internal/gateway"
)

// API is the part of the gateway a quiz run needs.
type API interface {
	Analyzer
	GetQuestions(ctx context.Context, mode string) ([]gateway.Question, error)
	SubmitAnswer(ctx context.Context, userID, questionID, text string) (*gateway.SubmitResult, error)
}

// Runner sequences the network calls for a Flow: questions once, then per
// answer a detached analysis followed by the blocking submission.
type Runner struct {
	api       API
	annotator *Annotator
}

// NewRunner returns a Runner. annotator may be nil to skip analysis.
func NewRunner(api API, annotator *Annotator) *Runner {
	return &Runner{api: api, annotator: annotator}
}

// Load fetches the questions for mode.
func (r *Runner) Load(ctx context.Context, mode string) ([]gateway.Question, error) {
	return r.api.GetQuestions(ctx, mode)
}

// Submit hands the answer to the annotator and then submits it, returning
// the server's running score.
func (r *Runner) Submit(ctx context.Context, sub Submission) (int, error) {
	r.annotator.Annotate(sub.QuestionID, sub.Answer)

	res, err := r.api.SubmitAnswer(ctx, sub.UserID, sub.QuestionID, sub.Answer)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}
