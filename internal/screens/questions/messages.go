package questions

import (
	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/quiz"
)

// Every message carries the run id so results for an abandoned run are
// dropped.

// questionsLoadedMsg is sent when the question fetch completes.
type questionsLoadedMsg struct {
	RunID     string
	Questions []gateway.Question
	Err       error
}

// submitDoneMsg is sent when a submission completes.
type submitDoneMsg struct {
	Sub   quiz.Submission
	Score int
	Err   error
}

// advanceMsg is sent after the visual delay that follows a successful submission.
type advanceMsg struct {
	Sub quiz.Submission
}
