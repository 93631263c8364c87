// Package gateway is the client for the remote career guidance API. Every
// call makes exactly one HTTP request; nothing is cached or retried here.
package gateway

import (
	"context"
	"time"
)

// Operation names, used in errors, logs and the request event log.
const (
	OpSignup         = "signup"
	OpLogin          = "login"
	OpLogout         = "logout"
	OpQuestions      = "questions"
	OpAnalyze        = "analyze"
	OpSubmitAnswer   = "submit-answer"
	OpRecommend      = "recommend"
	OpGetProfile     = "get-profile"
	OpUpdateProfile  = "update-profile"
	OpDashboardStats = "dashboard-stats"
	OpQuizHistory    = "quiz-history"
	OpPing           = "ping"
)

// Client is the set of remote operations the application uses.
type Client interface {
	Signup(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Logout(ctx context.Context) error

	GetQuestions(ctx context.Context, mode string) ([]Question, error)
	// AnalyzeAnswer is best effort; callers must not gate anything on it.
	AnalyzeAnswer(ctx context.Context, text string) (*Analysis, error)
	SubmitAnswer(ctx context.Context, userID, questionID, text string) (*SubmitResult, error)
	GetRecommendations(ctx context.Context, userID string) (*Recommendation, error)

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, p Profile) error
	DashboardStats(ctx context.Context, userID string) (*DashboardStats, error)
	QuizHistory(ctx context.Context, userID string) ([]QuizHistoryEntry, error)

	Ping(ctx context.Context) error
}

// QuestionKind distinguishes how an answer is collected.
type QuestionKind string

const (
	KindFreeText       QuestionKind = "free-text"
	KindMultipleChoice QuestionKind = "multiple-choice"
)

// Question is one quiz prompt. Options is set only for multiple choice.
type Question struct {
	ID      string
	Text    string
	Kind    QuestionKind
	Options []string
}

// User is the identity record returned by the auth endpoints.
type User struct {
	ID       string
	Username string
	Email    string
}

// AuthResult is the normalized signup/login response.
type AuthResult struct {
	Success     bool
	User        User
	AccessToken string
	Message     string
}

// Analysis is the server's annotation of a free-text answer.
type Analysis struct {
	Sentiment  float64  `json:"sentiment"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

// SubmitResult carries the running score after a submission.
type SubmitResult struct {
	Score int
}

// Recommendation is the server's opaque career recommendation.
type Recommendation struct {
	Streams  []string `json:"streams"`
	Careers  []string `json:"careers"`
	Analysis string   `json:"analysis"`
}

// Profile holds the editable student profile.
type Profile struct {
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	SchoolCollege string `json:"school_college"`
	City          string `json:"city"`
	State         string `json:"state"`
}

// DashboardStats summarizes past quizzes.
type DashboardStats struct {
	TotalQuizzes      int     `json:"total_quizzes"`
	CompletedQuizzes  int     `json:"completed_quizzes"`
	IncompleteQuizzes int     `json:"incomplete_quizzes"`
	AverageScore      float64 `json:"average_score"`
}

// QuizHistoryEntry is one saved quiz run.
type QuizHistoryEntry struct {
	ID          int64      `json:"id"`
	Mode        string     `json:"mode"`
	ClassLevel  string     `json:"class_level"`
	IsCompleted bool       `json:"is_completed"`
	Score       int        `json:"score"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
