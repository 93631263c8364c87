package store

import (
	"context"
	"time"
)

// Event kinds.
const (
	KindAPI = "api"
	KindLLM = "llm"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Kind   string    // "" = all kinds
	Limit  int       // max results (0 = unlimited)
	After  int64     // id > After
	Before int64     // id < Before
	From   time.Time // created_at >= From
	To     time.Time // created_at <= To
}

// APIRequestEventData captures one call to the remote career API.
type APIRequestEventData struct {
	RequestID    string
	Op           string
	Method       string
	Path         string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// Event is a stored request event of either kind. For API events Op is the
// gateway operation and Target is "METHOD path"; for LLM events Op is the
// purpose and Target is the model.
type Event struct {
	ID           int
	Timestamp    time.Time
	Kind         string
	RequestID    string
	Op           string
	Target       string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	InputTokens  int
	OutputTokens int
	RequestBody  string
	ResponseBody string
}

// EventRepo provides append and query access to request events.
type EventRepo interface {
	// AppendAPIRequest records a career API call.
	AppendAPIRequest(ctx context.Context, data APIRequestEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryEvents returns events newest first.
	QueryEvents(ctx context.Context, opts QueryOpts) ([]Event, error)

	// GetEvent returns one event, or nil if it does not exist.
	GetEvent(ctx context.Context, id int) (*Event, error)
}
