// Package coach turns a server-side career recommendation into a short,
// structured action plan using a language model.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/careerguider/internal/gateway"
	"github.com/abhisek/careerguider/internal/llm"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("career coach is not configured")

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns sensible defaults for plan generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.4,
		Timeout:     30 * time.Second,
	}
}

// Input is what the plan is built from.
type Input struct {
	Mode           string
	ClassLevel     string
	Name           string
	State          string
	Recommendation gateway.Recommendation
}

// Plan is a generated action plan.
type Plan struct {
	Summary         string   `json:"summary"`
	NextSteps       []string `json:"next_steps"`
	SubjectsToFocus []string `json:"subjects_to_focus"`
}

// Service generates action plans. A Service with a nil provider is valid
// and reports itself disabled.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a coach backed by provider.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Enabled reports whether plans can be generated.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Plan generates an action plan for in. It blocks; callers on the UI
// thread run it inside a command.
func (s *Service) Plan(ctx context.Context, in Input) (*Plan, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if len(in.Recommendation.Streams) == 0 && len(in.Recommendation.Careers) == 0 {
		return nil, fmt.Errorf("action plan: recommendation is empty")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, "action-plan")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in)}},
		Schema:      PlanSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("action plan: %w", err)
	}

	var p Plan
	if err := json.Unmarshal(resp.Content, &p); err != nil {
		return nil, fmt.Errorf("parse action plan: %w", err)
	}
	p.NextSteps = compact(p.NextSteps)
	p.SubjectsToFocus = compact(p.SubjectsToFocus)
	return &p, nil
}

// compact trims entries and drops empty ones.
func compact(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
