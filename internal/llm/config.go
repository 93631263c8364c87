package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
)

// Config holds LLM provider configuration. An empty Provider means no
// provider is configured and LLM features stay off.
type Config struct {
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	OpenRouter ProviderConfig
	Gemini     ProviderConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig is the per-provider key and model. BaseURL is honoured by
// the OpenAI-compatible providers only.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with models and retry defaults filled in
// and no provider selected.
func DefaultConfig() Config {
	return Config{
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-exp", BaseURL: defaultOpenRouterBaseURL},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Enabled reports whether a provider has been selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// ConfigFromEnv reads CAREER_LLM_PROVIDER and the CAREER_<PROVIDER>_*
// variables. Without CAREER_LLM_PROVIDER it falls back to DiscoverConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	readProvider := func(prefix string, pc *ProviderConfig) {
		if v := os.Getenv(prefix + "_API_KEY"); v != "" {
			pc.APIKey = v
		}
		if v := os.Getenv(prefix + "_MODEL"); v != "" {
			pc.Model = v
		}
		if v := os.Getenv(prefix + "_BASE_URL"); v != "" {
			pc.BaseURL = v
		}
	}
	readProvider("CAREER_ANTHROPIC", &cfg.Anthropic)
	readProvider("CAREER_OPENAI", &cfg.OpenAI)
	readProvider("CAREER_OPENROUTER", &cfg.OpenRouter)
	readProvider("CAREER_GEMINI", &cfg.Gemini)

	if v := os.Getenv("CAREER_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	cfg.Provider = os.Getenv("CAREER_LLM_PROVIDER")
	if cfg.Provider == "" {
		if found, ok := DiscoverConfig(); ok {
			found.Anthropic.Model = cfg.Anthropic.Model
			found.OpenAI.Model = cfg.OpenAI.Model
			found.OpenRouter.Model = cfg.OpenRouter.Model
			found.Gemini.Model = cfg.Gemini.Model
			found.Timeout = cfg.Timeout
			return found
		}
	}
	return cfg
}

// DiscoverConfig probes the vendors' standard API key variables and selects
// the first provider whose key is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	probes := []struct {
		env      string
		provider string
		target   *ProviderConfig
	}{
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI},
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			p.target.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var pc ProviderConfig
	switch c.Provider {
	case "", ProviderMock:
		return nil
	case ProviderAnthropic:
		pc = c.Anthropic
	case ProviderOpenAI:
		pc = c.OpenAI
	case ProviderOpenRouter:
		pc = c.OpenRouter
	case ProviderGemini:
		pc = c.Gemini
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider)
	}
	return nil
}
