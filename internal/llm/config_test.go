package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	for _, k := range []string{
		"CAREER_LLM_PROVIDER", "CAREER_LLM_TIMEOUT",
		"CAREER_ANTHROPIC_API_KEY", "CAREER_ANTHROPIC_MODEL",
		"CAREER_OPENAI_API_KEY", "CAREER_OPENAI_MODEL", "CAREER_OPENAI_BASE_URL",
		"CAREER_OPENROUTER_API_KEY", "CAREER_GEMINI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigDisabledByDefault(t *testing.T) {
	clearLLMEnv(t)
	cfg := ConfigFromEnv()
	assert.False(t, cfg.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("CAREER_LLM_PROVIDER", "openai")
	t.Setenv("CAREER_OPENAI_API_KEY", "sk-test")
	t.Setenv("CAREER_OPENAI_MODEL", "gpt-4o")
	t.Setenv("CAREER_OPENAI_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("CAREER_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, ProviderConfig{APIKey: "sk-test", Model: "gpt-4o", BaseURL: "http://localhost:9999/v1"}, cfg.OpenAI)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigDiscovery(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("CAREER_GEMINI_MODEL", "gemini-pro")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-pro", cfg.Gemini.Model)

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "claude"
	assert.ErrorContains(t, cfg.Validate(), "unknown LLM provider")

	cfg.Provider = ProviderAnthropic
	assert.Error(t, cfg.Validate())
	cfg.Anthropic.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Provider = ProviderMock
	assert.NoError(t, cfg.Validate())
}
