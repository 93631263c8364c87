package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var planSchema = &Schema{
	Name:        "test-plan",
	Description: "A study plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":    map[string]any{"type": "string"},
			"next_steps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []any{"summary", "next_steps"},
		"additionalProperties": false,
	},
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func newTestAnthropic(t *testing.T, h http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "test-key", Model: "claude-sonnet", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicGenerate(t *testing.T) {
	var got map[string]any
	p := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		jsonHandler(http.StatusOK, anthropicMessage(`{"summary":"Science suits you","next_steps":["Visit a lab"]}`, "end_turn"))(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a career counsellor.",
		Messages:  []Message{{Role: RoleUser, Content: "Plan my next steps."}},
		Schema:    planSchema,
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, 50, resp.Usage.InputTokens)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "claude-sonnet-4-20250514", resp.Model)
	assert.JSONEq(t, `{"summary":"Science suits you","next_steps":["Visit a lab"]}`, string(resp.Content))

	assert.Equal(t, "claude-sonnet-4-20250514", got["model"])
	assert.EqualValues(t, 256, got["max_tokens"])
}

func TestAnthropicTruncated(t *testing.T) {
	p := newTestAnthropic(t, jsonHandler(http.StatusOK, anthropicMessage(`{"summary":"Sci`, "max_tokens")))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "x"}},
		Schema:    planSchema,
		MaxTokens: 8,
	})
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
	assert.Equal(t, `{"summary":"Sci`, string(maxTok.Content))
}

func TestAnthropicErrorMapping(t *testing.T) {
	errBody := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": "nope"}}
	}

	t.Run("rate limit", func(t *testing.T) {
		p := newTestAnthropic(t, jsonHandler(http.StatusTooManyRequests, errBody("rate_limit_error")))
		_, err := p.Generate(context.Background(), Request{MaxTokens: 10})
		var rl *ErrRateLimit
		assert.ErrorAs(t, err, &rl)
	})

	t.Run("server error", func(t *testing.T) {
		p := newTestAnthropic(t, jsonHandler(http.StatusInternalServerError, errBody("api_error")))
		_, err := p.Generate(context.Background(), Request{MaxTokens: 10})
		var unavail *ErrProviderUnavailable
		assert.ErrorAs(t, err, &unavail)
	})

	t.Run("bad request is permanent", func(t *testing.T) {
		p := newTestAnthropic(t, jsonHandler(http.StatusBadRequest, errBody("invalid_request_error")))
		_, err := p.Generate(context.Background(), Request{MaxTokens: 10})
		require.Error(t, err)
		seen := false
		assert.False(t, retryable(err, &seen))
	})
}

func newTestOpenAI(t *testing.T, h http.HandlerFunc, openRouter bool) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"}
	var (
		p   *OpenAIProvider
		err error
	)
	if openRouter {
		cfg.Model = "google/gemini-2.0-flash-exp"
		p, err = NewOpenRouterProvider(cfg)
	} else {
		p, err = NewOpenAIProvider(cfg)
	}
	require.NoError(t, err)
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var got map[string]any
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		jsonHandler(http.StatusOK, chatCompletion(`{"summary":"Commerce","next_steps":["Try accounts"]}`, "stop"))(w, r)
	}, false)

	resp, err := p.Generate(context.Background(), Request{
		System:    "sys",
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		Schema:    planSchema,
		MaxTokens: 128,
	})
	require.NoError(t, err)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

	format := got["response_format"].(map[string]any)
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, "test-plan", schema["name"])
	assert.Equal(t, true, schema["strict"])
}

func TestOpenAISchemaViolation(t *testing.T) {
	p := newTestOpenAI(t, jsonHandler(http.StatusOK, chatCompletion(`{"summary":"x"}`, "stop")), false)

	_, err := p.Generate(context.Background(), Request{Schema: planSchema, MaxTokens: 10})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestOpenAIErrorMapping(t *testing.T) {
	errBody := map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}}

	p := newTestOpenAI(t, jsonHandler(http.StatusTooManyRequests, errBody), false)
	_, err := p.Generate(context.Background(), Request{MaxTokens: 10})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	p = newTestOpenAI(t, jsonHandler(http.StatusBadGateway, errBody), false)
	_, err = p.Generate(context.Background(), Request{MaxTokens: 10})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestOpenAINoChoices(t *testing.T) {
	body := chatCompletion("", "stop")
	body["choices"] = []any{}
	p := newTestOpenAI(t, jsonHandler(http.StatusOK, body), false)

	_, err := p.Generate(context.Background(), Request{MaxTokens: 10})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestOpenRouterProvider(t *testing.T) {
	var got map[string]any
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		jsonHandler(http.StatusOK, chatCompletion(`{"summary":"Arts","next_steps":[]}`, "stop"))(w, r)
	}, true)

	assert.Equal(t, "google/gemini-2.0-flash-exp", p.ModelID())
	_, err := p.Generate(context.Background(), Request{Schema: planSchema, MaxTokens: 10})
	require.NoError(t, err)

	schema := got["response_format"].(map[string]any)["json_schema"].(map[string]any)
	assert.NotEqual(t, true, schema["strict"])
}

func TestOpenRouterDefaultBaseURL(t *testing.T) {
	_, err := NewOpenRouterProvider(ProviderConfig{})
	assert.Error(t, err)

	p, err := NewOpenRouterProvider(ProviderConfig{APIKey: "k", Model: "meta/llama"})
	require.NoError(t, err)
	assert.Equal(t, "meta/llama", p.ModelID())
}

func TestModelAliases(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "claude-opus-x", resolveModel("claude-opus-x", anthropicModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gpt-4o", resolveModel("gpt-4o", openaiModels))
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string", "description": "one paragraph"},
			"stream":  map[string]any{"type": "string", "enum": []any{"Science", "Commerce"}},
			"subjects": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"maxItems": 5,
			},
			"confidence": map[string]any{"type": "number"},
		},
		"required": []string{"summary"},
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"summary"}, s.Required)
	assert.Equal(t, "one paragraph", s.Properties["summary"].Description)
	assert.Equal(t, []string{"Science", "Commerce"}, s.Properties["stream"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["subjects"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["subjects"].Items.Type)
	require.NotNil(t, s.Properties["subjects"].MaxItems)
	assert.EqualValues(t, 5, *s.Properties["subjects"].MaxItems)
	assert.Equal(t, genai.TypeNumber, s.Properties["confidence"].Type)
}

func TestNewProvidersRequireKeys(t *testing.T) {
	_, err := NewAnthropicProvider(ProviderConfig{})
	assert.Error(t, err)
	_, err = NewOpenAIProvider(ProviderConfig{})
	assert.Error(t, err)
	_, err = NewGeminiProvider(context.Background(), ProviderConfig{})
	assert.Error(t, err)
}
