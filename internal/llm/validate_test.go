package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"valid", `{"summary":"s","next_steps":["a","b"]}`, true},
		{"missing required", `{"summary":"s"}`, false},
		{"wrong type", `{"summary":"s","next_steps":"a"}`, false},
		{"extra field", `{"summary":"s","next_steps":[],"x":1}`, false},
		{"not json", `summary: s`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(planSchema, json.RawMessage(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var invalid *ErrInvalidResponse
			if assert.ErrorAs(t, err, &invalid) {
				assert.Equal(t, tt.raw, string(invalid.Content))
			}
		})
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`free text`)))
}

func TestCompileCachesByName(t *testing.T) {
	s := &Schema{Name: "cache-probe", Definition: map[string]any{"type": "integer"}}
	a, err := compile(s)
	assert.NoError(t, err)
	b, err := compile(s)
	assert.NoError(t, err)
	assert.Same(t, a, b)
}
