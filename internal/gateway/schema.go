package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// responseSchema names a JSON Schema a response body must satisfy.
type responseSchema struct {
	Name       string
	Definition map[string]any
}

var idType = []any{"string", "integer"}

var stringArray = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

var (
	questionsSchema = &responseSchema{
		Name: "questions",
		Definition: map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":      map[string]any{"type": idType},
					"text":    map[string]any{"type": "string", "minLength": 1},
					"type":    map[string]any{"type": "string"},
					"options": stringArray,
				},
				"required": []any{"id", "text"},
			},
		},
	}

	authSchema = &responseSchema{
		Name: "auth",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"success": map[string]any{"type": "boolean"},
				"user_id": map[string]any{"type": idType},
				"user": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":       map[string]any{"type": idType},
						"username": map[string]any{"type": []any{"string", "null"}},
						"email":    map[string]any{"type": []any{"string", "null"}},
					},
					"required": []any{"id"},
				},
				"session": map[string]any{
					"type": []any{"object", "null"},
					"properties": map[string]any{
						"access_token": map[string]any{"type": "string"},
					},
				},
			},
			"required": []any{"success"},
		},
	}

	submitSchema = &responseSchema{
		Name: "submit-answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"score": map[string]any{"type": "number"},
			},
			"required": []any{"score"},
		},
	}

	analysisSchema = &responseSchema{
		Name: "analysis",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sentiment":  map[string]any{"type": "number"},
				"keywords":   stringArray,
				"confidence": map[string]any{"type": "number"},
			},
		},
	}

	recommendationSchema = &responseSchema{
		Name: "recommendation",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"streams":  stringArray,
				"careers":  stringArray,
				"analysis": map[string]any{"type": "string"},
			},
			"required": []any{"streams", "careers", "analysis"},
		},
	}

	statsSchema = &responseSchema{
		Name: "dashboard-stats",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"stats": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"total_quizzes":      map[string]any{"type": "integer", "minimum": 0},
						"completed_quizzes":  map[string]any{"type": "integer", "minimum": 0},
						"incomplete_quizzes": map[string]any{"type": "integer", "minimum": 0},
						"average_score":      map[string]any{"type": "number"},
					},
				},
			},
			"required": []any{"stats"},
		},
	}

	historySchema = &responseSchema{
		Name: "quiz-history",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"history": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"id"},
					},
				},
			},
			"required": []any{"history"},
		},
	}

	profileSchema = &responseSchema{
		Name: "profile",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"profile": map[string]any{"type": []any{"object", "null"}},
			},
		},
	}
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against s. A nil schema accepts anything.
func validateBody(s *responseSchema, raw []byte) error {
	if s == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(s)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("unexpected %s response: %w", s.Name, err)
	}
	return nil
}

func compiledSchema(s *responseSchema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://gateway/%s.json", s.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(s.Name, compiled)
	return compiled, nil
}
