package coach

import "github.com/abhisek/careerguider/internal/llm"

// PlanSchema is the structured action plan returned by the model.
var PlanSchema = &llm.Schema{
	Name:        "career-action-plan",
	Description: "A short action plan for a student based on their career recommendation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 encouraging sentences addressed to the student",
			},
			"next_steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-5 concrete things to do in the next month (5-15 words each)",
			},
			"subjects_to_focus": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 school subjects to prioritise",
			},
		},
		"required":             []any{"summary", "next_steps", "subjects_to_focus"},
		"additionalProperties": false,
	},
}
