package coach

import "github.com/abhisek/prepwise/internal/llm"

// DebriefSchema is the structured output expected for an assessment debrief.
var DebriefSchema = &llm.Schema{
	Name:        "assessment-debrief",
	Description: "Interview readiness debrief with focus areas and a short study plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-4 sentence overview of the candidate's readiness for this company and role",
			},
			"focus_areas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-4 specific topics to work on (3-8 words each)",
			},
			"study_plan": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic": map[string]any{
							"type":        "string",
							"description": "What to study",
						},
						"action": map[string]any{
							"type":        "string",
							"description": "One concrete next step, naming a listed course where one fits",
						},
					},
					"required":             []any{"topic", "action"},
					"additionalProperties": false,
				},
				"description": "2-5 ordered steps",
			},
		},
		"required":             []any{"summary", "focus_areas", "study_plan"},
		"additionalProperties": false,
	},
}
