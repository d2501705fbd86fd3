package quizgen

import "github.com/abhisek/edugenie/internal/llm"

// QuizSchema is requested from providers that support structured output.
// It is advisory: ParseQuiz alone decides which candidates are usable, so
// a response missing the topic or an explanation still yields questions.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A multiple-choice quiz for one topic",
	Advisory:    true,
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "The quiz topic",
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer choices",
						},
						"answer_index": map[string]any{
							"type":        "integer",
							"description": "0-based index of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the answer",
						},
					},
					"required":             []string{"question", "options", "answer_index"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	},
}

// GradingSchema is requested for free-text grading.
var GradingSchema = &llm.Schema{
	Name:        "answer-grading",
	Description: "Verdict on one student answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type": "boolean",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One sentence of feedback for the student",
			},
		},
		"required":             []string{"correct", "feedback"},
		"additionalProperties": false,
	},
}

// candidateSchema checks the shape of a single decoded question candidate.
// Aliased fields are each optional but at least one of every group must be
// present. Index range and answer membership are checked in Go.
var candidateSchema = &llm.Schema{
	Name: "quiz-candidate",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question":       map[string]any{"type": "string"},
			"q":              map[string]any{"type": "string"},
			"prompt":         map[string]any{"type": "string"},
			"options":        map[string]any{"type": "array", "minItems": 2, "items": map[string]any{"type": "string"}},
			"answer_index":   map[string]any{"type": []string{"integer", "string"}},
			"correct_index":  map[string]any{"type": []string{"integer", "string"}},
			"answer":         map[string]any{"type": []string{"integer", "string"}},
			"correct_answer": map[string]any{"type": []string{"integer", "string"}},
			"explanation":    map[string]any{"type": "string"},
			"explain":        map[string]any{"type": "string"},
		},
		"required": []string{"options"},
		"allOf": []any{
			map[string]any{"anyOf": []any{
				map[string]any{"required": []string{"question"}},
				map[string]any{"required": []string{"q"}},
				map[string]any{"required": []string{"prompt"}},
			}},
			map[string]any{"anyOf": []any{
				map[string]any{"required": []string{"answer_index"}},
				map[string]any{"required": []string{"correct_index"}},
				map[string]any{"required": []string{"answer"}},
				map[string]any{"required": []string{"correct_answer"}},
			}},
		},
	},
}
