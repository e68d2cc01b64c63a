// Package contract defines the stable wire contract for the
// progression engine: JSON Schemas for its input payloads, validating
// decoders, and the contract version consumers check against.
//
// The engine is consumed both embedded and over the wire; every
// consumer must see identical field shapes, so the schemas here are the
// single source of truth for payload structure.
package contract

var statusValues = []any{"locked", "unlocked", "in_progress", "completed", "failed"}

// scoreProperty is the schema fragment for a 0-100 score field.
func scoreProperty(desc string) map[string]any {
	return map[string]any{
		"type":        "number",
		"minimum":     0,
		"maximum":     100,
		"description": desc,
	}
}

// Schema pairs a name with a JSON Schema definition.
type Schema struct {
	Name       string
	Definition map[string]any
}

// RecordSchema validates a ModuleProgressRecord payload. Every field is
// optional: absence of data is not an error, and missing values are
// normalized by the engine. Present fields must be well typed.
var RecordSchema = &Schema{
	Name:       "progress-record",
	Definition: recordDefinition,
}

var recordDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status": map[string]any{
			"type": "string",
			"enum": statusValues,
		},
		"courseContributionScore": scoreProperty("Engagement score, always graded"),
		"quizScore":               scoreProperty("Average quiz score"),
		"assignmentScore":         scoreProperty("Average assignment score"),
		"finalAssessmentScore":    scoreProperty("Final assessment score"),
		"cumulativeScore": map[string]any{
			"type":        []any{"number", "null"},
			"minimum":     0,
			"maximum":     100,
			"description": "Pre-computed weighted aggregate; authoritative when present",
		},
		"attemptsCount": map[string]any{
			"type":    "integer",
			"minimum": 0,
		},
		"maxAttempts": map[string]any{
			"type":    "integer",
			"minimum": 1,
		},
		"passingThreshold": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 100,
		},
	},
	"additionalProperties": false,
}

var availabilityDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"hasQuizzes":         map[string]any{"type": "boolean"},
		"hasAssignments":     map[string]any{"type": "boolean"},
		"hasFinalAssessment": map[string]any{"type": "boolean"},
	},
	"additionalProperties": false,
}

var moduleDataDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"module": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":          map[string]any{"type": "string"},
				"title":       map[string]any{"type": "string"},
				"order":       map[string]any{"type": "integer"},
				"assessments": availabilityDefinition,
			},
			"required":             []any{"id"},
			"additionalProperties": false,
		},
		"progress": map[string]any{
			"oneOf": []any{
				recordDefinition,
				map[string]any{"type": "null"},
			},
		},
	},
	"required":             []any{"module"},
	"additionalProperties": false,
}

// ModuleDataSchema validates a module-plus-progress payload.
var ModuleDataSchema = &Schema{
	Name:       "module-data",
	Definition: moduleDataDefinition,
}

// CourseSchema validates an ordered course payload for scans.
var CourseSchema = &Schema{
	Name: "course",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type":  "array",
				"items": moduleDataDefinition,
			},
		},
		"required":             []any{"modules"},
		"additionalProperties": false,
	},
}
