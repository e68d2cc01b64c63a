package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ModuleProgress is one learner's current standing in one module:
// lifecycle status, raw component scores, attempt bookkeeping, and the
// grading policy in effect. It is the mutable row behind every
// progression decision; history lives in TransitionEvent.
type ModuleProgress struct {
	ent.Schema
}

func (ModuleProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").NotEmpty(),
		field.String("module_id").NotEmpty(),
		field.String("status").
			Default("locked").
			Comment("locked, unlocked, in_progress, completed, or failed"),
		field.Float("course_contribution_score").Default(0),
		field.Float("quiz_score").Default(0),
		field.Float("assignment_score").Default(0),
		field.Float("final_assessment_score").Default(0),
		field.Float("cumulative_score").
			Optional().
			Nillable().
			Comment("Upstream-supplied aggregate; null when the engine computes it"),
		field.Int("attempts_count").Default(0),
		field.Int("max_attempts").Default(3),
		field.Float("passing_threshold").Default(80),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (ModuleProgress) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "module_id").Unique(),
		index.Fields("learner_id"),
	}
}
