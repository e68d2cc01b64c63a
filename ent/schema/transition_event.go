package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TransitionEvent records a module status transition for audit and
// analytics. Rows are append-only; the current state lives in
// ModuleProgress.
type TransitionEvent struct {
	ent.Schema
}

func (TransitionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (TransitionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").NotEmpty(),
		field.String("module_id").NotEmpty(),
		field.String("from_status").NotEmpty(),
		field.String("to_status").NotEmpty(),
		field.String("trigger").NotEmpty(),
		field.Float("cumulative_score"),
		field.Int("attempts"),
	}
}

func (TransitionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "module_id"),
	}
}
