package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// HintEvent is written each time the learner asks for a hint.
type HintEvent struct {
	ent.Schema
}

func (HintEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}, SessionMixin{}}
}

func (HintEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("line_id").NotEmpty(),
		field.String("mode").NotEmpty(),
		field.Int("ply").NonNegative(),
		field.String("expected_move").
			NotEmpty().
			Comment("SAN of the move the line wanted"),
		field.String("revealed").
			Default("").
			Comment("from+to squares highlighted for the learner, e.g. g1f3"),
		field.Int("hint_stage").
			Default(0).
			Comment("card hint stage in review mode, 0 elsewhere"),
	}
}

func (HintEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("course_id", "line_id", "ply"),
	}
}
