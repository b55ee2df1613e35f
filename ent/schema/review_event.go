package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReviewEvent records the outcome of one attempt at a line and the card
// state it produced.
type ReviewEvent struct {
	ent.Schema
}

func (ReviewEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}, SessionMixin{}}
}

func (ReviewEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("line_id").NotEmpty(),
		field.String("mode").NotEmpty(),
		field.String("outcome").
			Comment("completed, stage_advanced, reviewed, demoted or failed"),
		field.Int("mistakes").Default(0),
		field.Int("hints").Default(0),
		field.Int("hint_stage").Default(1),
		field.Int("interval_days").Default(0),
		field.Float("ease_factor").Default(0),
		field.Time("next_review_at").Optional(),
	}
}

func (ReviewEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("course_id", "line_id"),
	}
}
