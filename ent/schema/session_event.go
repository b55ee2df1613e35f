package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent marks the start and end of a trainer session. The end event
// carries the session's totals.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}, SessionMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Enum("action").Values("start", "end"),
		field.String("mode").
			Default("theory").
			Comment("drill mode when the event was written"),
		field.Int("lines_studied").Default(0),
		field.Int("correct_moves").Default(0),
		field.Int("mistakes").Default(0),
		field.Int("hints").Default(0),
		field.Int("duration_secs").Default(0),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("action", "course_id"),
	}
}
