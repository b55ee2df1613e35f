package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// EventMixin stamps an event with its place in the global sequence shared
// by every event table, and the UTC time it was written.
type EventMixin struct {
	mixin.Schema
}

func (EventMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Unique().
			Immutable(),
		field.Time("timestamp").
			Default(time.Now).
			Immutable(),
	}
}

// sequence is already UNIQUE, which SQLite indexes.
func (EventMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
	}
}

// SessionMixin ties an event to the training session and course it
// happened in.
type SessionMixin struct {
	mixin.Schema
}

func (SessionMixin) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Immutable().
			Comment("UUID of the trainer session"),
		field.String("course_id").
			NotEmpty().
			Immutable(),
	}
}

func (SessionMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
