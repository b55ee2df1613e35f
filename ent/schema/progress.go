package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Progress holds the review cards of one course as a single opaque blob.
type Progress struct {
	ent.Schema
}

func (Progress) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("course_id").
			NotEmpty().
			Immutable().
			Comment("Course the cards belong to"),
		field.Bytes("data").
			Comment("JSON array of [card id, card] pairs"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
