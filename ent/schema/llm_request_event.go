package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent is one call to a language model, kept for `chessdrill llm`
// to price and replay.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider"),
		field.String("model").
			Comment("model that answered, falling back to the one requested"),
		field.String("purpose").
			Comment("what the call was for, e.g. variation-naming"),
		field.Int("input_tokens").Default(0),
		field.Int("output_tokens").Default(0),
		field.Int64("latency_ms").Default(0),
		field.Bool("success"),
		field.String("error_kind").
			Default("").
			Comment("failure class: unavailable, rate limited, rejected, invalid response or truncated"),
		field.String("error_message").Default(""),
		field.Text("request_body").
			Default("").
			Comment("system prompt, messages and schema as sent"),
		field.Text("response_body").
			Default("").
			Comment("model output, kept even when it failed validation"),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose", "success"),
		index.Fields("model"),
	}
}
