package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/chessdrill/ent/schema"
)

// Table names for the ent schemas.
const (
	tableProgress      = "progress"
	tableSessionEvents = "session_events"
	tableReviewEvents  = "review_events"
	tableHintEvents    = "hint_events"
	tableLLMEvents     = "llm_request_events"
)

var tables = []struct {
	name   string
	schema ent.Interface
}{
	{tableProgress, entschema.Progress{}},
	{tableSessionEvents, entschema.SessionEvent{}},
	{tableReviewEvents, entschema.ReviewEvent{}},
	{tableHintEvents, entschema.HintEvent{}},
	{tableLLMEvents, entschema.LLMRequestEvent{}},
}

// migrate runs ent's append-only migration over the tables described by
// the ent schemas.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	defs := make([]*schema.Table, 0, len(tables))
	for _, t := range tables {
		def, err := schemaTable(t.name, t.schema)
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrate: %w", err)
	}
	return m.Create(ctx, defs...)
}

// schemaTable builds the migration table for an ent schema, mixin fields
// first. Schemas without an "id" field get an auto-increment integer key.
func schemaTable(name string, s ent.Interface) (*schema.Table, error) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := schema.NewTable(name)
	columns := make(map[string]string, len(fields))
	var primary *schema.Column
	var cols []*schema.Column
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		c := column(d)
		columns[d.Name] = c.Name
		if d.Name == "id" {
			c.Unique = false
			primary = c
			continue
		}
		cols = append(cols, c)
	}
	if primary == nil {
		primary = &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	}
	t.AddPrimary(primary)
	for _, c := range cols {
		t.AddColumn(c)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		names := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			c, ok := columns[f]
			if !ok {
				return nil, fmt.Errorf("%s: index on unknown field %q", name, f)
			}
			names[i] = c
		}
		t.AddIndex(name+"_"+strings.Join(names, "_"), d.Unique, names)
	}
	return t, nil
}

func column(d *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Size:     int64(d.Size),
		Unique:   d.Unique,
		Nullable: d.Optional,
	}
	if d.StorageKey != "" {
		c.Name = d.StorageKey
	}
	for _, e := range d.Enums {
		c.Enums = append(c.Enums, e.V)
	}
	// Function defaults such as time.Now are applied on insert, not in DDL.
	if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
		c.Default = d.Default
	}
	return c
}
