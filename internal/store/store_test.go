package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/chessdrill/ent/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil {
		t.Fatal("expected non-nil driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"progress", "session_events", "review_events", "hint_events", "llm_request_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	for _, index := range []string{
		"review_events_course_id_line_id",
		"hint_events_session_id",
		"session_events_action_course_id",
		"llm_request_events_purpose_success",
	} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&name)
		if err != nil {
			t.Errorf("index %s: %v", index, err)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := migrate(context.Background(), s.Driver()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSchemaTable(t *testing.T) {
	progress, err := schemaTable(tableProgress, entschema.Progress{})
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress.PrimaryKey) != 1 || progress.PrimaryKey[0].Name != "course_id" {
		t.Errorf("progress primary key = %+v, want course_id", progress.PrimaryKey)
	}
	if c, ok := progress.Column("updated_at"); !ok || c.Default != nil {
		t.Errorf("updated_at column = %+v, want no DDL default", c)
	}

	sessions, err := schemaTable(tableSessionEvents, entschema.SessionEvent{})
	if err != nil {
		t.Fatalf("session events: %v", err)
	}
	id := sessions.PrimaryKey[0]
	if id.Name != "id" || !id.Increment || id.Type != field.TypeInt {
		t.Errorf("session events key = %+v, want auto-increment id", id)
	}
	action, ok := sessions.Column("action")
	if !ok || len(action.Enums) != 2 {
		t.Errorf("action column = %+v, want start/end enum", action)
	}
	seq, ok := sessions.Column("sequence")
	if !ok || !seq.Unique {
		t.Errorf("sequence column = %+v, want unique", seq)
	}
	if mode, ok := sessions.Column("mode"); !ok || mode.Default != "theory" {
		t.Errorf("mode column = %+v, want default theory", mode)
	}

	var names []string
	for _, idx := range sessions.Indexes {
		names = append(names, idx.Name)
		if len(idx.Columns) == 0 {
			t.Errorf("index %s has no linked columns", idx.Name)
		}
	}
	for _, want := range []string{"session_events_timestamp", "session_events_session_id", "session_events_action_course_id"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("indexes %v missing %s", names, want)
		}
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"/tmp/a.db", "/tmp/a.db?_pragma=foreign_keys(1)"},
		{"file:x?mode=memory", "file:x?mode=memory&_pragma=foreign_keys(1)"},
		{"file:x?_pragma=foreign_keys(1)", "file:x?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		if got := withForeignKeys(tt.dsn); got != tt.want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestProgressPutGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "italian"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get (empty) error = %v, want ErrNotFound", err)
	}

	if err := repo.Put(ctx, "italian", []byte(`[["a",{}]]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "italian", []byte(`[["b",{}]]`)); err != nil {
		t.Fatalf("put (overwrite): %v", err)
	}

	got, err := repo.Get(ctx, "italian")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[["b",{}]]` {
		t.Errorf("data = %s, want overwritten blob", got)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].CourseID != "italian" || list[0].Size != len(got) {
		t.Errorf("list = %+v", list)
	}
}

func TestProgressDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if err := repo.Put(ctx, "a", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Put(ctx, "b", []byte("y")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v", err)
	}
	if _, err := repo.Get(ctx, "b"); err != nil {
		t.Errorf("other course deleted: %v", err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestSessionSummaries(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, action := range []string{"start", "end", "start", "end"} {
		err := repo.AppendSessionEvent(ctx, SessionEventData{
			SessionID:    fmt.Sprintf("s%d", i/2),
			CourseID:     "italian",
			Action:       action,
			Mode:         "spaced_repetition",
			LinesStudied: i,
			CorrectMoves: 10 * i,
			DurationSecs: 60,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QuerySessionSummaries(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("summaries = %d, want 2", len(got))
	}
	if got[0].SessionID != "s1" || got[0].LinesStudied != 3 || got[0].CorrectMoves != 30 {
		t.Errorf("newest summary = %+v", got[0])
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	limited, err := repo.QuerySessionSummaries(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited summaries = %d, want 1", len(limited))
	}
}

func TestReviewEventsAndAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()
	next := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	events := []ReviewEventData{
		{SessionID: "s", CourseID: "c", LineID: "l1", Mode: "spaced_repetition", Outcome: "demoted", Mistakes: 1},
		{SessionID: "s", CourseID: "c", LineID: "l1", Mode: "spaced_repetition", Outcome: "completed", Mistakes: 1},
		{SessionID: "s", CourseID: "c", LineID: "l1", Mode: "spaced_repetition", Outcome: "reviewed", HintStage: 1, IntervalDays: 6, EaseFactor: 2.6, NextReviewAt: next},
		{SessionID: "s", CourseID: "other", LineID: "l1", Mode: "theory", Outcome: "completed"},
	}
	for i, e := range events {
		if err := repo.AppendReviewEvent(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QueryReviewEvents(ctx, "c", QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("events = %d, want 3", len(got))
	}
	if got[0].Outcome != "reviewed" || got[0].IntervalDays != 6 || !got[0].NextReviewAt.Equal(next) {
		t.Errorf("newest event = %+v", got[0])
	}
	if !got[1].NextReviewAt.IsZero() {
		t.Errorf("expected zero next review for completed event, got %v", got[1].NextReviewAt)
	}
	if got[0].Sequence <= got[1].Sequence {
		t.Errorf("sequence not descending: %d <= %d", got[0].Sequence, got[1].Sequence)
	}

	acc, n, err := repo.LineAccuracy(ctx, "c", "l1")
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if n != 2 || acc != 0.5 {
		t.Errorf("accuracy = %f over %d, want 0.5 over 2", acc, n)
	}

	acc, n, err = repo.LineAccuracy(ctx, "c", "unknown")
	if err != nil || n != 0 || acc != 0 {
		t.Errorf("accuracy(unknown) = %f, %d, %v", acc, n, err)
	}
}

func TestHintEvent(t *testing.T) {
	s := openTestStore(t)
	err := s.EventRepo().AppendHintEvent(context.Background(), HintEventData{
		SessionID: "s", CourseID: "c", LineID: "l", Mode: "theory", Ply: 2, ExpectedMove: "Nf3", Revealed: "g1f3",
	})
	if err != nil {
		t.Fatalf("append hint: %v", err)
	}
	var mode, revealed string
	var stage int
	err = s.DB().QueryRow("SELECT mode, revealed, hint_stage FROM hint_events WHERE session_id = 's'").Scan(&mode, &revealed, &stage)
	if err != nil {
		t.Fatal(err)
	}
	if mode != "theory" || revealed != "g1f3" || stage != 0 {
		t.Errorf("hint event = %q %q %d", mode, revealed, stage)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := []LLMRequestEventData{
		{Provider: "anthropic", Model: "m1", Purpose: "name-variation", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "anthropic", Model: "m1", Purpose: "name-variation", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: false, ErrorKind: "truncated", ErrorMessage: "boom"},
		{Provider: "openai", Model: "m2", Purpose: "other", InputTokens: 5, OutputTokens: 5, LatencyMs: 10, Success: true},
	}
	for i, d := range data {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 || events[0].Model != "m2" {
		t.Fatalf("events = %+v", events)
	}

	oldest := events[2]
	got, err := repo.GetLLMEvent(ctx, oldest.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.RequestBody != "req" || got.ResponseBody != "resp" || !got.Success {
		t.Errorf("get = %+v", got)
	}
	if events[1].ErrorKind != "truncated" || events[1].Success {
		t.Errorf("failed event = %+v", events[1])
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("get missing = %+v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("usage by purpose = %+v", byPurpose)
	}
	nv := byPurpose[0]
	if nv.Purpose != "name-variation" || nv.Calls != 2 || nv.InputTokens != 150 || nv.OutputTokens != 30 || nv.AvgLatencyMs != 200 {
		t.Errorf("name-variation usage = %+v", nv)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "m2" || byModel[1].Calls != 1 {
		t.Errorf("usage by model = %+v", byModel)
	}
}
