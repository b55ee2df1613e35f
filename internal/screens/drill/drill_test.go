package drill

import (
	"context"
	"slices"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/screens/summary"
	"github.com/abhisek/chessdrill/internal/store"
	"github.com/abhisek/chessdrill/internal/trainer"
)

func testCourse() *course.Course {
	return &course.Course{
		ID:          "test",
		Name:        "Test Course",
		PlayerColor: rules.White,
		Lines: []course.Line{
			{
				ID:       "italian",
				Name:     "Italian Game",
				Category: "Open",
				Moves:    []string{"e4", "e5", "Nf3", "Nc6", "Bc4"},
				Comments: []string{"", "", "Develop a knight", "", ""},
				Type:     course.TypeTheory,
				Side:     course.SideWhite,
			},
			{
				ID:       "sicilian",
				Name:     "Sicilian",
				Category: "Sicilian",
				Moves:    []string{"e4", "c5", "Nf3"},
				Type:     course.TypeTheory,
				Side:     course.SideWhite,
			},
		},
	}
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// started returns a drill screen past its start command.
func started(t *testing.T, opts Options) *DrillScreen {
	t.Helper()
	if opts.Course == nil {
		opts.Course = testCourse()
	}
	s := New(opts)
	if s.errMsg != "" {
		t.Fatalf("New() error: %s", s.errMsg)
	}
	s.Update(s.start()())
	if !s.started {
		t.Fatal("expected screen to be started")
	}
	flush(s)
	return s
}

// flush delivers every outstanding paced task in scheduling order.
func flush(s *DrillScreen) {
	for len(s.pacer.outstanding) > 0 {
		ids := make([]int, 0, len(s.pacer.outstanding))
		for id := range s.pacer.outstanding {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		s.Update(taskMsg{ID: ids[0], Task: s.pacer.outstanding[ids[0]]})
	}
}

func typeMove(s *DrillScreen, mv string) tea.Cmd {
	s.input.Model.SetValue(mv)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestDrillScreen_NoCourse(t *testing.T) {
	s := New(Options{})
	if s.errMsg == "" {
		t.Fatal("expected construction error without a course")
	}
	if s.HandlesEscape() {
		t.Error("error screen should let Esc pop it")
	}
	if view := s.View(80, 24); !strings.Contains(view, "Cannot start drill") {
		t.Error("expected error message in view")
	}
	_, cmd := s.Update(key('x'))
	if cmd == nil {
		t.Fatal("expected a command on key press")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestDrillScreen_Start(t *testing.T) {
	s := started(t, Options{})

	if got := s.Title(); got != "Italian Game" {
		t.Errorf("Title() = %q, want %q", got, "Italian Game")
	}
	if got := s.Status(); got != "Theory · 1/2" {
		t.Errorf("Status() = %q, want %q", got, "Theory · 1/2")
	}
	if s.cursor != "e1" {
		t.Errorf("cursor = %q, want e1", s.cursor)
	}
	if view := s.View(120, 30); !strings.Contains(view, "white to move") {
		t.Error("expected move prompt in view")
	}
}

// unreadableProgress holds a blob no decoder understands and records writes.
type unreadableProgress struct{ puts int }

func (p *unreadableProgress) Get(context.Context, string) ([]byte, error) {
	return []byte("not json"), nil
}

func (p *unreadableProgress) Put(context.Context, string, []byte) error {
	p.puts++
	return nil
}

func (p *unreadableProgress) Delete(context.Context, string) error { return nil }

func (p *unreadableProgress) List(context.Context) ([]store.ProgressRecord, error) { return nil, nil }

func TestDrillScreen_UnreadableProgress(t *testing.T) {
	repo := &unreadableProgress{}
	s := started(t, Options{Progress: repo})

	if s.errMsg != "" {
		t.Fatalf("errMsg = %q, want the drill to start", s.errMsg)
	}
	if !strings.Contains(s.status, "Saved progress is unreadable") {
		t.Errorf("status = %q, want unreadable progress warning", s.status)
	}
	if repo.puts != 0 {
		t.Errorf("progress written %d times, want none", repo.puts)
	}
}

func TestDrillScreen_StartAtLine(t *testing.T) {
	s := started(t, Options{LineID: "sicilian"})
	if got := s.Title(); got != "Sicilian" {
		t.Errorf("Title() = %q, want %q", got, "Sicilian")
	}
}

func TestDrillScreen_TypedMoves(t *testing.T) {
	s := started(t, Options{})

	typeMove(s, "e4")
	if s.status != "✓ e4" || s.tone != toneGood {
		t.Errorf("status = %q (tone %d), want ✓ e4", s.status, s.tone)
	}
	if len(s.pacer.outstanding) != 1 {
		t.Fatalf("expected the reply to be paced, got %d tasks", len(s.pacer.outstanding))
	}

	flush(s)
	if s.status != "Opponent played e5" {
		t.Errorf("status = %q, want opponent reply", s.status)
	}

	typeMove(s, "Nf3")
	if s.comment != "Develop a knight" {
		t.Errorf("comment = %q, want the line's comment", s.comment)
	}
	if got := s.trainer.Stats().CorrectMoves; got != 2 {
		t.Errorf("CorrectMoves = %d, want 2", got)
	}
}

func TestDrillScreen_WrongMove(t *testing.T) {
	s := started(t, Options{})

	typeMove(s, "d4")
	if s.tone != toneBad {
		t.Errorf("tone = %d, want toneBad", s.tone)
	}
	if !strings.Contains(s.status, "the line plays e4") {
		t.Errorf("status = %q, want the expected move in theory mode", s.status)
	}
	if got := s.trainer.Stats().Mistakes; got != 1 {
		t.Errorf("Mistakes = %d, want 1", got)
	}
}

func TestDrillScreen_Hint(t *testing.T) {
	s := started(t, Options{})
	s.Update(key('?'))
	if s.status != "Hint: e4" {
		t.Errorf("status = %q, want %q", s.status, "Hint: e4")
	}
}

func TestDrillScreen_CursorMove(t *testing.T) {
	s := started(t, Options{})

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace})
	if s.selected != "e2" {
		t.Fatalf("selected = %q, want e2", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace})

	if s.selected != "" {
		t.Errorf("selection should clear after moving, got %q", s.selected)
	}
	if got := s.trainer.Stats().CorrectMoves; got != 1 {
		t.Errorf("CorrectMoves = %d, want 1", got)
	}
}

func TestDrillScreen_SwitchMode(t *testing.T) {
	s := started(t, Options{})
	s.Update(key('M'))
	if got := s.trainer.Mode(); got != trainer.ModeExercises {
		t.Errorf("Mode() = %q, want exercises", got)
	}
	if s.idle == "" {
		t.Error("expected idle message: the course has no exercises")
	}
	if s.status != "Mode: Exercises" {
		t.Errorf("status = %q, want mode change notice", s.status)
	}
}

func TestDrillScreen_QuitShowsSummary(t *testing.T) {
	s := started(t, Options{})
	typeMove(s, "e4")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if !s.confirmQuit {
		t.Fatal("expected quit confirmation on Esc")
	}
	_, cmd := s.Update(key('y'))
	if cmd == nil {
		t.Fatal("expected a command after confirming")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replacement = %T, want *summary.SummaryScreen", msg.Screen)
	}
	if !s.ended {
		t.Error("expected session ended")
	}

	// A late reply tick must not reach the ended trainer.
	if _, cmd := s.Update(taskMsg{ID: 99}); cmd != nil {
		t.Error("expected no command after the session ended")
	}
}

func TestTickPacer_Cancel(t *testing.T) {
	p := newTickPacer()
	p.After(0, trainer.Task{Token: 1})
	cancel := p.After(0, trainer.Task{Token: 2})
	cancel()

	if p.drain() == nil {
		t.Error("expected queued ticks")
	}
	if p.drain() != nil {
		t.Error("second drain should be empty")
	}
	if !p.take(1) {
		t.Error("task 1 should be deliverable")
	}
	if p.take(1) {
		t.Error("task 1 should only be delivered once")
	}
	if p.take(2) {
		t.Error("canceled task 2 should be dropped")
	}
}

func TestStartsWithBlack(t *testing.T) {
	tests := []struct {
		turn  rules.Color
		plies int
		want  bool
	}{
		{rules.White, 0, false},
		{rules.Black, 1, false},
		{rules.White, 1, true},
		{rules.Black, 2, true},
	}
	for _, tt := range tests {
		if got := startsWithBlack(trainer.Board{Turn: tt.turn}, tt.plies); got != tt.want {
			t.Errorf("startsWithBlack(%s, %d) = %v, want %v", tt.turn, tt.plies, got, tt.want)
		}
	}
}
