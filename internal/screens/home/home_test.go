package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/screens/drill"
	"github.com/abhisek/chessdrill/internal/screens/lines"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/store"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testCourse() *course.Course {
	return &course.Course{
		ID:          "test",
		Name:        "Test Course",
		PlayerColor: rules.White,
		Lines: []course.Line{
			{ID: "italian", Name: "Italian Game", Category: "Open", Moves: []string{"e4", "e5", "Nf3"}, Type: course.TypeTheory},
			{ID: "najdorf", Name: "Najdorf", Category: "Sicilian", Moves: []string{"e4", "c5"}, Type: course.TypeTheory},
		},
	}
}

// memProgress is an in-memory store.ProgressRepo.
type memProgress map[string][]byte

func (m memProgress) Get(_ context.Context, id string) ([]byte, error) {
	b, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (m memProgress) Put(_ context.Context, id string, data []byte) error {
	m[id] = data
	return nil
}

func (m memProgress) Delete(_ context.Context, id string) error {
	delete(m, id)
	return nil
}

func (m memProgress) List(context.Context) ([]store.ProgressRecord, error) {
	return nil, nil
}

func newHome(t *testing.T, opts Options) *HomeScreen {
	t.Helper()
	h := New(opts)
	h.now = func() time.Time { return now }
	if cmd := h.loadOverview(); cmd != nil {
		h.Update(cmd())
	}
	return h
}

func TestHome_MenuState(t *testing.T) {
	h := newHome(t, Options{Drill: drill.Options{Course: testCourse()}})

	disabled := map[string]bool{}
	badges := map[string]string{}
	for _, item := range h.menu.Items {
		disabled[item.Label] = item.Disabled
		badges[item.Label] = item.Badge
	}
	if !disabled[labelExercises] {
		t.Error("EXERCISES should be disabled without exercise lines")
	}
	if !disabled[labelHistory] {
		t.Error("HISTORY should be disabled without an event log")
	}
	if disabled[labelTheory] || disabled[labelReview] || disabled[labelLines] {
		t.Error("theory entries should be enabled")
	}
	// Fresh cards are due immediately.
	if badges[labelReview] != "2 due" {
		t.Errorf("REVIEW badge = %q, want %q", badges[labelReview], "2 due")
	}
	if h.mascot() != MascotIdle {
		t.Errorf("mascot = %d, want idle", h.mascot())
	}
}

func TestHome_NothingDue(t *testing.T) {
	c := testCourse()
	sched := spacedrep.NewScheduler(c.ID, spacedrep.Options{})
	sched.Generate([]string{"italian", "najdorf"}, now)
	for _, id := range []string{"italian", "najdorf"} {
		for sched.Card(id).Difficulty != spacedrep.DifficultyTesting {
			sched.Advance(id, now)
		}
	}
	repo := memProgress{}
	if err := sched.Save(context.Background(), repo); err != nil {
		t.Fatalf("save: %v", err)
	}

	h := newHome(t, Options{Drill: drill.Options{Course: c, Progress: repo}})
	if h.due != 0 {
		t.Errorf("due = %d, want 0", h.due)
	}
	for _, item := range h.menu.Items {
		if item.Label == labelReview && item.Badge != "" {
			t.Errorf("REVIEW badge = %q, want none", item.Badge)
		}
	}
	if h.mascot() != MascotCelebrating {
		t.Errorf("mascot = %d, want celebrating", h.mascot())
	}
	if got := h.stats().Next; got == "" {
		t.Error("expected the next review time")
	}
}

func TestHome_SelectLines(t *testing.T) {
	h := newHome(t, Options{Drill: drill.Options{Course: testCourse()}})

	// THEORY, (EXERCISES disabled), REVIEW, LINES
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected command on Enter")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*lines.LinesScreen); !ok {
		t.Errorf("pushed %T, want *lines.LinesScreen", push.Screen)
	}
}

func TestHome_Shortcut(t *testing.T) {
	h := newHome(t, Options{Drill: drill.Options{Course: testCourse()}})

	if _, cmd := h.Update(tea.KeyPressMsg{Code: 'h', Text: "h"}); cmd != nil {
		t.Error("HISTORY is disabled without an event log")
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'l', Text: "l"})
	if cmd == nil {
		t.Fatal("expected command on l")
	}
	if push, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected PushScreenMsg")
	} else if _, ok := push.Screen.(*lines.LinesScreen); !ok {
		t.Errorf("pushed %T, want *lines.LinesScreen", push.Screen)
	}
}

func TestHome_UpdateNote(t *testing.T) {
	h := newHome(t, Options{Drill: drill.Options{Course: testCourse()}})
	h.Update(updateMsg{Latest: "v1.2.0"})
	if view := h.View(120, 40); !strings.Contains(view, "New version v1.2.0") {
		t.Error("expected update note in view")
	}
}

func TestHome_NoCourse(t *testing.T) {
	h := newHome(t, Options{})
	if view := h.View(80, 24); !strings.Contains(view, "No course loaded") {
		t.Error("expected missing course notice")
	}
}

func TestNextLabel(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "1m"},
		{30 * time.Minute, "30m"},
		{5 * time.Hour, "5h"},
		{72 * time.Hour, "3d"},
	}
	for _, tt := range tests {
		if got := nextLabel(now.Add(tt.d), now); got != tt.want {
			t.Errorf("nextLabel(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestHome_AutoStart(t *testing.T) {
	h := New(Options{Drill: drill.Options{Course: testCourse()}, AutoStart: true})
	if cmd := h.Init(); cmd == nil {
		t.Fatal("expected init commands")
	}
	if cmd := New(Options{AutoStart: true}).Init(); cmd != nil {
		t.Error("auto start without a course should do nothing")
	}
}
