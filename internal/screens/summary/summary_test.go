package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/trainer"
)

func testSummary() *trainer.Summary {
	return &trainer.Summary{
		SessionID: "sess-1",
		CourseID:  "italian",
		Mode:      trainer.ModeReview,
		Duration:  15 * time.Minute,
		Stats: trainer.Stats{
			LinesStudied:   4,
			LinesCompleted: 3,
			PerfectLines:   2,
			CorrectMoves:   18,
			Mistakes:       2,
			Hints:          1,
		},
		Accuracy: 0.9,
		Cards: map[spacedrep.Difficulty]int{
			spacedrep.DifficultyNew:      1,
			spacedrep.DifficultyLearning: 2,
			spacedrep.DifficultyTesting:  3,
		},
		DueNow: 2,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary())
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSummary())
	view := s.View(80, 24)
	for _, want := range []string{"Session complete!", "Review", "15:00", "3 completed", "2 due now", "Testing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_NextDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sum := testSummary()
	sum.DueNow = 0
	sum.NextDue = now.Add(3 * time.Hour)

	s := New(sum)
	s.now = func() time.Time { return now }
	if view := s.View(80, 24); !strings.Contains(view, "Next review in 3h") {
		t.Error("expected next review time in view")
	}
}

func TestSummaryScreen_NilSummary(t *testing.T) {
	if view := New(nil).View(80, 24); view != "" {
		t.Errorf("expected empty view, got %q", view)
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testSummary())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected navigation command on Enter")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{95 * time.Second, "1:35"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestUntil(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		after time.Duration
		want  string
	}{
		{-time.Minute, "now"},
		{10 * time.Minute, "in 11m"},
		{5 * time.Hour, "in 5h"},
		{30 * time.Hour, "tomorrow"},
		{72 * time.Hour, "in 3 days"},
	}
	for _, tt := range tests {
		if got := Until(now.Add(tt.after), now); got != tt.want {
			t.Errorf("Until(+%v) = %q, want %q", tt.after, got, tt.want)
		}
	}
}
