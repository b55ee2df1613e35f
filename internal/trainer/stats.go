package trainer

import (
	"time"

	"github.com/abhisek/chessdrill/internal/spacedrep"
)

// Stats counts what happened since the trainer started or ResetStats.
type Stats struct {
	Started        time.Time
	LinesStudied   int // distinct lines loaded
	LinesCompleted int
	PerfectLines   int // completed without help or mistakes
	CorrectMoves   int
	Mistakes       int
	Hints          int
	Reviews        int // completions that rescheduled a card
}

// Accuracy is the share of submitted moves that were correct.
func (s Stats) Accuracy() float64 {
	total := s.CorrectMoves + s.Mistakes
	if total == 0 {
		return 0
	}
	return float64(s.CorrectMoves) / float64(total)
}

// attempt tracks one pass through a line.
type attempt struct {
	mistakes int
	hints    int
	demoted  bool
	// stepped is set when an authored move was skipped over instead of played.
	stepped bool
}

func (a attempt) clean() bool { return a.mistakes == 0 && a.hints == 0 && !a.stepped }

// Summary holds the data displayed when a session ends.
type Summary struct {
	SessionID string
	CourseID  string
	Mode      Mode
	Duration  time.Duration
	Stats     Stats
	Accuracy  float64
	Cards     map[spacedrep.Difficulty]int
	DueNow    int
	// NextDue is the earliest upcoming review, zero when nothing is scheduled.
	NextDue time.Time
}

// Summary builds the end-of-session summary.
func (t *Trainer) Summary() *Summary {
	now := t.now()
	s := &Summary{
		SessionID: t.sessionID,
		CourseID:  t.course.ID,
		Mode:      t.mode,
		Duration:  now.Sub(t.stats.Started),
		Stats:     t.stats,
		Accuracy:  t.stats.Accuracy(),
		Cards:     t.sched.Counts(),
	}
	scope := t.reviewScope()
	s.DueNow = t.sched.DueCount(now, scope)
	s.NextDue = t.nextScheduled(now, scope)
	return s
}

// nextScheduled returns the earliest review date after now among cards in
// scope.
func (t *Trainer) nextScheduled(now time.Time, scope func(string) bool) time.Time {
	var next time.Time
	for _, c := range t.sched.All() {
		if !scope(c.ID) || !c.NextReviewAt.After(now) {
			continue
		}
		if next.IsZero() || c.NextReviewAt.Before(next) {
			next = c.NextReviewAt
		}
	}
	return next
}
