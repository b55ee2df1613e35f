package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/abhisek/chessdrill/internal/store"
)

// Outcome reports what a successful completion did to a card.
type Outcome struct {
	Card Card
	// StageAdvanced is set when only the hint stage moved up.
	StageAdvanced bool
	// Reviewed is set when the completion rescheduled the card.
	Reviewed bool
}

// Options configures a Scheduler.
type Options struct {
	RelearnDelay time.Duration
	Logger       *slog.Logger
}

// Scheduler manages the review cards of one course.
type Scheduler struct {
	courseID     string
	cards        map[string]*Card
	relearnDelay time.Duration
	logger       *slog.Logger
}

// NewScheduler creates an empty scheduler for a course.
func NewScheduler(courseID string, opts Options) *Scheduler {
	s := &Scheduler{
		courseID:     courseID,
		cards:        make(map[string]*Card),
		relearnDelay: opts.RelearnDelay,
		logger:       opts.Logger,
	}
	if s.relearnDelay <= 0 {
		s.relearnDelay = DefaultRelearnDelay
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// CourseID returns the course the cards belong to.
func (s *Scheduler) CourseID() string { return s.courseID }

// Generate creates cards for ids that have none. Existing progress is never
// touched. Returns the number of cards created.
func (s *Scheduler) Generate(ids []string, now time.Time) int {
	created := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.cards[id]; ok {
			continue
		}
		c := NewCard(id, now)
		s.cards[id] = &c
		created++
	}
	return created
}

// Ensure returns the card for id, creating it if needed.
func (s *Scheduler) Ensure(id string, now time.Time) Card {
	if c, ok := s.cards[id]; ok {
		return *c
	}
	c := NewCard(id, now)
	s.cards[id] = &c
	return c
}

// Card returns the stored card for id. An untracked id yields a transient
// stage-1 card that is not stored.
func (s *Scheduler) Card(id string) Card {
	if c, ok := s.cards[id]; ok {
		return *c
	}
	return Card{ID: id, HintStage: 1, Interval: 1, EaseFactor: DefaultEaseFactor, Difficulty: DifficultyNew}
}

// Has reports whether id is tracked.
func (s *Scheduler) Has(id string) bool {
	_, ok := s.cards[id]
	return ok
}

// Demote records a mistake: the card restarts at full hints and comes back
// after the relearn delay. Untracked ids are ignored.
func (s *Scheduler) Demote(id string, now time.Time) (Card, bool) {
	c, ok := s.cards[id]
	if !ok {
		return Card{}, false
	}
	c.Streak = 0
	c.Repetitions = 0
	c.Interval = 1
	c.Difficulty = DifficultyLearning
	c.HintStage = 1
	c.EaseFactor = UpdateEase(c.EaseFactor, QualityFailed)
	c.NextReviewAt = now.Add(s.relearnDelay)
	s.logger.Debug("card demoted", "card", id, "next", c.NextReviewAt)
	return *c, true
}

// Advance records a mistake-free completion. Below the last hint stage this
// only raises the stage; at the last stage it is a full review.
func (s *Scheduler) Advance(id string, now time.Time) Outcome {
	c, ok := s.cards[id]
	if !ok {
		return Outcome{}
	}
	if c.HintStage < MaxHintStage {
		c.HintStage++
		s.logger.Debug("card stage advanced", "card", id, "stage", c.HintStage)
		return Outcome{Card: *c, StageAdvanced: true}
	}

	c.Interval, c.Difficulty = nextInterval(c)
	c.Repetitions++
	c.Streak++
	c.EaseFactor = UpdateEase(c.EaseFactor, QualityPerfect)
	c.NextReviewAt = now.AddDate(0, 0, c.Interval)
	c.LastReviewAt = now
	c.HintStage = 1
	s.logger.Debug("card reviewed", "card", id, "interval", c.Interval, "ease", c.EaseFactor)
	return Outcome{Card: *c, Reviewed: true}
}

// NextDue returns the card to review next among those scope accepts. New
// cards come first, then the earliest due date, then id. A nil scope accepts
// every card.
func (s *Scheduler) NextDue(now time.Time, scope func(id string) bool) *Card {
	due := s.due(now, scope)
	if len(due) == 0 {
		return nil
	}
	c := *due[0]
	return &c
}

// DueCount returns how many cards in scope are due.
func (s *Scheduler) DueCount(now time.Time, scope func(id string) bool) int {
	return len(s.due(now, scope))
}

func (s *Scheduler) due(now time.Time, scope func(id string) bool) []*Card {
	var due []*Card
	for id, c := range s.cards {
		if scope != nil && !scope(id) {
			continue
		}
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if a.IsNew() != b.IsNew() {
			return a.IsNew()
		}
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		return a.ID < b.ID
	})
	return due
}

// Counts returns the number of cards per difficulty.
func (s *Scheduler) Counts() map[Difficulty]int {
	counts := map[Difficulty]int{
		DifficultyNew:      0,
		DifficultyLearning: 0,
		DifficultyTesting:  0,
	}
	for _, c := range s.cards {
		counts[c.Difficulty]++
	}
	return counts
}

// All returns copies of every card, sorted by id.
func (s *Scheduler) All() []Card {
	out := make([]Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reset drops every card.
func (s *Scheduler) Reset() {
	s.cards = make(map[string]*Card)
}

// Load replaces the cards with the course's stored progress. A missing blob
// leaves the scheduler empty. Corrupt cards are reported and skipped.
func (s *Scheduler) Load(ctx context.Context, repo store.ProgressRepo) (DecodeReport, error) {
	blob, err := repo.Get(ctx, s.courseID)
	if errors.Is(err, store.ErrNotFound) {
		s.Reset()
		return DecodeReport{}, nil
	}
	if err != nil {
		return DecodeReport{}, fmt.Errorf("load progress: %w", err)
	}
	report, err := s.Decode(blob, time.Now())
	if err != nil {
		return report, fmt.Errorf("load progress: %w", err)
	}
	for _, c := range report.Corrupt {
		s.logger.Warn("dropped corrupt card", "course", s.courseID, "card", c.ID, "error", c.Err)
	}
	return report, nil
}

// Save writes all cards for the course.
func (s *Scheduler) Save(ctx context.Context, repo store.ProgressRepo) error {
	blob, err := s.Encode()
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	if err := repo.Put(ctx, s.courseID, blob); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Purge resets the scheduler and deletes the course's stored progress.
func (s *Scheduler) Purge(ctx context.Context, repo store.ProgressRepo) error {
	s.Reset()
	if err := repo.Delete(ctx, s.courseID); err != nil {
		return fmt.Errorf("purge progress: %w", err)
	}
	return nil
}
