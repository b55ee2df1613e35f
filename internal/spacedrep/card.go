package spacedrep

import "time"

// Difficulty is the card's learning phase.
type Difficulty string

const (
	DifficultyNew      Difficulty = "new"
	DifficultyLearning Difficulty = "learning"
	DifficultyTesting  Difficulty = "testing"
)

// Card holds the review schedule and hint stage for one line.
type Card struct {
	ID           string     `json:"id"`
	Interval     int        `json:"interval"`
	Repetitions  int        `json:"repetitions"`
	EaseFactor   float64    `json:"easeFactor"`
	NextReviewAt time.Time  `json:"nextReviewAt"`
	Streak       int        `json:"streak"`
	Difficulty   Difficulty `json:"difficulty"`
	HintStage    int        `json:"hintStage"`
	LastReviewAt time.Time  `json:"lastReviewAt,omitzero"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// NewCard returns a fresh card, due immediately, at full hints.
func NewCard(id string, now time.Time) Card {
	return Card{
		ID:           id,
		Interval:     1,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
		Difficulty:   DifficultyNew,
		HintStage:    1,
		CreatedAt:    now,
	}
}

// IsDue returns true if the card is due for review (at or past the review date).
func (c *Card) IsDue(now time.Time) bool {
	return !now.Before(c.NextReviewAt)
}

// IsNew reports whether the card has never been scheduled.
func (c *Card) IsNew() bool {
	return c.Difficulty == DifficultyNew
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (c *Card) OverdueDays(now time.Time) float64 {
	if now.Before(c.NextReviewAt) {
		return 0
	}
	return now.Sub(c.NextReviewAt).Hours() / 24.0
}

// isOverdue reports whether the card has been due for longer than half its
// interval.
func (c *Card) isOverdue(now time.Time) bool {
	if !c.IsDue(now) {
		return false
	}
	graceHours := float64(c.Interval) * 0.5 * 24.0
	threshold := c.NextReviewAt.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewStatus describes a card's review status for display.
type ReviewStatus string

const (
	StatusNew       ReviewStatus = "new"
	StatusDue       ReviewStatus = "due"
	StatusOverdue   ReviewStatus = "overdue"
	StatusScheduled ReviewStatus = "scheduled"
)

// Status returns the review status for UI display.
func (c *Card) Status(now time.Time) ReviewStatus {
	switch {
	case c.IsNew():
		return StatusNew
	case c.isOverdue(now):
		return StatusOverdue
	case c.IsDue(now):
		return StatusDue
	}
	return StatusScheduled
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (c *Card) DaysUntilReview(now time.Time) int {
	if c.IsDue(now) {
		return 0
	}
	return int(c.NextReviewAt.Sub(now).Hours()/24.0) + 1
}
