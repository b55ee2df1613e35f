package spacedrep

import (
	"math"
	"time"
)

// DefaultEaseFactor is the SM-2 starting ease.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the SM-2 floor for the ease factor.
const MinEaseFactor = 1.3

// MaxHintStage is the hint stage at which a completion counts as a review.
// Stage 1 shows full hints, stage 2 the origin square, stage 3 nothing.
const MaxHintStage = 3

// Quality grades on the SM-2 0..5 scale.
const (
	QualityPerfect = 5
	QualityFailed  = 1
)

// LearningIntervalDays and GraduatingIntervalDays are the first two SM-2
// intervals.
const (
	LearningIntervalDays   = 1
	GraduatingIntervalDays = 6
)

// DefaultRelearnDelay is how soon a demoted card comes back.
const DefaultRelearnDelay = 10 * time.Minute

// UpdateEase applies the SM-2 ease adjustment for a response of quality q.
func UpdateEase(ef float64, q int) float64 {
	d := float64(5 - q)
	ef += 0.1 - d*(0.08+d*0.02)
	return max(ef, MinEaseFactor)
}

// nextInterval returns the interval in days after a successful review.
func nextInterval(c *Card) (int, Difficulty) {
	switch {
	case c.Repetitions == 0:
		return LearningIntervalDays, DifficultyLearning
	case c.Difficulty == DifficultyLearning || c.Difficulty == DifficultyNew:
		return GraduatingIntervalDays, DifficultyTesting
	}
	return max(1, int(math.Round(float64(c.Interval)*c.EaseFactor))), DifficultyTesting
}
