package spacedrep

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrCorruptBlob is returned when stored progress is not a recognizable
// card collection at all.
var ErrCorruptBlob = errors.New("corrupt progress blob")

// CorruptCard describes one stored card that could not be read.
type CorruptCard struct {
	ID    string
	Index int
	Err   error
}

// DecodeReport summarizes a Decode call.
type DecodeReport struct {
	Loaded int
	// Migrated counts cards that needed fields filled in or clamped.
	Migrated int
	Corrupt  []CorruptCard
}

// Encode serializes every card as a JSON array of [id, card] pairs,
// sorted by id.
func (s *Scheduler) Encode() ([]byte, error) {
	cards := s.All()
	pairs := make([][2]any, len(cards))
	for i, c := range cards {
		pairs[i] = [2]any{c.ID, c}
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("encode cards: %w", err)
	}
	return b, nil
}

// Decode replaces the scheduler's cards with those in blob. It accepts the
// pair-array layout written by Encode and an object keyed by card id. Cards
// from older layouts are upgraded in place; cards that cannot be read are
// reported and skipped so Generate or Ensure recreates them.
func (s *Scheduler) Decode(blob []byte, now time.Time) (DecodeReport, error) {
	var report DecodeReport
	cards := make(map[string]*Card)

	add := func(idx int, key string, raw json.RawMessage) {
		c, migrated, err := decodeCard(key, raw, now)
		if err != nil {
			report.Corrupt = append(report.Corrupt, CorruptCard{ID: key, Index: idx, Err: err})
			return
		}
		if migrated {
			report.Migrated++
		}
		cards[c.ID] = c
	}

	trimmed := bytes.TrimSpace(blob)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return report, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		for i, entry := range entries {
			var pair []json.RawMessage
			if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
				report.Corrupt = append(report.Corrupt, CorruptCard{Index: i, Err: errors.New("entry is not an [id, card] pair")})
				continue
			}
			var key string
			if err := json.Unmarshal(pair[0], &key); err != nil {
				report.Corrupt = append(report.Corrupt, CorruptCard{Index: i, Err: fmt.Errorf("card id: %w", err)})
				continue
			}
			add(i, key, pair[1])
		}
	case trimmed[0] == '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return report, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			add(i, k, m[k])
		}
	default:
		return report, ErrCorruptBlob
	}

	s.cards = cards
	report.Loaded = len(cards)
	return report, nil
}

// cardRecord is the lenient on-disk shape. Numbers are floats so values
// written by other tools as 6.0 still load.
type cardRecord struct {
	ID           *string   `json:"id"`
	Interval     *float64  `json:"interval"`
	Repetitions  *float64  `json:"repetitions"`
	EaseFactor   *float64  `json:"easeFactor"`
	NextReviewAt *flexTime `json:"nextReviewAt"`
	Streak       *float64  `json:"streak"`
	Difficulty   *string   `json:"difficulty"`
	HintStage    *float64  `json:"hintStage"`
	LastReviewAt *flexTime `json:"lastReviewAt"`
	CreatedAt    *flexTime `json:"createdAt"`

	// Legacy keys, read when the current ones are absent.
	ReviewStage    *float64  `json:"reviewStage"`
	NextReviewDate *flexTime `json:"nextReviewDate"`
	LastReviewDate *flexTime `json:"lastReviewDate"`
}

func decodeCard(key string, raw json.RawMessage, now time.Time) (*Card, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false, errors.New("card is not an object")
	}
	var rec cardRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("card fields: %w", err)
	}

	id := key
	if id == "" && rec.ID != nil {
		id = *rec.ID
	}
	if id == "" {
		return nil, false, errors.New("card has no id")
	}

	migrated := false
	c := &Card{ID: id}

	intField := func(v *float64, def, lo, hi int) int {
		if v == nil || math.IsNaN(*v) {
			migrated = true
			return def
		}
		n := int(math.Round(*v))
		if n < lo {
			migrated = true
			return lo
		}
		if hi > 0 && n > hi {
			migrated = true
			return hi
		}
		return n
	}
	timeField := func(v *flexTime, def time.Time) time.Time {
		if v == nil || v.IsZero() {
			migrated = true
			return def
		}
		return v.Time
	}

	c.Interval = intField(rec.Interval, 1, 1, 0)
	c.Repetitions = intField(rec.Repetitions, 0, 0, 0)
	c.Streak = intField(rec.Streak, 0, 0, 0)

	stage := rec.HintStage
	if stage == nil {
		stage = rec.ReviewStage
	}
	c.HintStage = intField(stage, 1, 1, MaxHintStage)

	switch {
	case rec.EaseFactor == nil || math.IsNaN(*rec.EaseFactor):
		c.EaseFactor = DefaultEaseFactor
		migrated = true
	case *rec.EaseFactor < MinEaseFactor:
		c.EaseFactor = MinEaseFactor
		migrated = true
	default:
		c.EaseFactor = *rec.EaseFactor
	}

	switch d := Difficulty(deref(rec.Difficulty)); d {
	case DifficultyNew, DifficultyLearning, DifficultyTesting:
		c.Difficulty = d
	default:
		migrated = true
		c.Difficulty = DifficultyNew
		if c.Repetitions > 0 {
			c.Difficulty = DifficultyTesting
		}
	}

	next, last := rec.NextReviewAt, rec.LastReviewAt
	if next == nil && rec.NextReviewDate != nil {
		next = rec.NextReviewDate
		migrated = true
	}
	if last == nil && rec.LastReviewDate != nil {
		last = rec.LastReviewDate
		migrated = true
	}
	c.CreatedAt = timeField(rec.CreatedAt, now)
	c.NextReviewAt = timeField(next, now)
	if last != nil {
		c.LastReviewAt = last.Time
	}
	return c, migrated, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// flexTime reads RFC 3339 strings or epoch milliseconds.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}
