// Package drill walks a learner through a single line: it checks each
// submitted move against the authored sequence and plays the scripted
// replies for the other side.
package drill

import (
	"errors"
	"fmt"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/rules"
)

// ErrNoPendingPromotion is returned by Promote when no promotion is waiting.
var ErrNoPendingPromotion = errors.New("no pending promotion")

// ErrNoLine is returned when an operation needs a loaded line.
var ErrNoLine = errors.New("no line loaded")

// Cursor tracks how far into a line the board is.
type Cursor struct {
	LineID string
	Index  int
	Active bool
}

// Verdict is the outcome of one submitted move.
type Verdict struct {
	Valid            bool
	Complete         bool
	Inactive         bool
	PendingPromotion bool
	// Expected is the authored SAN at the cursor when the move was wrong.
	Expected string
	// Ply is the index of the move in the line that was judged.
	Ply  int
	Move *rules.MoveResult
}

// Progress summarizes position within a line.
type Progress struct {
	Current  int
	Total    int
	Percent  int
	Complete bool
}

type promotion struct {
	from, to string
}

// Validator owns the cursor for the loaded line and the engine position it
// corresponds to.
type Validator struct {
	engine  rules.Engine
	line    *course.Line
	cursor  Cursor
	pending *promotion
}

// NewValidator returns a validator driving the given engine.
func NewValidator(engine rules.Engine) *Validator {
	return &Validator{engine: engine}
}

// Engine exposes the underlying engine for read-only queries.
func (v *Validator) Engine() rules.Engine { return v.engine }

// Load resets the engine to the line's start and rewinds the cursor.
// startFEN wins over the line's own start; both empty means the standard
// position.
func (v *Validator) Load(line *course.Line, startFEN string) error {
	if line == nil {
		return ErrNoLine
	}
	fen := startFEN
	if fen == "" {
		fen = line.StartFEN
	}
	if err := v.engine.LoadPosition(fen); err != nil {
		return fmt.Errorf("load line %s: %w", line.ID, err)
	}
	v.line = line
	v.pending = nil
	v.cursor = Cursor{LineID: line.ID, Index: 0, Active: len(line.Moves) > 0}
	return nil
}

// Clear forgets the loaded line.
func (v *Validator) Clear() {
	v.line = nil
	v.pending = nil
	v.cursor = Cursor{}
}

// Submit judges a learner move. A wrong but legal move is taken back so the
// board stays on the authored line.
func (v *Validator) Submit(from, to string, promo rules.Piece) (Verdict, error) {
	if v.line == nil || !v.cursor.Active || v.cursor.Index >= len(v.line.Moves) {
		return Verdict{Inactive: true, Ply: v.cursor.Index}, nil
	}
	if promo == rules.NoPiece && v.engine.IsPromotion(from, to) && v.isLegal(from, to) {
		v.pending = &promotion{from: from, to: to}
		return Verdict{PendingPromotion: true, Ply: v.cursor.Index}, nil
	}
	v.pending = nil

	res, err := v.engine.ApplyMove(from, to, promo)
	if err != nil {
		return Verdict{Ply: v.cursor.Index}, err
	}

	ply := v.cursor.Index
	expected := v.line.Moves[ply]
	if !rules.SameMove(res.SAN, expected) {
		v.engine.Undo()
		return Verdict{Expected: expected, Ply: ply, Move: res}, nil
	}
	v.advance()
	return Verdict{Valid: true, Complete: !v.cursor.Active, Ply: ply, Move: res}, nil
}

// Promote completes a move that was waiting for a promotion piece.
func (v *Validator) Promote(piece rules.Piece) (Verdict, error) {
	if v.pending == nil {
		return Verdict{}, ErrNoPendingPromotion
	}
	p := *v.pending
	v.pending = nil
	return v.Submit(p.from, p.to, piece)
}

// CancelPromotion drops a pending promotion without touching the board.
func (v *Validator) CancelPromotion() {
	v.pending = nil
}

// PendingPromotion reports the squares of a waiting promotion.
func (v *Validator) PendingPromotion() (from, to string, ok bool) {
	if v.pending == nil {
		return "", "", false
	}
	return v.pending.from, v.pending.to, true
}

// StepForward plays the next authored move without judging it.
func (v *Validator) StepForward() bool {
	if v.line == nil || v.cursor.Index >= len(v.line.Moves) {
		return false
	}
	if _, err := v.engine.ApplySAN(v.line.Moves[v.cursor.Index]); err != nil {
		return false
	}
	v.pending = nil
	v.advance()
	return true
}

// StepBackward takes back one ply. Stepping back from the end reopens the
// line for input.
func (v *Validator) StepBackward() bool {
	if v.line == nil || v.cursor.Index == 0 {
		return false
	}
	if !v.engine.Undo() {
		return false
	}
	v.pending = nil
	v.cursor.Index--
	v.cursor.Active = true
	return true
}

// Cursor returns a copy of the cursor.
func (v *Validator) Cursor() Cursor { return v.cursor }

// Line returns the loaded line, or nil.
func (v *Validator) Line() *course.Line { return v.line }

// Expected returns the authored move at the cursor.
func (v *Validator) Expected() (string, bool) {
	if v.line == nil || v.cursor.Index >= len(v.line.Moves) {
		return "", false
	}
	return v.line.Moves[v.cursor.Index], true
}

// Upcoming returns up to n authored moves starting at the cursor.
func (v *Validator) Upcoming(n int) []string {
	if v.line == nil || n <= 0 {
		return nil
	}
	end := min(v.cursor.Index+n, len(v.line.Moves))
	if v.cursor.Index >= end {
		return nil
	}
	return v.line.Moves[v.cursor.Index:end]
}

func (v *Validator) Progress() Progress {
	if v.line == nil {
		return Progress{}
	}
	total := len(v.line.Moves)
	p := Progress{Current: v.cursor.Index, Total: total}
	if total > 0 {
		p.Percent = v.cursor.Index * 100 / total
	}
	p.Complete = total > 0 && v.cursor.Index >= total
	return p
}

func (v *Validator) advance() {
	v.cursor.Index++
	if v.cursor.Index >= len(v.line.Moves) {
		v.cursor.Active = false
	}
}

func (v *Validator) isLegal(from, to string) bool {
	for _, d := range v.engine.LegalDestinations(from) {
		if d == to {
			return true
		}
	}
	return false
}
