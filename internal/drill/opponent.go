package drill

import (
	"fmt"

	"github.com/abhisek/chessdrill/internal/course"
)

// ScriptedMoveError reports an authored move the engine refused to play.
// The line cannot be trained past this point.
type ScriptedMoveError struct {
	LineID string
	Ply    int
	SAN    string
	Err    error
}

func (e *ScriptedMoveError) Error() string {
	return fmt.Sprintf("line %s: scripted move %d (%s): %v", e.LineID, e.Ply+1, e.SAN, e.Err)
}

func (e *ScriptedMoveError) Unwrap() error { return e.Err }

// Opponent plays the authored replies for the side the learner is not
// training.
type Opponent struct {
	v *Validator
}

// NewOpponent returns an opponent sharing the validator's cursor.
func NewOpponent(v *Validator) *Opponent {
	return &Opponent{v: v}
}

// ShouldMoveNow reports whether the side to move is the scripted side.
// Lines trainable from either side never get automatic replies.
func (o *Opponent) ShouldMoveNow(side course.Side) bool {
	color, ok := side.Color()
	if !ok {
		return false
	}
	v := o.v
	if v.line == nil || !v.cursor.Active || v.cursor.Index >= len(v.line.Moves) {
		return false
	}
	return v.engine.Turn() != color
}

// PlayNext applies the authored move at the cursor.
func (o *Opponent) PlayNext() (Verdict, error) {
	v := o.v
	if v.line == nil || !v.cursor.Active || v.cursor.Index >= len(v.line.Moves) {
		return Verdict{Inactive: true, Ply: v.cursor.Index}, nil
	}
	ply := v.cursor.Index
	san := v.line.Moves[ply]
	res, err := v.engine.ApplySAN(san)
	if err != nil {
		return Verdict{Ply: ply}, &ScriptedMoveError{LineID: v.line.ID, Ply: ply, SAN: san, Err: err}
	}
	v.pending = nil
	v.advance()
	return Verdict{Valid: true, Complete: !v.cursor.Active, Ply: ply, Move: res}, nil
}
