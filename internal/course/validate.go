package course

import (
	"fmt"

	"github.com/abhisek/chessdrill/internal/rules"
)

// Problem describes a line dropped during validation.
type Problem struct {
	LineID string
	Name   string
	Ply    int // 0-based index of the failing move, -1 for position errors
	Move   string
	Err    error
}

func (p Problem) Error() string {
	if p.Ply < 0 {
		return fmt.Sprintf("line %q (%s): %v", p.Name, p.LineID, p.Err)
	}
	return fmt.Sprintf("line %q (%s): move %d %q: %v", p.Name, p.LineID, p.Ply+1, p.Move, p.Err)
}

func (p Problem) Unwrap() error { return p.Err }

// Validate replays every line from its start position and removes the ones
// that do not replay legally. It returns the dropped lines, and ErrNoLines if
// nothing survives.
func Validate(c *Course) ([]Problem, error) {
	return ValidateWith(c, rules.NewEngine())
}

// ValidateWith is Validate using the given engine.
func ValidateWith(c *Course, eng rules.Engine) ([]Problem, error) {
	var problems []Problem
	kept := c.Lines[:0]
	for i := range c.Lines {
		l := c.Lines[i]
		if p, ok := replay(c, &l, eng); !ok {
			problems = append(problems, p)
			continue
		}
		kept = append(kept, l)
	}
	c.Lines = kept
	if len(c.Lines) == 0 {
		return problems, ErrNoLines
	}
	return problems, nil
}

func replay(c *Course, l *Line, eng rules.Engine) (Problem, bool) {
	p := Problem{LineID: l.ID, Name: l.Name, Ply: -1}
	if len(l.Moves) == 0 {
		p.Err = fmt.Errorf("no moves")
		return p, false
	}
	if err := eng.LoadPosition(c.StartFor(l)); err != nil {
		p.Err = err
		return p, false
	}
	for i, san := range l.Moves {
		if _, err := eng.ApplySAN(san); err != nil {
			p.Ply = i
			p.Move = san
			p.Err = err
			return p, false
		}
	}
	return p, true
}
