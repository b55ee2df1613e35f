package trainer

import (
	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/rules"
)

// Brush colors used for hint shapes.
const (
	BrushGreen  = "green"
	BrushYellow = "yellow"
	BrushBlue   = "blue"
	BrushRed    = "red"
)

// Shape is an arrow (From and To set) or a square highlight (To empty).
type Shape struct {
	From  string
	To    string
	Brush string
}

// IsArrow reports whether the shape is an arrow.
func (s Shape) IsArrow() bool { return s.To != "" }

// plannedMove is an upcoming authored move resolved against the board.
type plannedMove struct {
	res     *rules.MoveResult
	mover   rules.Color
	learner bool
}

// previewMoves resolves up to n authored moves from the cursor by playing
// them on the engine and taking them back.
func (t *Trainer) previewMoves(n int) []plannedMove {
	sans := t.validator.Upcoming(n)
	if len(sans) == 0 {
		return nil
	}
	eng := t.validator.Engine()
	learner, colored := t.side().Color()

	var out []plannedMove
	for _, san := range sans {
		mover := eng.Turn()
		res, err := eng.ApplySAN(san)
		if err != nil {
			break
		}
		out = append(out, plannedMove{res: res, mover: mover, learner: !colored || mover == learner})
	}
	for range out {
		eng.Undo()
	}
	return out
}

// arrowShapes draws the upcoming moves: green for the learner's next move,
// yellow for the learner's later moves, blue for replies, and a red square
// on every capture target.
func arrowShapes(moves []plannedMove) []Shape {
	var shapes []Shape
	firstLearner := true
	for _, m := range moves {
		brush := BrushBlue
		if m.learner {
			brush = BrushYellow
			if firstLearner {
				brush = BrushGreen
				firstLearner = false
			}
		}
		shapes = append(shapes, Shape{From: m.res.From, To: m.res.To, Brush: brush})
		if m.res.Capture {
			shapes = append(shapes, Shape{From: m.res.To, Brush: BrushRed})
		}
	}
	return shapes
}

func annotationShapes(a *course.Annotations) []Shape {
	if a.Empty() {
		return nil
	}
	var shapes []Shape
	for _, ar := range a.Arrows {
		shapes = append(shapes, Shape{From: ar.From, To: ar.To, Brush: ar.Color})
	}
	for _, h := range a.Highlights {
		shapes = append(shapes, Shape{From: h.Square, Brush: h.Color})
	}
	return shapes
}

// Shapes returns what the board should draw for the current position. Hints
// only show while the learner is to move. Theory mode shows the upcoming
// moves and the line's authored annotations; review mode fades with the
// card's hint stage; exercises show only a hint the learner asked for.
func (t *Trainer) Shapes() []Shape {
	line := t.validator.Line()
	if line == nil {
		return nil
	}

	var shapes []Shape
	if t.mode == ModeTheory {
		shapes = append(shapes, annotationShapes(line.Annotations)...)
	}
	if !t.learnerToMove() {
		return shapes
	}

	if t.revealed != nil && t.revealed.ply == t.validator.Cursor().Index {
		return append(shapes, Shape{From: t.revealed.from, To: t.revealed.to, Brush: BrushGreen})
	}

	stage := 0
	switch t.mode {
	case ModeTheory:
		stage = 1
	case ModeReview:
		if t.active != nil {
			stage = t.active.Card.HintStage
		}
	}

	switch stage {
	case 1:
		shapes = append(shapes, arrowShapes(t.previewMoves(t.cfg.MaxHintMoves))...)
	case 2:
		if next := t.previewMoves(1); len(next) == 1 {
			shapes = append(shapes, Shape{From: next[0].res.From, Brush: BrushGreen})
		}
	}
	return shapes
}
