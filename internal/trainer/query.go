package trainer

import (
	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/drill"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/spacedrep"
)

// Board is what a board widget needs to draw the position and accept input.
type Board struct {
	FEN         string
	Orientation rules.Color
	Turn        rules.Color
	// Movable is the color the learner may move now, empty when input is
	// closed.
	Movable  rules.Color
	Dests    map[string][]string
	Check    bool
	LastMove *rules.MoveResult
}

// Progress describes where the session is.
type Progress struct {
	Mode      Mode
	Category  string
	LineIndex int
	LineCount int
	Line      drill.Progress
	Cursor    drill.Cursor
}

func (t *Trainer) Mode() Mode { return t.mode }
func (t *Trainer) Category() string { return t.category }
func (t *Trainer) LineIndex() int { return t.lineIndex }
func (t *Trainer) Course() *course.Course { return t.course }
func (t *Trainer) SessionID() string { return t.sessionID }
func (t *Trainer) Config() Config { return t.cfg }
func (t *Trainer) Stats() Stats { return t.stats }
func (t *Trainer) CurrentLine() *course.Line { return t.validator.Line() }

// Scheduler exposes the review cards for read-only views.
func (t *Trainer) Scheduler() *spacedrep.Scheduler { return t.sched }

// Categories returns the categories offered in the current mode.
func (t *Trainer) Categories() []string {
	return course.Categories(t.modeLines())
}

// Lines returns the trainable lines of the current mode and category.
func (t *Trainer) Lines() []*course.Line {
	return course.FilterCategory(t.modeLines(), t.category)
}

// ActiveCard returns the review item being drilled, or nil outside review
// mode.
func (t *Trainer) ActiveCard() *ReviewItem {
	if t.active == nil {
		return nil
	}
	item := *t.active
	return &item
}

// FailedLines returns the lines found untrainable this session and why.
func (t *Trainer) FailedLines() map[string]error {
	out := make(map[string]error, len(t.failed))
	for id, err := range t.failed {
		out[id] = err
	}
	return out
}

// PlayedMoves returns the authored moves up to the cursor.
func (t *Trainer) PlayedMoves() []string {
	line := t.validator.Line()
	if line == nil {
		return nil
	}
	return line.Moves[:t.validator.Cursor().Index]
}

// Board snapshots the position.
func (t *Trainer) Board() Board {
	eng := t.validator.Engine()
	b := Board{
		FEN:         eng.FEN(),
		Orientation: t.orientation(),
		Turn:        eng.Turn(),
		Check:       eng.IsCheck(),
		LastMove:    t.lastMove,
	}
	if t.learnerToMove() {
		b.Movable = b.Turn
		b.Dests = eng.Dests()
	}
	return b
}

func (t *Trainer) Progress() Progress {
	return Progress{
		Mode:      t.mode,
		Category:  t.category,
		LineIndex: t.lineIndex,
		LineCount: len(t.Lines()),
		Line:      t.validator.Progress(),
		Cursor:    t.validator.Cursor(),
	}
}

// ResetStats zeroes the session counters.
func (t *Trainer) ResetStats() {
	t.stats = Stats{Started: t.now()}
	t.studied = make(map[string]bool)
	if l := t.validator.Line(); l != nil {
		t.studied[l.ID] = true
		t.stats.LinesStudied = 1
	}
}
