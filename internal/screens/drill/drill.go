package drill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/screen"
	"github.com/abhisek/chessdrill/internal/screens/summary"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/store"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/board"
	"github.com/abhisek/chessdrill/internal/ui/components"
)

// Options configures a drill screen.
type Options struct {
	Course    *course.Course
	Progress  store.ProgressRepo
	Events    store.EventRepo
	Config    trainer.Config
	Scheduler spacedrep.Options
	Logger    *slog.Logger
	Mode      trainer.Mode
	Category  string
	Side      course.Side
	// LineID opens a specific line first. Ignored in review mode.
	LineID string
}

type tone int

const (
	toneInfo tone = iota
	toneGood
	toneBad
)

// DrillScreen runs a training session on the board.
type DrillScreen struct {
	opts    Options
	trainer *trainer.Trainer
	pacer   *tickPacer
	events  []trainer.Event
	unsub   func()

	started bool
	ended   bool
	errMsg  string

	input       components.MoveInput
	typed       bool
	promotion   *components.PromotionPicker
	confirmQuit bool

	cursor   string
	selected string

	status   string
	tone     tone
	// statusSet marks a status written since the last sync, which a
	// following position load must not wipe.
	statusSet bool
	comment  string
	cardNote string
	// idle replaces the board when there is nothing to drill.
	idle string
	now  func() time.Time
}

var _ screen.Screen = (*DrillScreen)(nil)
var _ screen.KeyHintProvider = (*DrillScreen)(nil)
var _ screen.StatusProvider = (*DrillScreen)(nil)
var _ screen.Closer = (*DrillScreen)(nil)
var _ screen.EscapeHandler = (*DrillScreen)(nil)

// New creates a drill screen. Construction errors are shown on screen.
func New(opts Options) *DrillScreen {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Scheduler.Logger == nil {
		opts.Scheduler.Logger = opts.Logger
	}
	s := &DrillScreen{
		opts:  opts,
		pacer: newTickPacer(),
		input: components.NewMoveInput("e4, Nf3, e2e4..."),
		now:   time.Now,
	}

	var id string
	if opts.Course != nil {
		id = opts.Course.ID
	}
	tr, err := trainer.New(trainer.Options{
		Course:    opts.Course,
		Scheduler: spacedrep.NewScheduler(id, opts.Scheduler),
		Progress:  opts.Progress,
		Events:    opts.Events,
		Pacer:     s.pacer,
		Logger:    opts.Logger,
		Config:    opts.Config,
		Mode:      opts.Mode,
		Category:  opts.Category,
		Side:      opts.Side,
	})
	if err != nil {
		s.errMsg = err.Error()
		return s
	}
	s.trainer = tr
	s.unsub = tr.Subscribe(func(e trainer.Event) { s.events = append(s.events, e) })
	return s
}

func (s *DrillScreen) Init() tea.Cmd {
	if s.trainer == nil {
		return nil
	}
	return tea.Batch(s.start(), s.input.Init())
}

// start loads stored progress and the first position off the UI loop.
// Nothing else touches the trainer until startedMsg arrives.
func (s *DrillScreen) start() tea.Cmd {
	return func() tea.Msg {
		if err := s.trainer.Start(context.Background()); err != nil {
			return startedMsg{Err: err}
		}
		if s.opts.LineID != "" && s.trainer.Mode() != trainer.ModeReview {
			for i, l := range s.trainer.Lines() {
				if l.ID == s.opts.LineID {
					s.trainer.SelectLine(i)
					break
				}
			}
		}
		return startedMsg{}
	}
}

func (s *DrillScreen) Title() string {
	if s.trainer == nil {
		return "Drill"
	}
	if l := s.trainer.CurrentLine(); l != nil && s.idle == "" {
		return l.Name
	}
	return s.trainer.Course().Name
}

// Status shows the mode and where the session is.
func (s *DrillScreen) Status() string {
	if s.trainer == nil || !s.started {
		return ""
	}
	p := s.trainer.Progress()
	if p.Mode == trainer.ModeReview || p.LineCount == 0 {
		return p.Mode.Label()
	}
	return fmt.Sprintf("%s · %d/%d", p.Mode.Label(), p.LineIndex+1, p.LineCount)
}

// HandlesEscape claims Esc so the session can be ended through the quit
// prompt instead of being popped mid-line.
func (s *DrillScreen) HandlesEscape() bool { return s.errMsg == "" }

// Close ends the session if the screen is torn down without the quit
// prompt, e.g. on Ctrl+C.
func (s *DrillScreen) Close() tea.Cmd {
	if s.trainer != nil && s.started && !s.ended {
		s.trainer.End(context.Background())
		s.ended = true
	}
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	return nil
}

func (s *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.started = true
		s.cursor = board.MoveCursor("", 0, 0, s.trainer.Board().Orientation)
		return s, s.sync()

	case taskMsg:
		if !s.started || s.ended || !s.pacer.take(msg.ID) {
			return s, nil
		}
		s.trainer.Fire(msg.Task)
		return s, s.sync()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *DrillScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.started || s.ended {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y", "enter":
			return s, s.finish()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.promotion != nil {
		p, _ := s.promotion.Update(msg)
		switch {
		case p.Canceled:
			s.promotion = nil
			s.trainer.CancelPromotion()
			s.setStatus(toneInfo, "Promotion canceled")
		case p.Chosen != rules.NoPiece:
			s.promotion = nil
			s.trainer.Promote(p.Chosen)
		default:
			s.promotion = &p
		}
		return s, s.sync()
	}

	switch key {
	case "esc":
		if s.input.Value() != "" {
			s.input.Take()
			return s, nil
		}
		if s.selected != "" {
			s.selected = ""
			return s, nil
		}
		s.confirmQuit = true
		return s, nil
	case "enter":
		if mv := s.input.Take(); mv != "" {
			s.typed = true
			s.trainer.HandleInput(mv)
		} else {
			s.pick()
		}
	case "space", " ":
		s.pick()
	case "up":
		s.moveCursor(0, 1)
	case "down":
		s.moveCursor(0, -1)
	case "left":
		s.moveCursor(-1, 0)
	case "right":
		s.moveCursor(1, 0)
	case "?":
		s.trainer.RequestHint()
	case "<", ",":
		if !s.trainer.StepBackward() {
			s.setStatus(toneInfo, "At the start of the line")
		}
	case ">", ".":
		if !s.trainer.StepForward() {
			s.setStatus(toneInfo, "At the end of the line")
		}
	case "ctrl+r":
		s.trainer.ResetPosition()
	case "F":
		s.trainer.FlipBoard()
	case "M":
		s.trainer.SetMode(cycle(trainer.Modes, s.trainer.Mode()))
	case "C":
		if cats := s.trainer.Categories(); len(cats) > 0 {
			s.trainer.SetCategory(cycle(cats, s.trainer.Category()))
		}
	case "S":
		s.opts.Side = cycle(sides, s.opts.Side)
		s.trainer.SetPlayerColor(s.opts.Side)
		s.setStatus(toneInfo, "Training as "+sideLabel(s.opts.Side))
	case "tab":
		if !s.trainer.NextLine() && s.trainer.Mode() != trainer.ModeReview {
			s.setStatus(toneInfo, "Last line in this category")
		}
	case "shift+tab":
		if !s.trainer.PreviousLine() && s.trainer.Mode() != trainer.ModeReview {
			s.setStatus(toneInfo, "First line in this category")
		}
	default:
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, s.sync()
}

// sides cycles through the per-line side and the two fixed colors.
var sides = []course.Side{"", course.SideWhite, course.SideBlack}

func sideLabel(side course.Side) string {
	if side == "" {
		return "each line's side"
	}
	return string(side)
}

func cycle[T comparable](items []T, cur T) T {
	i := slices.Index(items, cur)
	return items[(i+1)%len(items)]
}

func (s *DrillScreen) moveCursor(dx, dy int) {
	s.cursor = board.MoveCursor(s.cursor, dx, dy, s.trainer.Board().Orientation)
}

// pick selects the piece under the cursor, or moves the selected piece to
// the cursor.
func (s *DrillScreen) pick() {
	b := s.trainer.Board()
	if b.Movable == "" {
		s.setStatus(toneInfo, "Wait for the opponent's reply")
		return
	}
	if s.selected == "" || s.cursor == s.selected {
		if s.cursor == s.selected {
			s.selected = ""
			return
		}
		if len(b.Dests[s.cursor]) == 0 {
			s.setStatus(toneInfo, "No move from "+s.cursor)
			return
		}
		s.selected = s.cursor
		return
	}
	if !slices.Contains(b.Dests[s.selected], s.cursor) && len(b.Dests[s.cursor]) > 0 {
		s.selected = s.cursor
		return
	}
	from := s.selected
	s.selected = ""
	s.trainer.HandleMove(from, s.cursor)
}

// finish ends the session and shows its summary in place of the drill.
func (s *DrillScreen) finish() tea.Cmd {
	sum := s.trainer.End(context.Background())
	s.ended = true
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(sum)}
	}
}

func (s *DrillScreen) setStatus(t tone, text string) {
	s.tone = t
	s.status = text
	s.statusSet = true
}

// sync applies the events published since the last call and returns the
// ticks the trainer scheduled meanwhile.
func (s *DrillScreen) sync() tea.Cmd {
	events := s.events
	s.events = nil
	for _, e := range events {
		s.apply(e)
	}
	s.typed = false
	s.statusSet = false
	return s.pacer.drain()
}

func (s *DrillScreen) apply(e trainer.Event) {
	switch e.Type {
	case trainer.EventPositionLoaded:
		s.idle = ""
		s.comment = ""
		s.selected = ""
		s.promotion = nil
		if !s.statusSet {
			s.status = ""
		}
		if e.Card != nil && e.Card.IsNew() {
			s.cardNote = "New line"
		} else if e.Card != nil {
			s.cardNote = fmt.Sprintf("Hint stage %d", e.Card.HintStage)
		} else {
			s.cardNote = ""
		}

	case trainer.EventCorrectMove:
		s.setStatus(toneGood, "✓ "+e.Move.SAN)
		s.comment = e.Comment
		s.markInput(true)

	case trainer.EventIncorrectMove:
		played := e.From + e.To
		if e.Move != nil {
			played = e.Move.SAN
		}
		text := fmt.Sprintf("✗ %s is not the move here", played)
		if e.Mode == trainer.ModeTheory && e.Expected != "" {
			text = fmt.Sprintf("✗ %s is not the move here, the line plays %s", played, e.Expected)
		}
		s.setStatus(toneBad, text)
		s.markInput(false)

	case trainer.EventIllegalMove:
		if errors.Is(e.Err, trainer.ErrNotYourTurn) {
			s.setStatus(toneInfo, "Wait for the opponent's reply")
		} else {
			s.setStatus(toneBad, "Illegal move")
		}
		s.markInput(false)

	case trainer.EventPromotionRequired:
		p := components.NewPromotionPicker()
		s.promotion = &p

	case trainer.EventComputerMove:
		s.setStatus(toneInfo, "Opponent played "+e.Move.SAN)
		s.comment = e.Comment

	case trainer.EventStepped:
		s.comment = e.Comment
		s.setStatus(toneInfo, fmt.Sprintf("Move %d of %d", e.Progress.Current, e.Progress.Total))

	case trainer.EventHint:
		s.setStatus(toneInfo, "Hint: "+e.Expected)

	case trainer.EventLineComplete:
		text := "Line complete!"
		switch {
		case e.Mistakes == 0 && e.Hints == 0:
			text = "Line complete, no mistakes!"
		case e.Mistakes > 0:
			text = fmt.Sprintf("Line complete with %d mistake(s)", e.Mistakes)
		}
		if e.Mode != trainer.ModeReview {
			text += "  Tab for the next line"
		}
		s.setStatus(toneGood, text)

	case trainer.EventCardUpdated:
		s.cardNote = cardNote(e)

	case trainer.EventLineFailed:
		name := "line"
		if e.Line != nil {
			name = e.Line.Name
		}
		s.setStatus(toneBad, fmt.Sprintf("Skipped %s: %v", name, e.Err))

	case trainer.EventNothingDue:
		s.idle = "Nothing is due for review."
		if !e.NextReview.IsZero() {
			s.idle += "\nNext review " + summary.Until(e.NextReview, s.now())
		}

	case trainer.EventNoLine:
		s.idle = "No lines to drill here."

	case trainer.EventProgressUnreadable:
		s.setStatus(toneBad, "Saved progress is unreadable and will not be updated (chessdrill reset starts over)")

	case trainer.EventModeChanged:
		s.setStatus(toneInfo, "Mode: "+e.Mode.Label())

	case trainer.EventCategoryChanged:
		s.setStatus(toneInfo, "Category: "+e.Category)
	}
}

func cardNote(e trainer.Event) string {
	if e.Card == nil {
		return ""
	}
	var note string
	switch e.Outcome {
	case trainer.OutcomeDemoted:
		note = "Back to full hints"
	case trainer.OutcomeStageAdvanced:
		note = fmt.Sprintf("Hints fade: stage %d", e.Card.HintStage)
	case trainer.OutcomeReviewed:
		note = fmt.Sprintf("Next review in %d day(s)", e.Card.Interval)
	}
	if e.Err != nil {
		note += " (not saved)"
	}
	return note
}

func (s *DrillScreen) markInput(ok bool) {
	if s.typed {
		s.input.Mark(ok)
	}
}
