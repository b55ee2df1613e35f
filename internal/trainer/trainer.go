// Package trainer runs a study session over a course: it picks the line to
// drill, routes learner moves through the validator, paces the scripted
// replies and keeps the review cards up to date.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/drill"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/store"
)

// ErrNotYourTurn is attached to illegalMove when the learner moves for the
// scripted side.
var ErrNotYourTurn = errors.New("not your turn")

// Mode selects which lines are drilled and how mistakes are scored.
type Mode string

const (
	ModeTheory    Mode = "theory"
	ModeExercises Mode = "exercises"
	ModeReview    Mode = "spaced_repetition"
)

// Modes lists the modes in display order.
var Modes = []Mode{ModeTheory, ModeExercises, ModeReview}

// ParseMode accepts a mode name or a short alias.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "theory", "study", "":
		return ModeTheory, nil
	case "exercises", "exercise", "test":
		return ModeExercises, nil
	case "spaced_repetition", "spaced-repetition", "review", "sr", "srs":
		return ModeReview, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Label is the display name of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeExercises:
		return "Exercises"
	case ModeReview:
		return "Review"
	}
	return "Theory"
}

// Outcome classifies the result of an attempt for events and the event log.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeStageAdvanced Outcome = "stage_advanced"
	OutcomeReviewed      Outcome = "reviewed"
	OutcomeDemoted       Outcome = "demoted"
)

// Config holds the pacing and hint settings.
type Config struct {
	OpponentDelay   time.Duration
	LoadDelay       time.Duration
	CompletionPause time.Duration
	MaxHintMoves    int
}

// DefaultConfig returns the standard pacing.
func DefaultConfig() Config {
	return Config{
		OpponentDelay:   300 * time.Millisecond,
		LoadDelay:       100 * time.Millisecond,
		CompletionPause: 1500 * time.Millisecond,
		MaxHintMoves:    3,
	}
}

// ReviewItem pairs a line with its review card.
type ReviewItem struct {
	Line *course.Line
	Card spacedrep.Card
}

// Options configures a Trainer. Course and Pacer are required.
type Options struct {
	Course    *course.Course
	Engine    rules.Engine
	Scheduler *spacedrep.Scheduler
	// Progress persists review cards. Nil keeps them in memory only.
	Progress store.ProgressRepo
	// Events records attempts and hints. Nil disables the log.
	Events    store.EventRepo
	Bus       *Bus
	Pacer     Pacer
	Logger    *slog.Logger
	Config    Config
	SessionID string
	Mode      Mode
	Category  string
	// Side overrides the side every line is trained from.
	Side  course.Side
	Clock func() time.Time
}

type revealedHint struct {
	ply      int
	from, to string
}

// Trainer is the session orchestrator. It is not safe for concurrent use;
// the caller serializes operations and Fire.
type Trainer struct {
	course    *course.Course
	validator *drill.Validator
	opponent  *drill.Opponent
	sched     *spacedrep.Scheduler
	progress  store.ProgressRepo
	events    store.EventRepo
	bus       *Bus
	pacer     Pacer
	logger    *slog.Logger
	cfg       Config
	sessionID string
	clock     func() time.Time

	mode         Mode
	category     string
	lineIndex    int
	active       *ReviewItem
	keepActive   bool
	sideOverride course.Side
	flipped      bool
	failed       map[string]error

	// readOnly keeps an unreadable progress blob from being overwritten
	// until the learner resets progress.
	readOnly bool

	attempt  attempt
	revealed *revealedHint
	lastMove *rules.MoveResult
	stats    Stats
	studied  map[string]bool

	token   uint64
	pending *Task
	cancel  Cancel
}

// New builds a trainer. It does not touch storage or load a position; call
// Start for that.
func New(opts Options) (*Trainer, error) {
	if opts.Course == nil || len(opts.Course.Lines) == 0 {
		return nil, fmt.Errorf("new trainer: %w", course.ErrNoLines)
	}
	if opts.Pacer == nil {
		return nil, errors.New("new trainer: pacer is required")
	}

	t := &Trainer{
		course:       opts.Course,
		progress:     opts.Progress,
		events:       opts.Events,
		bus:          opts.Bus,
		pacer:        opts.Pacer,
		logger:       opts.Logger,
		cfg:          opts.Config,
		sessionID:    opts.SessionID,
		clock:        opts.Clock,
		sideOverride: opts.Side,
		failed:       make(map[string]error),
		studied:      make(map[string]bool),
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.bus == nil {
		t.bus = NewBus()
	}
	if t.clock == nil {
		t.clock = time.Now
	}
	if t.sessionID == "" {
		t.sessionID = uuid.New().String()
	}
	def := DefaultConfig()
	if t.cfg.MaxHintMoves <= 0 {
		t.cfg.MaxHintMoves = def.MaxHintMoves
	}
	if t.cfg.OpponentDelay < 0 {
		t.cfg.OpponentDelay = 0
	}
	if t.cfg.LoadDelay < 0 {
		t.cfg.LoadDelay = 0
	}
	if t.cfg.CompletionPause < 0 {
		t.cfg.CompletionPause = 0
	}

	eng := opts.Engine
	if eng == nil {
		eng = rules.NewEngine()
	}
	t.validator = drill.NewValidator(eng)
	t.opponent = drill.NewOpponent(t.validator)

	t.sched = opts.Scheduler
	if t.sched == nil {
		t.sched = spacedrep.NewScheduler(t.course.ID, spacedrep.Options{Logger: t.logger})
	}

	switch opts.Mode {
	case ModeTheory, ModeExercises, ModeReview:
		t.mode = opts.Mode
	default:
		t.mode = ModeTheory
		if len(t.course.LinesOfType(course.TypeTheory)) == 0 {
			t.mode = ModeExercises
		}
	}
	t.category = t.resolveCategory(opts.Category)
	return t, nil
}

// Start loads stored progress, makes sure every theory line has a review
// card, announces the session and loads the first position.
func (t *Trainer) Start(ctx context.Context) error {
	now := t.now()
	t.stats = Stats{Started: now}

	var unreadable error
	if t.progress != nil {
		report, err := t.sched.Load(ctx, t.progress)
		switch {
		case errors.Is(err, spacedrep.ErrCorruptBlob):
			t.logger.Warn("stored progress unreadable, not saving this session", "course", t.course.ID, "error", err)
			t.sched.Reset()
			t.readOnly = true
			unreadable = err
		case err != nil:
			return fmt.Errorf("start session: %w", err)
		case report.Migrated > 0:
			t.logger.Info("upgraded stored cards", "course", t.course.ID, "count", report.Migrated)
		}
	}
	if n := t.sched.Generate(lineIDs(t.course.LinesOfType(course.TypeTheory)), now); n > 0 {
		t.logger.Debug("created review cards", "course", t.course.ID, "count", n)
		_ = t.persist()
	}

	if t.events != nil {
		_ = t.events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID: t.sessionID,
			CourseID:  t.course.ID,
			Action:    "start",
			Mode:      string(t.mode),
		})
	}

	t.publish(Event{
		Type:       EventInitialized,
		Mode:       t.mode,
		Category:   t.category,
		Categories: t.Categories(),
		Lines:      t.Lines(),
	})
	if unreadable != nil {
		t.publish(Event{Type: EventProgressUnreadable, Mode: t.mode, Err: unreadable})
	}
	t.LoadCurrentPosition()
	return nil
}

// ReadOnly reports whether card changes are kept in memory only because the
// stored progress could not be read.
func (t *Trainer) ReadOnly() bool { return t.readOnly }

// End stops pending work, saves the cards, records the session and returns
// its summary.
func (t *Trainer) End(ctx context.Context) *Summary {
	t.cancelPending()
	_ = t.persist()
	s := t.Summary()
	if t.events != nil {
		_ = t.events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:    t.sessionID,
			CourseID:     t.course.ID,
			Action:       "end",
			Mode:         string(t.mode),
			LinesStudied: s.Stats.LinesStudied,
			CorrectMoves: s.Stats.CorrectMoves,
			Mistakes:     s.Stats.Mistakes,
			Hints:        s.Stats.Hints,
			DurationSecs: int(s.Duration.Seconds()),
		})
	}
	return s
}

// Subscribe registers a handler on the trainer's bus.
func (t *Trainer) Subscribe(fn Handler, types ...EventType) (unsubscribe func()) {
	return t.bus.Subscribe(fn, types...)
}

// SetMode switches mode, resets the selection and loads a position.
func (t *Trainer) SetMode(m Mode) {
	if !slices.Contains(Modes, m) {
		t.logger.Warn("ignoring unknown mode", "mode", m)
		return
	}
	t.mode = m
	t.lineIndex = 0
	t.active = nil
	t.keepActive = false
	t.category = t.resolveCategory(t.category)
	t.publish(Event{Type: EventModeChanged, Mode: m, Category: t.category, Categories: t.Categories()})
	t.LoadCurrentPosition()
}

// SetCategory narrows the lines drilled. Unknown categories are ignored.
func (t *Trainer) SetCategory(c string) {
	if !slices.Contains(t.Categories(), c) {
		return
	}
	t.category = c
	t.lineIndex = 0
	t.active = nil
	t.keepActive = false
	t.publish(Event{Type: EventCategoryChanged, Mode: t.mode, Category: c, Lines: t.Lines()})
	t.LoadCurrentPosition()
}

// SelectLine loads line i of the current list. Review mode picks its own
// lines, so selection is ignored there.
func (t *Trainer) SelectLine(i int) bool {
	if t.mode == ModeReview {
		return false
	}
	lines := t.Lines()
	if i < 0 || i >= len(lines) {
		return false
	}
	t.lineIndex = i
	t.publish(Event{Type: EventLineChanged, Mode: t.mode, LineIndex: i, Line: lines[i]})
	t.LoadCurrentPosition()
	return true
}

// NextLine moves to the following line, stopping at the last one.
func (t *Trainer) NextLine() bool { return t.SelectLine(t.lineIndex + 1) }

// PreviousLine moves to the preceding line, stopping at the first one.
func (t *Trainer) PreviousLine() bool { return t.SelectLine(t.lineIndex - 1) }

// LoadCurrentPosition loads the selected line, or in review mode the active
// or next due card, and schedules the opening reply when the scripted side
// moves first.
func (t *Trainer) LoadCurrentPosition() {
	t.cancelPending()
	t.attempt = attempt{}
	t.revealed = nil
	t.lastMove = nil

	var line *course.Line
	if t.mode == ModeReview {
		item := t.nextReviewItem()
		if item == nil {
			return
		}
		line = item.Line
	} else {
		lines := t.Lines()
		if len(lines) == 0 {
			t.clearBoard()
			t.publish(Event{Type: EventNoLine, Mode: t.mode, Category: t.category})
			return
		}
		t.lineIndex = min(max(t.lineIndex, 0), len(lines)-1)
		line = lines[t.lineIndex]
	}

	if err := t.validator.Load(line, t.course.StartFor(line)); err != nil {
		t.failLine(line, err)
		return
	}
	if !t.studied[line.ID] {
		t.studied[line.ID] = true
		t.stats.LinesStudied++
	}

	ev := Event{
		Type:      EventPositionLoaded,
		Mode:      t.mode,
		Category:  t.category,
		LineIndex: t.lineIndex,
		Line:      line,
		Progress:  t.validator.Progress(),
	}
	if t.active != nil {
		c := t.active.Card
		ev.Card = &c
	}
	t.publish(ev)
	t.scheduleReply(t.cfg.LoadDelay)
}

func (t *Trainer) nextReviewItem() *ReviewItem {
	lines := t.Lines()
	if len(lines) == 0 {
		t.active = nil
		t.clearBoard()
		t.publish(Event{Type: EventNoLine, Mode: t.mode, Category: t.category})
		return nil
	}

	now := t.now()
	scope := t.reviewScope()
	if t.active != nil && t.keepActive && scope(t.active.Line.ID) {
		t.keepActive = false
		t.active.Card = t.sched.Ensure(t.active.Line.ID, now)
		return t.active
	}
	t.keepActive = false

	if n := t.sched.Generate(lineIDs(lines), now); n > 0 {
		_ = t.persist()
	}
	c := t.sched.NextDue(now, scope)
	if c == nil {
		t.active = nil
		t.clearBoard()
		t.publish(Event{
			Type:       EventNothingDue,
			Mode:       t.mode,
			Category:   t.category,
			NextReview: t.nextScheduled(now, scope),
		})
		return nil
	}
	line, ok := t.course.Line(c.ID)
	if !ok {
		t.active = nil
		t.clearBoard()
		t.publish(Event{Type: EventNoLine, Mode: t.mode, Category: t.category})
		return nil
	}
	t.active = &ReviewItem{Line: line, Card: *c}
	return t.active
}

// HandleMove submits a learner move given by its squares.
func (t *Trainer) HandleMove(from, to string) {
	if t.validator.Line() == nil || !t.validator.Cursor().Active {
		return
	}
	if !t.learnerToMove() {
		t.publish(Event{Type: EventIllegalMove, Mode: t.mode, Line: t.validator.Line(), From: from, To: to, Err: ErrNotYourTurn})
		return
	}
	v, err := t.validator.Submit(from, to, rules.NoPiece)
	t.judge(v, err, from, to)
}

// Promote finishes a move waiting on promotionRequired.
func (t *Trainer) Promote(piece rules.Piece) {
	from, to, ok := t.validator.PendingPromotion()
	if !ok {
		return
	}
	v, err := t.validator.Promote(piece)
	t.judge(v, err, from, to)
}

// CancelPromotion abandons a move waiting on promotionRequired.
func (t *Trainer) CancelPromotion() {
	t.validator.CancelPromotion()
}

// HandleInput submits a move typed as coordinates ("e2e4", "e7e8q") or SAN.
func (t *Trainer) HandleInput(input string) {
	input = strings.TrimSpace(input)
	if input == "" || t.validator.Line() == nil || !t.validator.Cursor().Active {
		return
	}

	from, to, promo, err := rules.ParseUCI(input)
	if err != nil {
		if !t.learnerToMove() {
			t.publish(Event{Type: EventIllegalMove, Mode: t.mode, Line: t.validator.Line(), Err: ErrNotYourTurn})
			return
		}
		eng := t.validator.Engine()
		res, serr := eng.ApplySAN(input)
		if serr != nil {
			t.publish(Event{Type: EventIllegalMove, Mode: t.mode, Line: t.validator.Line(), Ply: t.validator.Cursor().Index, Err: serr})
			return
		}
		eng.Undo()
		from, to, promo = res.From, res.To, res.Promotion
	}

	t.HandleMove(from, to)
	if promo != rules.NoPiece {
		t.Promote(promo)
	}
}

func (t *Trainer) judge(v drill.Verdict, err error, from, to string) {
	line := t.validator.Line()
	switch {
	case err != nil:
		t.publish(Event{Type: EventIllegalMove, Mode: t.mode, Line: line, From: from, To: to, Ply: v.Ply, Err: err})

	case v.Inactive:

	case v.PendingPromotion:
		t.publish(Event{Type: EventPromotionRequired, Mode: t.mode, Line: line, From: from, To: to, Ply: v.Ply})

	case !v.Valid:
		t.attempt.mistakes++
		t.stats.Mistakes++
		t.publish(Event{
			Type:     EventIncorrectMove,
			Mode:     t.mode,
			Line:     line,
			Move:     v.Move,
			From:     from,
			To:       to,
			Ply:      v.Ply,
			Expected: v.Expected,
			Mistakes: t.attempt.mistakes,
		})
		t.penalize()

	default:
		t.stats.CorrectMoves++
		t.revealed = nil
		t.lastMove = v.Move
		t.publish(Event{
			Type:     EventCorrectMove,
			Mode:     t.mode,
			Line:     line,
			Move:     v.Move,
			Ply:      v.Ply,
			Comment:  line.Comment(v.Ply),
			Progress: t.validator.Progress(),
		})
		if v.Complete {
			t.complete()
			return
		}
		t.scheduleReply(t.cfg.OpponentDelay)
	}
}

// Fire runs a task delivered by the pacer. Tasks that no longer match the
// pending task, the loaded line or the cursor are dropped.
func (t *Trainer) Fire(task Task) {
	p := t.pending
	c := t.validator.Cursor()
	if p == nil || task.Token != p.Token || task.LineID != c.LineID || task.Index != c.Index {
		t.logger.Debug("dropping stale task", "kind", task.Kind, "line", task.LineID, "index", task.Index)
		return
	}
	t.pending = nil
	t.cancel = nil

	switch task.Kind {
	case TaskOpponentMove:
		t.playReply()
	case TaskNextLine:
		t.LoadCurrentPosition()
	}
}

func (t *Trainer) playReply() {
	line := t.validator.Line()
	if line == nil || !t.opponent.ShouldMoveNow(t.side()) {
		return
	}
	v, err := t.opponent.PlayNext()
	if err != nil {
		t.failLine(line, err)
		return
	}
	if v.Inactive {
		return
	}
	t.lastMove = v.Move
	t.publish(Event{
		Type:     EventComputerMove,
		Mode:     t.mode,
		Line:     line,
		Move:     v.Move,
		Ply:      v.Ply,
		Comment:  line.Comment(v.Ply),
		Progress: t.validator.Progress(),
	})
	if v.Complete {
		t.complete()
	}
}

func (t *Trainer) complete() {
	line := t.validator.Line()
	t.stats.LinesCompleted++
	clean := t.attempt.clean()
	if clean {
		t.stats.PerfectLines++
	}

	outcome := OutcomeCompleted
	var card *spacedrep.Card
	var saveErr error
	if t.mode == ModeReview && t.active != nil {
		if clean {
			o := t.sched.Advance(line.ID, t.now())
			t.active.Card = o.Card
			switch {
			case o.StageAdvanced:
				outcome = OutcomeStageAdvanced
				t.keepActive = true
			case o.Reviewed:
				outcome = OutcomeReviewed
				t.stats.Reviews++
			}
			saveErr = t.persist()
		}
		c := t.active.Card
		card = &c
	}
	t.recordReview(line, outcome, card)

	t.publish(Event{
		Type:     EventLineComplete,
		Mode:     t.mode,
		Line:     line,
		Card:     card,
		Outcome:  outcome,
		Mistakes: t.attempt.mistakes,
		Hints:    t.attempt.hints,
		Progress: t.validator.Progress(),
	})
	if outcome == OutcomeStageAdvanced || outcome == OutcomeReviewed {
		t.publish(Event{Type: EventCardUpdated, Mode: t.mode, Line: line, Card: card, Outcome: outcome, Err: saveErr})
	}

	if t.mode == ModeReview {
		t.schedule(TaskNextLine, t.cfg.CompletionPause)
	}
}

// penalize demotes the card behind the current attempt. Theory mode never
// penalizes, and a card is demoted at most once per attempt.
func (t *Trainer) penalize() {
	if t.mode == ModeTheory || t.attempt.demoted {
		return
	}
	line := t.validator.Line()
	if line == nil {
		return
	}
	if t.mode == ModeReview && (t.active == nil || t.active.Line.ID != line.ID) {
		return
	}

	card, ok := t.sched.Demote(line.ID, t.now())
	if !ok {
		return
	}
	t.attempt.demoted = true
	t.keepActive = false
	if t.active != nil && t.active.Line.ID == line.ID {
		t.active.Card = card
	}
	err := t.persist()
	t.recordReview(line, OutcomeDemoted, &card)
	t.publish(Event{Type: EventCardUpdated, Mode: t.mode, Line: line, Card: &card, Outcome: OutcomeDemoted, Err: err})
}

// RequestHint reveals the expected move. Outside theory mode it costs the
// card a demotion.
func (t *Trainer) RequestHint() {
	line := t.validator.Line()
	if line == nil || !t.learnerToMove() {
		return
	}
	expected, ok := t.validator.Expected()
	if !ok {
		return
	}
	ply := t.validator.Cursor().Index
	stage := 0
	if t.mode == ModeReview && t.active != nil {
		stage = t.active.Card.HintStage
	}

	t.attempt.hints++
	t.stats.Hints++
	if next := t.previewMoves(1); len(next) == 1 {
		t.revealed = &revealedHint{ply: ply, from: next[0].res.From, to: next[0].res.To}
	}

	ev := Event{
		Type:     EventHint,
		Mode:     t.mode,
		Line:     line,
		Ply:      ply,
		Expected: expected,
		Shapes:   t.Shapes(),
		Hints:    t.attempt.hints,
	}
	if t.revealed != nil {
		ev.From, ev.To = t.revealed.from, t.revealed.to
	}
	t.publish(ev)

	if t.events != nil {
		if err := t.events.AppendHintEvent(context.Background(), store.HintEventData{
			SessionID:    t.sessionID,
			CourseID:     t.course.ID,
			LineID:       line.ID,
			Mode:         string(t.mode),
			Ply:          ply,
			ExpectedMove: expected,
			Revealed:     ev.From + ev.To,
			HintStage:    stage,
		}); err != nil {
			t.logger.Warn("record hint", "error", err)
		}
	}
	t.penalize()
}

// ResetPosition restarts the current line from its first move.
func (t *Trainer) ResetPosition() {
	t.reload()
}

// StepForward plays the next authored move without judging it. Outside
// theory mode the attempt no longer counts as clean, so a stepped-through
// line never advances its card.
func (t *Trainer) StepForward() bool {
	t.cancelPending()
	if !t.validator.StepForward() {
		return false
	}
	if t.mode != ModeTheory {
		t.attempt.stepped = true
	}
	t.afterStep()
	return true
}

// StepBackward takes back one move.
func (t *Trainer) StepBackward() bool {
	t.cancelPending()
	if !t.validator.StepBackward() {
		return false
	}
	t.afterStep()
	return true
}

func (t *Trainer) afterStep() {
	t.revealed = nil
	t.lastMove = nil
	line := t.validator.Line()
	c := t.validator.Cursor()
	t.publish(Event{
		Type:     EventStepped,
		Mode:     t.mode,
		Line:     line,
		Ply:      c.Index,
		Comment:  line.Comment(c.Index - 1),
		Progress: t.validator.Progress(),
	})
}

// SetPlayerColor trains every line from side, or from each line's own side
// when side is empty, and reloads the current line.
func (t *Trainer) SetPlayerColor(side course.Side) {
	t.sideOverride = side
	t.flipped = false
	t.reload()
}

// FlipBoard toggles the board orientation without changing the trained side.
func (t *Trainer) FlipBoard() rules.Color {
	t.flipped = !t.flipped
	return t.orientation()
}

// ResetProgress discards every review card of the course and starts over.
func (t *Trainer) ResetProgress(ctx context.Context) error {
	t.cancelPending()
	t.active = nil
	t.keepActive = false
	if t.progress != nil {
		if err := t.sched.Purge(ctx, t.progress); err != nil {
			return err
		}
		t.readOnly = false
	} else {
		t.sched.Reset()
	}
	t.sched.Generate(lineIDs(t.course.LinesOfType(course.TypeTheory)), t.now())
	if err := t.persist(); err != nil {
		return err
	}
	t.logger.Info("progress reset", "course", t.course.ID)
	t.LoadCurrentPosition()
	return nil
}

func (t *Trainer) reload() {
	if t.mode == ModeReview && t.active != nil {
		t.keepActive = true
	}
	t.LoadCurrentPosition()
}

func (t *Trainer) failLine(line *course.Line, err error) {
	t.cancelPending()
	t.failed[line.ID] = err
	if t.active != nil && t.active.Line.ID == line.ID {
		t.active = nil
		t.keepActive = false
	}
	t.validator.Clear()
	t.logger.Error("line cannot be trained", "course", t.course.ID, "line", line.ID, "error", err)
	t.publish(Event{Type: EventLineFailed, Mode: t.mode, Line: line, Err: err})
}

func (t *Trainer) clearBoard() {
	t.validator.Clear()
	t.validator.Engine().Reset()
}

func (t *Trainer) schedule(kind TaskKind, delay time.Duration) {
	t.cancelPending()
	t.token++
	c := t.validator.Cursor()
	task := Task{Token: t.token, Kind: kind, LineID: c.LineID, Index: c.Index}
	t.pending = &task
	t.cancel = t.pacer.After(delay, task)
}

func (t *Trainer) scheduleReply(delay time.Duration) {
	if t.opponent.ShouldMoveNow(t.side()) {
		t.schedule(TaskOpponentMove, delay)
	}
}

func (t *Trainer) cancelPending() {
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = nil
	t.pending = nil
}

func (t *Trainer) persist() error {
	if t.progress == nil || t.readOnly {
		return nil
	}
	if err := t.sched.Save(context.Background(), t.progress); err != nil {
		t.logger.Error("save progress", "course", t.course.ID, "error", err)
		return err
	}
	return nil
}

func (t *Trainer) recordReview(line *course.Line, outcome Outcome, card *spacedrep.Card) {
	if t.events == nil {
		return
	}
	data := store.ReviewEventData{
		SessionID: t.sessionID,
		CourseID:  t.course.ID,
		LineID:    line.ID,
		Mode:      string(t.mode),
		Outcome:   string(outcome),
		Mistakes:  t.attempt.mistakes,
		Hints:     t.attempt.hints,
	}
	if card != nil {
		data.HintStage = card.HintStage
		data.IntervalDays = card.Interval
		data.EaseFactor = card.EaseFactor
		data.NextReviewAt = card.NextReviewAt
	}
	if err := t.events.AppendReviewEvent(context.Background(), data); err != nil {
		t.logger.Warn("record review", "line", line.ID, "error", err)
	}
}

func (t *Trainer) publish(e Event) {
	t.bus.Publish(e)
}

func (t *Trainer) now() time.Time { return t.clock() }

// side is the side the current line is trained from.
func (t *Trainer) side() course.Side {
	if t.sideOverride != "" {
		return t.sideOverride
	}
	if l := t.validator.Line(); l != nil && l.Side != "" {
		return l.Side
	}
	return course.SideOf(t.course.PlayerColor)
}

func (t *Trainer) learnerToMove() bool {
	if t.validator.Line() == nil || !t.validator.Cursor().Active {
		return false
	}
	color, ok := t.side().Color()
	return !ok || t.validator.Engine().Turn() == color
}

func (t *Trainer) orientation() rules.Color {
	o := t.course.Orientation
	if o == "" {
		o = t.course.PlayerColor
	}
	if c, ok := t.side().Color(); ok {
		o = c
	}
	if t.flipped {
		return o.Opposite()
	}
	return o
}

// modeLines returns the trainable lines of the mode, ignoring the category.
// Review mode drills the theory lines.
func (t *Trainer) modeLines() []*course.Line {
	typ := course.TypeTheory
	if t.mode == ModeExercises {
		typ = course.TypeExercise
	}
	var out []*course.Line
	for _, l := range t.course.LinesOfType(typ) {
		if _, bad := t.failed[l.ID]; !bad {
			out = append(out, l)
		}
	}
	return out
}

func (t *Trainer) resolveCategory(want string) string {
	cats := t.Categories()
	if want != "" && slices.Contains(cats, want) {
		return want
	}
	return course.DefaultCategory(cats)
}

// reviewScope accepts the theory lines the review queue may draw from: the
// current category in review mode, every theory line otherwise.
func (t *Trainer) reviewScope() func(string) bool {
	lines := t.Lines()
	if t.mode != ModeReview {
		lines = nil
		for _, l := range t.course.LinesOfType(course.TypeTheory) {
			if _, bad := t.failed[l.ID]; !bad {
				lines = append(lines, l)
			}
		}
	}
	ids := make(map[string]bool, len(lines))
	for _, l := range lines {
		ids[l.ID] = true
	}
	return func(id string) bool { return ids[id] }
}

func lineIDs(lines []*course.Line) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return ids
}
