package lines

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/router"
	"github.com/abhisek/chessdrill/internal/screen"
	"github.com/abhisek/chessdrill/internal/screens/drill"
	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/layout"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

type rowKind int

const (
	rowCategoryHeader rowKind = iota
	rowLine
)

type row struct {
	kind     rowKind
	category string
	line     *course.Line
}

// cardsLoadedMsg carries the stored review cards.
type cardsLoadedMsg struct {
	Sched *spacedrep.Scheduler
	Err   error
}

// LinesScreen lists the course's lines by category with their review state.
type LinesScreen struct {
	opts         drill.Options
	rows         []row
	cursor       int
	scrollOffset int
	sched        *spacedrep.Scheduler
	errMsg       string
	now          func() time.Time
}

var _ screen.Screen = (*LinesScreen)(nil)
var _ screen.KeyHintProvider = (*LinesScreen)(nil)
var _ screen.Resumer = (*LinesScreen)(nil)

// New creates a new LinesScreen. opts is the template for drills started
// from the list.
func New(opts drill.Options) *LinesScreen {
	var all []*course.Line
	for i := range opts.Course.Lines {
		all = append(all, &opts.Course.Lines[i])
	}

	var rows []row
	for _, cat := range course.Categories(all) {
		if cat == course.AllCategories {
			continue
		}
		rows = append(rows, row{kind: rowCategoryHeader, category: cat})
		for _, l := range course.FilterCategory(all, cat) {
			rows = append(rows, row{kind: rowLine, category: cat, line: l})
		}
	}

	s := &LinesScreen{opts: opts, rows: rows, now: time.Now}
	for i, r := range s.rows {
		if r.kind == rowLine {
			s.cursor = i
			break
		}
	}
	return s
}

func (s *LinesScreen) Init() tea.Cmd {
	return s.loadCards()
}

// Resume reloads the cards after a drill may have changed them.
func (s *LinesScreen) Resume() tea.Cmd {
	return s.loadCards()
}

func (s *LinesScreen) loadCards() tea.Cmd {
	opts := s.opts
	now := s.now()
	return func() tea.Msg {
		sched, err := drill.LoadCards(context.Background(), opts, now)
		return cardsLoadedMsg{Sched: sched, Err: err}
	}
}

func (s *LinesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.sched = msg.Sched
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextCategory()
		case "shift+tab":
			s.prevCategory()
		case "enter":
			return s, s.selectLine()
		case "d", "space", " ":
			return s, s.drillLine()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *LinesScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Incorrect.Render("  Could not load progress: " + s.errMsg)
	}
	if len(s.rows) == 0 {
		return theme.Hint.Render("  This course has no lines.")
	}

	s.adjustScroll(height)

	var out []string
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= height {
			break
		}
		switch r.kind {
		case rowCategoryHeader:
			out = append(out, s.renderCategoryHeader(r.category, width))
		case rowLine:
			out = append(out, s.renderLineRow(r, i == s.cursor, width))
		}
		visible++
	}
	return strings.Join(out, "\n")
}

func (s *LinesScreen) Title() string {
	return "Lines"
}

func (s *LinesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Category"},
		{Key: "Enter", Description: "Details"},
		{Key: "D", Description: "Drill"},
		{Key: "Esc", Description: "Back"},
	}
}

// moveCursor moves the cursor by delta, skipping category headers.
func (s *LinesScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowLine {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextCategory jumps the cursor to the first line of the next category.
func (s *LinesScreen) nextCategory() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].category
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowLine && s.rows[i].category != current {
			s.cursor = i
			return
		}
	}
}

// prevCategory jumps the cursor to the first line of the previous category.
func (s *LinesScreen) prevCategory() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].category
	header := -1
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowCategoryHeader && s.rows[i].category != current {
			header = i
			break
		}
	}
	if header < 0 {
		return
	}
	s.cursor = header
	s.moveCursor(1)
}

// adjustScroll keeps the cursor, and its category header when possible,
// inside the viewport.
func (s *LinesScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowCategoryHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *LinesScreen) current() *course.Line {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return s.rows[s.cursor].line
}

// card returns the review card of a theory line, if loaded.
func (s *LinesScreen) card(l *course.Line) (spacedrep.Card, bool) {
	if s.sched == nil || l.Type != course.TypeTheory || !s.sched.Has(l.ID) {
		return spacedrep.Card{}, false
	}
	return s.sched.Card(l.ID), true
}

func (s *LinesScreen) selectLine() tea.Cmd {
	l := s.current()
	if l == nil {
		return nil
	}
	card, ok := s.card(l)
	var cp *spacedrep.Card
	if ok {
		cp = &card
	}
	detail := newLineDetail(s.opts, l, cp, s.now())
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func (s *LinesScreen) drillLine() tea.Cmd {
	l := s.current()
	if l == nil {
		return nil
	}
	scr := drill.New(DrillOptions(s.opts, l))
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: scr}
	}
}

// DrillOptions narrows a drill template to one line: the mode that owns the
// line's type and the line's category.
func DrillOptions(opts drill.Options, l *course.Line) drill.Options {
	opts.Mode = trainer.ModeTheory
	if l.Type == course.TypeExercise {
		opts.Mode = trainer.ModeExercises
	}
	opts.Category = l.Category
	if opts.Category == "" {
		opts.Category = course.AllCategories
	}
	opts.LineID = l.ID
	return opts
}

func (s *LinesScreen) renderCategoryHeader(category string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(category))
}

// statusLabel describes a line's review state in a few words.
func statusLabel(l *course.Line, card *spacedrep.Card, now time.Time) string {
	if l.Type == course.TypeExercise {
		return "exercise"
	}
	if card == nil {
		return ""
	}
	switch card.Status(now) {
	case spacedrep.StatusNew:
		return "new"
	case spacedrep.StatusDue:
		return "due"
	case spacedrep.StatusOverdue:
		return "overdue"
	}
	return fmt.Sprintf("in %dd", card.DaysUntilReview(now))
}

func statusStyle(label string) lipgloss.Style {
	switch label {
	case "due":
		return lipgloss.NewStyle().Foreground(theme.Warning)
	case "overdue":
		return lipgloss.NewStyle().Foreground(theme.Error)
	case "new":
		return lipgloss.NewStyle().Foreground(theme.Secondary)
	case "exercise":
		return lipgloss.NewStyle().Foreground(theme.Accent)
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim)
}

func (s *LinesScreen) renderLineRow(r row, selected bool, width int) string {
	l := r.line
	if l == nil {
		return ""
	}

	var cp *spacedrep.Card
	if card, ok := s.card(l); ok {
		cp = &card
	}
	label := statusLabel(l, cp, s.now())

	icon := "◆"
	if l.Type == course.TypeExercise {
		icon = "◇"
	}
	moves := fmt.Sprintf("%2d moves", len(l.Moves))

	nameWidth := max(width-4-3-10-10-4, 10)
	name := l.Name
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	labelStyle := statusStyle(label)
	if selected {
		nameStyle = theme.Selected
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		icon,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(moves),
		labelStyle.Render(fmt.Sprintf("%9s", label)),
	)
}
