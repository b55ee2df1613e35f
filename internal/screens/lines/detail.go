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
	"github.com/abhisek/chessdrill/internal/ui/layout"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

// accuracyMsg carries the line's recorded attempt accuracy.
type accuracyMsg struct {
	Accuracy float64
	Attempts int
	Err      error
}

// LineDetailScreen shows one line: its moves, notes and review card.
type LineDetailScreen struct {
	opts     drill.Options
	line     *course.Line
	card     *spacedrep.Card
	now      time.Time
	accuracy *accuracyMsg
}

var _ screen.Screen = (*LineDetailScreen)(nil)
var _ screen.KeyHintProvider = (*LineDetailScreen)(nil)

func newLineDetail(opts drill.Options, l *course.Line, card *spacedrep.Card, now time.Time) *LineDetailScreen {
	return &LineDetailScreen{opts: opts, line: l, card: card, now: now}
}

func (d *LineDetailScreen) Init() tea.Cmd {
	if d.opts.Events == nil {
		return nil
	}
	events, courseID, lineID := d.opts.Events, d.opts.Course.ID, d.line.ID
	return func() tea.Msg {
		acc, n, err := events.LineAccuracy(context.Background(), courseID, lineID)
		return accuracyMsg{Accuracy: acc, Attempts: n, Err: err}
	}
}

func (d *LineDetailScreen) Title() string { return d.line.Name }

func (d *LineDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case accuracyMsg:
		if msg.Err == nil {
			d.accuracy = &msg
		}
	case tea.KeyMsg:
		if msg.String() == "enter" {
			scr := drill.New(DrillOptions(d.opts, d.line))
			return d, func() tea.Msg { return router.ReplaceScreenMsg{Screen: scr} }
		}
	}
	return d, nil
}

func (d *LineDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Drill this line"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *LineDetailScreen) View(width, height int) string {
	l := d.line
	contentWidth := min(width-8, 70)

	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  " + l.Name))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s", l.Category, l.Type)))
	b.WriteString("\n\n")

	if l.Description != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(l.Description))
		b.WriteString("\n\n")
	}

	side := string(l.Side)
	if side == "" {
		side = string(d.opts.Course.PlayerColor)
	}
	b.WriteString(dimStyle.Render("  Side:      ") + valStyle.Render(side) + "\n")
	b.WriteString(dimStyle.Render("  Length:    ") + valStyle.Render(fmt.Sprintf("%d moves", len(l.Moves))) + "\n")
	if l.StartFEN != "" {
		b.WriteString(dimStyle.Render("  Start:     ") + valStyle.Render(l.StartFEN) + "\n")
	}
	if d.accuracy != nil && d.accuracy.Attempts > 0 {
		b.WriteString(dimStyle.Render("  Accuracy:  ") + valStyle.Render(
			fmt.Sprintf("%.0f%% over %d attempts", d.accuracy.Accuracy*100, d.accuracy.Attempts)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(heading.Render("  Moves"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(theme.Text).
		PaddingLeft(2).
		Render(course.FormatMoves(l.Moves, blackToMove(d.opts.Course.StartFor(l)))))
	b.WriteString("\n\n")

	if c := d.card; c != nil {
		b.WriteString(heading.Render("  Review card"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  Phase:     ") + valStyle.Render(string(c.Difficulty)) + "\n")
		b.WriteString(dimStyle.Render("  Hints:     ") + valStyle.Render(hintLabel(c.HintStage)) + "\n")
		b.WriteString(dimStyle.Render("  Interval:  ") + valStyle.Render(fmt.Sprintf("%d day(s), ease %.2f", c.Interval, c.EaseFactor)) + "\n")
		b.WriteString(dimStyle.Render("  Streak:    ") + valStyle.Render(fmt.Sprintf("%d", c.Streak)) + "\n")
		next := "now"
		if !c.IsDue(d.now) {
			next = c.NextReviewAt.Local().Format("Mon Jan 2 15:04")
		}
		b.WriteString(dimStyle.Render("  Next:      ") + valStyle.Render(next) + "\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}

func hintLabel(stage int) string {
	switch stage {
	case 1:
		return "arrows for the next moves"
	case 2:
		return "the piece to move"
	}
	return "none"
}

// blackToMove reports whether the side to move in fen is Black.
func blackToMove(fen string) bool {
	fields := strings.Fields(fen)
	return len(fields) > 1 && fields[1] == "b"
}
