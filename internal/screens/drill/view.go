package drill

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/board"
	"github.com/abhisek/chessdrill/internal/ui/components"
	"github.com/abhisek/chessdrill/internal/ui/layout"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

func (s *DrillScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case !s.started:
		return nil
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.promotion != nil:
		return []layout.KeyHint{
			{Key: "Q R B N", Description: "Promote"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Move"},
		{Key: "←↑↓→ Space", Description: "Pick"},
		{Key: "?", Description: "Hint"},
		{Key: "< >", Description: "Step"},
		{Key: "Tab", Description: "Next line"},
		{Key: "M/C/S/F", Description: "Mode/Category/Side/Flip"},
		{Key: "Esc", Description: "End"},
	}
}

func (s *DrillScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderMessage(width, height, theme.Incorrect, "Cannot start drill:\n\n"+s.errMsg)
	}
	if !s.started {
		return renderMessage(width, height, theme.Hint, "Loading course...")
	}
	if s.confirmQuit {
		return renderMessage(width, height, theme.Body, "End this session?\n\n[Y]es   [N]o")
	}
	if s.idle != "" {
		msg := s.idle + "\n\n" + theme.Hint.Render("M switches mode, C switches category, Esc ends the session")
		return renderMessage(width, height, theme.Body, msg)
	}

	b := s.trainer.Board()
	shapes := s.trainer.Shapes()
	view, err := board.Render(b.FEN, board.Options{
		Orientation: b.Orientation,
		Turn:        b.Turn,
		Check:       b.Check,
		LastMove:    b.LastMove,
		Shapes:      shapes,
		Cursor:      s.cursor,
		Selected:    s.selected,
		Targets:     b.Dests[s.selected],
		Coordinates: true,
	})
	if err != nil {
		view = theme.Incorrect.Render(err.Error())
	}

	panelWidth := max(width-lipgloss.Width(view)-6, 24)
	panel := s.renderPanel(b, shapes, panelWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Panel.Render(view), "  ", panel)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *DrillScreen) renderPanel(b trainer.Board, shapes []trainer.Shape, width int) string {
	var sb strings.Builder
	line := s.trainer.CurrentLine()
	p := s.trainer.Progress()

	if line != nil {
		sb.WriteString(theme.Selected.Render(line.Name))
		sb.WriteString("\n")
		meta := line.Category
		if card := s.trainer.ActiveCard(); card != nil {
			meta = fmt.Sprintf("%s · %s", meta, card.Card.Difficulty)
		}
		sb.WriteString(theme.Hint.Render(meta))
		sb.WriteString("\n\n")
	}

	bar := components.NewProgressBar("", float64(p.Line.Percent)/100, false, width-12)
	bar.Steps = p.Line.Total
	sb.WriteString(bar.View())
	sb.WriteString(theme.Hint.Render(fmt.Sprintf("  %d/%d", p.Line.Current, p.Line.Total)))
	sb.WriteString("\n\n")

	sb.WriteString(theme.Body.Render(course.FormatMoves(s.trainer.PlayedMoves(), startsWithBlack(b, len(s.trainer.PlayedMoves())))))
	sb.WriteString("\n\n")

	if arrows := board.Arrows(shapes); len(arrows) > 0 {
		sb.WriteString(theme.Hint.Render("Arrows: " + strings.Join(arrows, " ")))
		sb.WriteString("\n")
	}
	if s.cardNote != "" {
		sb.WriteString(theme.Warn.Render(s.cardNote))
		sb.WriteString("\n")
	}
	if s.comment != "" {
		sb.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Secondary).Italic(true).Render(s.comment))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if s.status != "" {
		style := theme.Body
		switch s.tone {
		case toneGood:
			style = theme.Correct
		case toneBad:
			style = theme.Incorrect
		}
		sb.WriteString(lipgloss.NewStyle().Width(width).Render(style.Render(s.status)))
		sb.WriteString("\n")
	}

	switch {
	case s.promotion != nil:
		sb.WriteString("\n" + s.promotion.View())
	case b.Movable != "":
		sb.WriteString(theme.Hint.Render(fmt.Sprintf("%s to move", b.Movable)))
		sb.WriteString("\n" + s.input.View())
	default:
		sb.WriteString(theme.Hint.Render("..."))
	}
	return sb.String()
}

// startsWithBlack reports whether the first played move was Black's, given
// the side to move after n moves.
func startsWithBlack(b trainer.Board, n int) bool {
	whiteToMove := b.Turn == rules.White
	if n%2 == 0 {
		return !whiteToMove
	}
	return whiteToMove
}

func renderMessage(width, height int, style lipgloss.Style, text string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		style.Align(lipgloss.Center).Render(text))
}
