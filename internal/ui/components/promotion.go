package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

var promotionPieces = []struct {
	piece rules.Piece
	key   string
	label string
}{
	{rules.Queen, "q", "Queen"},
	{rules.Rook, "r", "Rook"},
	{rules.Bishop, "b", "Bishop"},
	{rules.Knight, "n", "Knight"},
}

// PromotionPicker asks which piece a pawn promotes to. Chosen is set once
// the learner picks; Canceled once they back out.
type PromotionPicker struct {
	Selected int
	Chosen   rules.Piece
	Canceled bool
}

func NewPromotionPicker() PromotionPicker {
	return PromotionPicker{}
}

// Done reports whether the picker has an answer.
func (p PromotionPicker) Done() bool {
	return p.Chosen != rules.NoPiece || p.Canceled
}

func (p PromotionPicker) Update(msg tea.Msg) (PromotionPicker, tea.Cmd) {
	if p.Done() {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k", "left", "h":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j", "right", "l":
		if p.Selected < len(promotionPieces)-1 {
			p.Selected++
		}
	case "enter":
		p.Chosen = promotionPieces[p.Selected].piece
	case "esc":
		p.Canceled = true
	default:
		for i, opt := range promotionPieces {
			if key == opt.key {
				p.Selected = i
				p.Chosen = opt.piece
			}
		}
	}
	return p, nil
}

func (p PromotionPicker) View() string {
	s := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Promote to") + "\n\n"
	for i, opt := range promotionPieces {
		line := fmt.Sprintf("  %s)  %s", opt.key, opt.label)
		if i == p.Selected {
			line = fmt.Sprintf("▸ %s)  %s", opt.key, opt.label)
			s += theme.Selected.Render(line) + "\n"
			continue
		}
		s += theme.Unselected.Render(line) + "\n"
	}
	return s
}
