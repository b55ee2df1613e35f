package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/ui/theme"
)

// ProgressBar draws Value (0 to 1) as a horizontal bar.
type ProgressBar struct {
	Label       string
	Value       float64
	ShowPercent bool
	// Graded colours the fill by value: green from 80%, yellow from 50%,
	// red below. Used for accuracy.
	Graded bool
	// Steps, when it fits the width, draws one cell per step instead of a
	// continuous bar, e.g. one per ply of a line.
	Steps int
	Width int
}

func NewProgressBar(label string, value float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Value: value, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) fill() color.Color {
	switch {
	case !p.Graded:
		return theme.Secondary
	case p.Value >= 0.8:
		return theme.Success
	case p.Value >= 0.5:
		return theme.Warning
	}
	return theme.Error
}

func (p ProgressBar) View() string {
	value := min(max(p.Value, 0), 1)

	var label, percent string
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	if p.ShowPercent {
		percent = lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(value*100+0.5)))
	}
	room := max(p.Width-lipgloss.Width(label)-lipgloss.Width(percent), 4)

	on := lipgloss.NewStyle().Foreground(p.fill())
	off := lipgloss.NewStyle().Foreground(theme.Border)

	var bar string
	if p.Steps > 0 && p.Steps*2 <= room {
		done := int(value*float64(p.Steps) + 0.5)
		bar = on.Render(strings.Repeat("■ ", done)) + off.Render(strings.Repeat("□ ", p.Steps-done))
	} else {
		done := int(value * float64(room))
		bar = on.Render(strings.Repeat("━", done)) + off.Render(strings.Repeat("─", room-done))
	}
	return label + bar + percent
}
