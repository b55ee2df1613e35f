package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/ui/components"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

const titleFull = ` ┌─┐┬ ┬┌─┐┌─┐┌─┐┌┬┐┬─┐┬┬  ┬
 │  ├─┤├┤ └─┐└─┐ ││├┬┘││  │
 └─┘┴ ┴└─┘└─┘└─┘─┴┘┴└─┴┴─┘┴─┘`

const titleCompact = "C H E S S D R I L L"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// dashboard is the stats line under the title.
type dashboard struct {
	Theory    int
	Exercises int
	Due       int
	Testing   int
	// Next is when the next review falls due, set when nothing is due now.
	Next string
}

func renderTitle(courseName string, cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	art := titleFull
	if compact {
		art = titleCompact
	}
	block := lipgloss.JoinVertical(lipgloss.Center,
		style.Render(art),
		"",
		theme.Subtitle.Render(courseName))
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(block)
}

func renderStatsBar(d dashboard, cw int, compact bool) string {
	lineStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	learnedStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	dueStyle := lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var parts []string
	if compact {
		parts = []string{
			lineStyle.Render(fmt.Sprintf("◆%d ◇%d", d.Theory, d.Exercises)),
			learnedStyle.Render(fmt.Sprintf("✓%d", d.Testing)),
		}
	} else {
		parts = []string{
			lineStyle.Render(fmt.Sprintf("◆ %d LINES", d.Theory)),
			lineStyle.Render(fmt.Sprintf("◇ %d EXERCISES", d.Exercises)),
			learnedStyle.Render(fmt.Sprintf("✓ %d LEARNED", d.Testing)),
		}
	}

	switch {
	case d.Due > 0 && compact:
		parts = append(parts, dueStyle.Render(fmt.Sprintf("⏰%d", d.Due)))
	case d.Due > 0:
		parts = append(parts, dueStyle.Render(fmt.Sprintf("⏰ %d DUE", d.Due)))
	case d.Next != "" && !compact:
		parts = append(parts, dimStyle.Render("NEXT IN "+d.Next))
	case !compact:
		parts = append(parts, dimStyle.Render("NONE DUE"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(parts, "  "))
}

func renderMenu(menu components.Menu, cw int, compact bool) string {
	if compact {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(menu.View())
	}

	disabled := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, item := range menu.Items {
		label := item.Label
		if item.Badge != "" {
			label += " · " + item.Badge
		}
		if item.Disabled {
			buttons = append(buttons, disabled.Render(label))
			continue
		}
		buttons = append(buttons, components.Button(label, i == menu.Selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderNote renders a dim one-line notice.
func renderNote(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}
