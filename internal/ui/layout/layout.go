// Package layout draws the frame around every screen: a header bar with
// the screen title and drill status, and a footer bar of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/ui/theme"
)

// The drill screen puts an 8x8 board with coordinates beside the move list,
// which needs this much room.
const (
	MinWidth  = 80
	MinHeight = 24
)

// barChrome is the border plus padding a bar adds around its content.
const barChrome = 4

// KeyHint is a key and what it does, shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"The board needs a bigger terminal.\n\nResize to at least %d x %d\n(now %d x %d)",
			MinWidth, MinHeight, width, height,
		))
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderHeader centres title between the app name and status. When the
// three do not fit, status gives way first and then the title.
func RenderHeader(title, status string, width int) string {
	inner := max(width-barChrome, 0)
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  ♞ chessdrill")
	room := max(inner-lipgloss.Width(brand)-2, 0)

	status = truncate(status, room/3)
	title = truncate(title, room-lipgloss.Width(status))

	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	bw, cw, rw := lipgloss.Width(brand), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max(min((inner-cw)/2-bw, inner-bw-cw-rw-1), 1)
	rightGap := max(inner-bw-leftGap-cw-rw, 1)

	return bar(brand+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter lays out hints left to right. Hints that do not fit are
// dropped from the middle so the last one, normally Quit, always shows.
func RenderFooter(hints []KeyHint, width int) string {
	return bar("  "+fitHints(hints, max(width-barChrome-2, 0)), width)
}

const hintGap = "   "

func fitHints(hints []KeyHint, room int) string {
	if len(hints) == 0 {
		return ""
	}
	last := hints[len(hints)-1].render()
	used := lipgloss.Width(last)

	var parts []string
	for _, h := range hints[:len(hints)-1] {
		r := h.render()
		w := lipgloss.Width(r) + len(hintGap)
		if used+w > room {
			break
		}
		parts = append(parts, r)
		used += w
	}
	return strings.Join(append(parts, last), hintGap)
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// RenderFrame stacks header, content and footer, padding content to fill
// the rows between them.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).MaxHeight(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
