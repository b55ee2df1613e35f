package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/ui/theme"
)

type MenuItem struct {
	Label string
	// Key, when set, activates the item directly.
	Key string
	// Badge is drawn dimmed after the label, e.g. "4 due".
	Badge    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. The cursor skips disabled items and
// wraps at both ends.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the cursor by dir (+1 or -1) to the next enabled item.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((m.Selected+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) || m.Items[i].Disabled || m.Items[i].Action == nil {
		return nil
	}
	return m.Items[i].Action()
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		return m, m.activate(m.Selected)
	default:
		for i, item := range m.Items {
			if item.Key != "" && strings.EqualFold(item.Key, key) && !item.Disabled {
				m.Selected = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

// SetBadge updates the badge of the item with the given label.
func (m *Menu) SetBadge(label, badge string) {
	for i := range m.Items {
		if m.Items[i].Label == label {
			m.Items[i].Badge = badge
		}
	}
}

func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	for i, item := range m.Items {
		key := "   "
		if item.Key != "" {
			key = "[" + item.Key + "]"
		}
		switch {
		case i == m.Selected:
			b.WriteString(theme.Selected.Render(" ▸ " + key + " " + item.Label))
		case item.Disabled:
			b.WriteString(dim.Render("   " + key + " " + item.Label))
		default:
			b.WriteString(theme.Unselected.Render("   " + key + " " + item.Label))
		}
		if item.Badge != "" {
			b.WriteString("  " + theme.Hint.Render(item.Badge))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
