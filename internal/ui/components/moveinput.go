package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/ui/theme"
)

// moveChars are the characters that can appear in SAN or UCI move text.
const moveChars = "abcdefghKQRBNOo0x+#=-12345678qrbn"

// MoveInput is a single-line prompt for typed moves such as "Nf3", "e2e4"
// or "O-O". Keys that cannot be part of a move are swallowed so they stay
// free for screen shortcuts.
type MoveInput struct {
	Model textinput.Model

	last    string
	flagged bool
	ok      bool
}

// NewMoveInput creates a focused move prompt.
func NewMoveInput(placeholder string) MoveInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 8
	ti.Prompt = "move> "
	ti.Focus()
	return MoveInput{Model: ti}
}

func (m MoveInput) Init() tea.Cmd {
	return m.Model.Focus()
}

// Accepts reports whether a key press would be typed into the prompt.
func (m MoveInput) Accepts(key string) bool {
	if key == "backspace" {
		return true
	}
	return len(key) == 1 && strings.Contains(moveChars, key)
}

// Update forwards accepted keys to the underlying text input.
func (m MoveInput) Update(msg tea.Msg) (MoveInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if !m.Accepts(kmsg.String()) {
			return m, nil
		}
		m.flagged = false
	}
	var cmd tea.Cmd
	m.Model, cmd = m.Model.Update(msg)
	return m, cmd
}

// Take returns the typed move and clears the prompt.
func (m *MoveInput) Take() string {
	v := strings.TrimSpace(m.Model.Value())
	m.Model.SetValue("")
	m.last = v
	return v
}

// Mark decorates the prompt with the verdict on the last submitted move.
func (m *MoveInput) Mark(ok bool) {
	m.flagged = true
	m.ok = ok
}

func (m MoveInput) Value() string { return m.Model.Value() }

func (m MoveInput) View() string {
	view := m.Model.View()
	if m.flagged && m.last != "" {
		if m.ok {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓ "+m.last)
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+m.last)
		}
	}
	return view
}
