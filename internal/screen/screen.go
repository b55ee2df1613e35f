package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider supplies the right-hand side of the header.
type StatusProvider interface {
	Status() string
}

// Closer is implemented by screens holding resources, such as a running
// drill session, that must be released when the screen leaves the stack.
type Closer interface {
	Close() tea.Cmd
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// EscapeHandler lets a screen claim the Esc key, for instance to cancel a
// prompt, instead of the app popping it.
type EscapeHandler interface {
	HandlesEscape() bool
}
