package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, walnut and felt
var (
	Primary   = lipgloss.Color("#D97706") // Amber
	Secondary = lipgloss.Color("#0EA5E9") // Sky
	Accent    = lipgloss.Color("#A855F7") // Violet
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Board colors
var (
	LightSquare = lipgloss.Color("#EEDAB5")
	DarkSquare  = lipgloss.Color("#B58863")
	WhitePiece  = lipgloss.Color("#FFFFFF")
	BlackPiece  = lipgloss.Color("#111111")
	LastMove    = lipgloss.Color("#CDD26A")
	CheckSquare = lipgloss.Color("#E06C5B")
)

// Brush maps a shape brush name to a square tint.
func Brush(name string) color.Color {
	switch name {
	case "green":
		return lipgloss.Color("#7FB77E")
	case "yellow":
		return lipgloss.Color("#E3C75F")
	case "blue":
		return lipgloss.Color("#6FA8DC")
	case "red":
		return lipgloss.Color("#D9665B")
	}
	return LastMove
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)
)
