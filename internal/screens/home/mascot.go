package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/chessdrill/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // every line is in testing
	MascotAlert                     // several reviews due
)

const mascotIdle = `  ,^.
 (  '\
  |  \
  /   )
 /____\`

const mascotCelebrating = `  ,^.  ★
 (  *\
  |  \
  /   )
 /____\`

const mascotAlert = `  ,^.  !
 (  o\
  |  \
  /   )
 /____\`

// RenderMascot returns the knight art for the given variant.
func RenderMascot(variant ...MascotVariant) string {
	v := MascotIdle
	if len(variant) > 0 {
		v = variant[0]
	}

	art := mascotIdle
	fg := theme.Primary
	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Success
	case MascotAlert:
		art = mascotAlert
		fg = theme.Warning
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
