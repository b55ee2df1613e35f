// Package board draws a chess position in the terminal. Squares are tinted
// for the last move, a king in check, hint shapes and the keyboard cursor.
// Terminals cannot draw arrows, so an arrow tints both of its end squares
// and is also listed in text by Arrows.
package board

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/notnil/chess"

	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/trainer"
	"github.com/abhisek/chessdrill/internal/ui/theme"
)

const files = "abcdefgh"

// Cell is one square of a parsed position.
type Cell struct {
	Square string
	Piece  rules.Piece
	Color  rules.Color
	Light  bool
}

// Empty reports whether no piece stands on the cell.
func (c Cell) Empty() bool { return c.Piece == rules.NoPiece }

// Grid is a position laid out as seen from one side: row 0 is the rank
// furthest from the viewer.
type Grid [8][8]Cell

// Options controls what Render draws on top of the position.
type Options struct {
	Orientation rules.Color
	Turn        rules.Color
	Check       bool
	LastMove    *rules.MoveResult
	Shapes      []trainer.Shape

	// Cursor is the square under the keyboard cursor, Selected the square
	// picked as the origin of a move and Targets its legal destinations.
	Cursor   string
	Selected string
	Targets  []string

	Coordinates bool
}

// Parse lays out fen from orientation's side of the board.
func Parse(fen string, orientation rules.Color) (Grid, error) {
	var g Grid
	opt, err := chess.FEN(fen)
	if err != nil {
		return g, fmt.Errorf("parse FEN %q: %w", fen, err)
	}
	b := chess.NewGame(opt).Position().Board()

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			file, rank := fileRank(row, col, orientation)
			cell := Cell{
				Square: squareName(file, rank),
				Light:  (file+rank)%2 == 1,
			}
			p := b.Piece(chess.NewSquare(chess.File(file), chess.Rank(rank)))
			if p != chess.NoPiece {
				cell.Piece = piece(p.Type())
				cell.Color = rules.White
				if p.Color() == chess.Black {
					cell.Color = rules.Black
				}
			}
			g[row][col] = cell
		}
	}
	return g, nil
}

// King returns the square of color's king, or "" when absent.
func (g Grid) King(c rules.Color) string {
	for _, row := range g {
		for _, cell := range row {
			if cell.Piece == rules.King && cell.Color == c {
				return cell.Square
			}
		}
	}
	return ""
}

func fileRank(row, col int, orientation rules.Color) (file, rank int) {
	if orientation == rules.Black {
		return 7 - col, row
	}
	return col, 7 - row
}

func squareName(file, rank int) string {
	return string(files[file]) + string(rune('1'+rank))
}

func piece(t chess.PieceType) rules.Piece {
	switch t {
	case chess.King:
		return rules.King
	case chess.Queen:
		return rules.Queen
	case chess.Rook:
		return rules.Rook
	case chess.Bishop:
		return rules.Bishop
	case chess.Knight:
		return rules.Knight
	case chess.Pawn:
		return rules.Pawn
	}
	return rules.NoPiece
}

var glyphs = map[rules.Piece]string{
	rules.King:   "♚",
	rules.Queen:  "♛",
	rules.Rook:   "♜",
	rules.Bishop: "♝",
	rules.Knight: "♞",
	rules.Pawn:   "♟",
}

// Glyph returns the symbol drawn for a piece.
func Glyph(p rules.Piece) string { return glyphs[p] }

// MoveCursor steps from sq by dx files and dy ranks as the viewer sees the
// board, clamping at the edges. An empty sq starts from the viewer's e-file
// home square.
func MoveCursor(sq string, dx, dy int, orientation rules.Color) string {
	file, rank, err := rules.ParseSquare(sq)
	if err != nil {
		if orientation == rules.Black {
			return "e8"
		}
		return "e1"
	}
	if orientation == rules.Black {
		dx, dy = -dx, -dy
	}
	file = clamp(file+dx, 0, 7)
	rank = clamp(rank+dy, 0, 7)
	return squareName(file, rank)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Render draws the position with the decorations in opts.
func Render(fen string, opts Options) (string, error) {
	if opts.Orientation == "" {
		opts.Orientation = rules.White
	}
	g, err := Parse(fen, opts.Orientation)
	if err != nil {
		return "", err
	}

	tints := squareTints(g, opts)
	targets := make(map[string]bool, len(opts.Targets))
	for _, sq := range opts.Targets {
		targets[sq] = true
	}

	var sb strings.Builder
	for row := 0; row < 8; row++ {
		if opts.Coordinates {
			_, rank := fileRank(row, 0, opts.Orientation)
			sb.WriteString(theme.Hint.Render(fmt.Sprintf("%d ", rank+1)))
		}
		for col := 0; col < 8; col++ {
			cell := g[row][col]
			sb.WriteString(renderCell(cell, tints[cell.Square], targets[cell.Square]))
		}
		sb.WriteString("\n")
	}
	if opts.Coordinates {
		sb.WriteString("  ")
		for col := 0; col < 8; col++ {
			file, _ := fileRank(0, col, opts.Orientation)
			sb.WriteString(theme.Hint.Render(" " + string(files[file]) + " "))
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// squareTints picks each decorated square's background. Later layers win:
// last move, shapes, check, selection, cursor.
func squareTints(g Grid, opts Options) map[string]color.Color {
	tints := make(map[string]color.Color)
	if m := opts.LastMove; m != nil {
		tints[m.From] = theme.LastMove
		tints[m.To] = theme.LastMove
	}
	for _, s := range opts.Shapes {
		tints[s.From] = theme.Brush(s.Brush)
		if s.IsArrow() {
			tints[s.To] = theme.Brush(s.Brush)
		}
	}
	if opts.Check {
		if k := g.King(opts.Turn); k != "" {
			tints[k] = theme.CheckSquare
		}
	}
	if opts.Selected != "" {
		tints[opts.Selected] = theme.Secondary
	}
	if opts.Cursor != "" {
		tints[opts.Cursor] = theme.Accent
	}
	return tints
}

func renderCell(cell Cell, tint color.Color, target bool) string {
	bg := color.Color(theme.DarkSquare)
	if cell.Light {
		bg = theme.LightSquare
	}
	if tint != nil {
		bg = tint
	}
	style := lipgloss.NewStyle().Background(bg)

	switch {
	case !cell.Empty():
		fg := theme.WhitePiece
		if cell.Color == rules.Black {
			fg = theme.BlackPiece
		}
		return style.Foreground(fg).Bold(true).Render(" " + Glyph(cell.Piece) + " ")
	case target:
		return style.Foreground(theme.BgDark).Render(" • ")
	}
	return style.Render("   ")
}

// Arrows lists the arrow shapes as text, e.g. "e2→e4".
func Arrows(shapes []trainer.Shape) []string {
	var out []string
	for _, s := range shapes {
		if s.IsArrow() {
			out = append(out, s.From+"→"+s.To)
		}
	}
	return out
}
