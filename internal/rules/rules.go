// Package rules adapts a chess rules engine to the narrow surface the
// trainer needs: apply, undo, legal destinations, turn and game status.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrIllegalMove is returned when the engine rejects a move.
var ErrIllegalMove = errors.New("illegal move")

// ErrInvalidSquare is returned for malformed square names.
var ErrInvalidSquare = errors.New("invalid square")

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Piece is a piece kind, used for promotion choices and board rendering.
type Piece string

const (
	NoPiece Piece = ""
	King    Piece = "k"
	Queen   Piece = "q"
	Rook    Piece = "r"
	Bishop  Piece = "b"
	Knight  Piece = "n"
	Pawn    Piece = "p"
)

// ParsePromotion maps user input ("q", "Q", "queen", "=N") to a promotion piece.
func ParsePromotion(s string) (Piece, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "="))
	switch s {
	case "q", "queen":
		return Queen, nil
	case "r", "rook":
		return Rook, nil
	case "b", "bishop":
		return Bishop, nil
	case "n", "knight":
		return Knight, nil
	}
	return NoPiece, fmt.Errorf("unknown promotion piece %q", s)
}

// MoveResult describes a move the engine accepted.
type MoveResult struct {
	From      string
	To        string
	SAN       string
	Promotion Piece
	Capture   bool
	Check     bool
	Checkmate bool
	FEN       string
}

// Engine is the rules engine surface used by the drill and trainer packages.
type Engine interface {
	ApplyMove(from, to string, promo Piece) (*MoveResult, error)
	ApplySAN(san string) (*MoveResult, error)
	Undo() bool
	LegalDestinations(square string) []string
	Dests() map[string][]string
	Turn() Color
	IsCheck() bool
	IsCheckmate() bool
	IsStalemate() bool
	IsDraw() bool
	LoadPosition(fen string) error
	Reset()
	FEN() string
	History() []string
	IsPromotion(from, to string) bool
	PieceAt(square string) (Piece, Color, bool)
}

// NormalizeSAN strips check, mate and annotation glyphs and maps zero-castling
// to letter-O castling so authored and engine notation compare equal.
func NormalizeSAN(san string) string {
	san = strings.TrimSpace(san)
	san = strings.TrimRight(san, "+#!?")
	switch san {
	case "0-0":
		return "O-O"
	case "0-0-0":
		return "O-O-O"
	}
	return san
}

// SameMove reports whether two SAN strings denote the same move.
func SameMove(a, b string) bool {
	return NormalizeSAN(a) == NormalizeSAN(b)
}

// ParseSquare validates a square name like "e4" and returns its file and rank
// indexes (0-based).
func ParseSquare(s string) (file, rank int, err error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return int(s[0] - 'a'), int(s[1] - '1'), nil
}

// ParseUCI splits a coordinate move like "e7e8q" into its parts.
func ParseUCI(s string) (from, to string, promo Piece, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return "", "", NoPiece, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	from, to = s[:2], s[2:4]
	if _, _, err := ParseSquare(from); err != nil {
		return "", "", NoPiece, err
	}
	if _, _, err := ParseSquare(to); err != nil {
		return "", "", NoPiece, err
	}
	if len(s) == 5 {
		promo, err = ParsePromotion(s[4:])
		if err != nil {
			return "", "", NoPiece, err
		}
	}
	return from, to, promo, nil
}
