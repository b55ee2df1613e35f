package rules

import (
	"fmt"
	"sort"

	"github.com/notnil/chess"
)

// ChessEngine implements Engine on top of github.com/notnil/chess.
//
// notnil/chess has no undo, so the engine keeps the loaded FEN and the applied
// moves and rebuilds the game when a move is taken back.
type ChessEngine struct {
	startFEN string
	game     *chess.Game
	moves    []*chess.Move
	sans     []string
}

var _ Engine = (*ChessEngine)(nil)

// NewEngine returns an engine set to the standard initial position.
func NewEngine() *ChessEngine {
	e := &ChessEngine{}
	e.Reset()
	return e
}

func newGame(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse FEN %q: %w", fen, err)
	}
	return chess.NewGame(opt), nil
}

// LoadPosition replaces the current game with one starting at fen. An empty
// fen loads the standard position.
func (e *ChessEngine) LoadPosition(fen string) error {
	if fen == "" {
		fen = StartFEN
	}
	g, err := newGame(fen)
	if err != nil {
		return err
	}
	e.startFEN = fen
	e.game = g
	e.moves = nil
	e.sans = nil
	return nil
}

// Reset loads the standard initial position.
func (e *ChessEngine) Reset() {
	_ = e.LoadPosition(StartFEN)
}

func (e *ChessEngine) ApplyMove(from, to string, promo Piece) (*MoveResult, error) {
	s1, err := square(from)
	if err != nil {
		return nil, err
	}
	s2, err := square(to)
	if err != nil {
		return nil, err
	}
	want := pieceType(promo)
	for _, m := range e.game.ValidMoves() {
		if m.S1() == s1 && m.S2() == s2 && m.Promo() == want {
			return e.apply(m)
		}
	}
	return nil, fmt.Errorf("%w: %s%s%s", ErrIllegalMove, from, to, promo)
}

func (e *ChessEngine) ApplySAN(san string) (*MoveResult, error) {
	pos := e.game.Position()
	var notation chess.AlgebraicNotation
	for _, m := range e.game.ValidMoves() {
		if SameMove(notation.Encode(pos, m), san) {
			return e.apply(m)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrIllegalMove, san)
}

func (e *ChessEngine) apply(m *chess.Move) (*MoveResult, error) {
	pos := e.game.Position()
	san := chess.AlgebraicNotation{}.Encode(pos, m)
	if err := e.game.Move(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIllegalMove, san, err)
	}
	e.moves = append(e.moves, m)
	e.sans = append(e.sans, san)

	return &MoveResult{
		From:      m.S1().String(),
		To:        m.S2().String(),
		SAN:       san,
		Promotion: fromPieceType(m.Promo()),
		Capture:   m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant),
		Check:     m.HasTag(chess.Check),
		Checkmate: e.game.Method() == chess.Checkmate,
		FEN:       e.game.Position().String(),
	}, nil
}

// Undo takes back the last move. It returns false when there is nothing to undo.
func (e *ChessEngine) Undo() bool {
	if len(e.moves) == 0 {
		return false
	}
	g, err := newGame(e.startFEN)
	if err != nil {
		return false
	}
	keep := e.moves[:len(e.moves)-1]
	for _, m := range keep {
		if err := g.Move(m); err != nil {
			return false
		}
	}
	e.game = g
	e.moves = keep
	e.sans = e.sans[:len(e.sans)-1]
	return true
}

func (e *ChessEngine) LegalDestinations(sq string) []string {
	s, err := square(sq)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, m := range e.game.ValidMoves() {
		if m.S1() != s {
			continue
		}
		to := m.S2().String()
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	sort.Strings(out)
	return out
}

func (e *ChessEngine) Dests() map[string][]string {
	dests := make(map[string][]string)
	seen := make(map[string]bool)
	for _, m := range e.game.ValidMoves() {
		from, to := m.S1().String(), m.S2().String()
		// promotion variants share a destination
		if seen[from+to] {
			continue
		}
		seen[from+to] = true
		dests[from] = append(dests[from], to)
	}
	for from := range dests {
		sort.Strings(dests[from])
	}
	return dests
}

func (e *ChessEngine) Turn() Color {
	if e.game.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

// IsCheck reports whether the side to move is in check. Positions loaded
// directly from FEN with no moves applied report false.
func (e *ChessEngine) IsCheck() bool {
	if e.IsCheckmate() {
		return true
	}
	if len(e.moves) == 0 {
		return false
	}
	return e.moves[len(e.moves)-1].HasTag(chess.Check)
}

func (e *ChessEngine) IsCheckmate() bool {
	return e.game.Position().Status() == chess.Checkmate
}

func (e *ChessEngine) IsStalemate() bool {
	return e.game.Position().Status() == chess.Stalemate
}

func (e *ChessEngine) IsDraw() bool {
	return e.IsStalemate() || e.game.Outcome() == chess.Draw
}

func (e *ChessEngine) FEN() string {
	return e.game.Position().String()
}

func (e *ChessEngine) History() []string {
	out := make([]string, len(e.sans))
	copy(out, e.sans)
	return out
}

// IsPromotion reports whether moving the piece on from to to is a pawn
// reaching its last rank.
func (e *ChessEngine) IsPromotion(from, to string) bool {
	piece, color, ok := e.PieceAt(from)
	if !ok || piece != Pawn {
		return false
	}
	_, rank, err := ParseSquare(to)
	if err != nil {
		return false
	}
	return (color == White && rank == 7) || (color == Black && rank == 0)
}

func (e *ChessEngine) PieceAt(sq string) (Piece, Color, bool) {
	s, err := square(sq)
	if err != nil {
		return NoPiece, "", false
	}
	p := e.game.Position().Board().Piece(s)
	if p == chess.NoPiece {
		return NoPiece, "", false
	}
	color := White
	if p.Color() == chess.Black {
		color = Black
	}
	return fromPieceType(p.Type()), color, true
}

func square(s string) (chess.Square, error) {
	file, rank, err := ParseSquare(s)
	if err != nil {
		return chess.NoSquare, err
	}
	return chess.NewSquare(chess.File(file), chess.Rank(rank)), nil
}

func pieceType(p Piece) chess.PieceType {
	switch p {
	case Queen:
		return chess.Queen
	case Rook:
		return chess.Rook
	case Bishop:
		return chess.Bishop
	case Knight:
		return chess.Knight
	case King:
		return chess.King
	case Pawn:
		return chess.Pawn
	}
	return chess.NoPieceType
}

func fromPieceType(t chess.PieceType) Piece {
	switch t {
	case chess.Queen:
		return Queen
	case chess.Rook:
		return Rook
	case chess.Bishop:
		return Bishop
	case chess.Knight:
		return Knight
	case chess.King:
		return King
	case chess.Pawn:
		return Pawn
	}
	return NoPiece
}
