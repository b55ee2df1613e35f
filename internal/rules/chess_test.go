package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine_StartPosition(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, StartFEN, e.FEN())
	assert.Equal(t, White, e.Turn())
	assert.Empty(t, e.History())
	assert.False(t, e.IsCheck())
}

func TestApplyMove_Legal(t *testing.T) {
	e := NewEngine()
	res, err := e.ApplyMove("e2", "e4", NoPiece)
	require.NoError(t, err)
	assert.Equal(t, "e4", res.SAN)
	assert.Equal(t, "e2", res.From)
	assert.Equal(t, "e4", res.To)
	assert.False(t, res.Capture)
	assert.Equal(t, Black, e.Turn())
	assert.Equal(t, []string{"e4"}, e.History())
}

func TestApplyMove_Illegal(t *testing.T) {
	e := NewEngine()
	before := e.FEN()
	_, err := e.ApplyMove("e2", "e5", NoPiece)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalMove))
	assert.Equal(t, before, e.FEN())

	_, err = e.ApplyMove("z9", "e4", NoPiece)
	assert.True(t, errors.Is(err, ErrInvalidSquare))
}

func TestApplySAN(t *testing.T) {
	e := NewEngine()
	for _, san := range []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"} {
		_, err := e.ApplySAN(san)
		require.NoError(t, err, san)
	}
	assert.Len(t, e.History(), 6)

	_, err := e.ApplySAN("Qxf7")
	assert.True(t, errors.Is(err, ErrIllegalMove))
}

func TestApplySAN_IgnoresCheckMarkers(t *testing.T) {
	e := NewEngine()
	for _, san := range []string{"e4", "e5", "Bc4", "Nc6", "Qh5", "Nf6"} {
		_, err := e.ApplySAN(san)
		require.NoError(t, err)
	}
	res, err := e.ApplySAN("Qxf7")
	require.NoError(t, err)
	assert.Equal(t, "Qxf7#", res.SAN)
	assert.True(t, res.Checkmate)
	assert.True(t, res.Capture)
	assert.True(t, e.IsCheckmate())
	assert.True(t, e.IsCheck())
}

func TestUndo(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.Undo())

	_, err := e.ApplySAN("d4")
	require.NoError(t, err)
	after := e.FEN()
	_, err = e.ApplySAN("d5")
	require.NoError(t, err)

	require.True(t, e.Undo())
	assert.Equal(t, after, e.FEN())
	assert.Equal(t, []string{"d4"}, e.History())

	require.True(t, e.Undo())
	assert.Equal(t, StartFEN, e.FEN())
}

func TestLoadPosition(t *testing.T) {
	e := NewEngine()
	fen := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
	require.NoError(t, e.LoadPosition(fen))
	assert.Equal(t, White, e.Turn())

	_, err := e.ApplySAN("Nf3")
	require.NoError(t, err)
	require.True(t, e.Undo())
	assert.Equal(t, fen, e.FEN())

	assert.Error(t, e.LoadPosition("not a fen"))
	assert.Equal(t, fen, e.FEN(), "failed load keeps the current game")
}

func TestLegalDestinations(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, []string{"f3", "h3"}, e.LegalDestinations("g1"))
	assert.Equal(t, []string{"e3", "e4"}, e.LegalDestinations("e2"))
	assert.Empty(t, e.LegalDestinations("e7"))

	dests := e.Dests()
	assert.Len(t, dests, 10) // 8 pawns + 2 knights
}

func TestPromotion(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadPosition("8/4P3/8/8/8/8/k7/4K3 w - - 0 1"))
	assert.True(t, e.IsPromotion("e7", "e8"))
	assert.False(t, e.IsPromotion("e1", "e2"))
	assert.Equal(t, []string{"e8"}, e.Dests()["e7"])

	_, err := e.ApplyMove("e7", "e8", NoPiece)
	assert.True(t, errors.Is(err, ErrIllegalMove), "promotion requires a piece")

	res, err := e.ApplyMove("e7", "e8", Knight)
	require.NoError(t, err)
	assert.Equal(t, "e8=N", res.SAN)
	assert.Equal(t, Knight, res.Promotion)

	piece, color, ok := e.PieceAt("e8")
	require.True(t, ok)
	assert.Equal(t, Knight, piece)
	assert.Equal(t, White, color)
}

func TestStalemate(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadPosition("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	assert.True(t, e.IsStalemate())
	assert.True(t, e.IsDraw())
	assert.False(t, e.IsCheckmate())
}

func TestNormalizeSAN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nf3", "Nf3"},
		{"Nf3+", "Nf3"},
		{"Qxf7#", "Qxf7"},
		{"exd5!?", "exd5"},
		{" e4 ", "e4"},
		{"0-0", "O-O"},
		{"0-0-0+", "O-O-O"},
	}
	for _, tt := range tests {
		if got := NormalizeSAN(tt.in); got != tt.want {
			t.Errorf("NormalizeSAN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUCI(t *testing.T) {
	from, to, promo, err := ParseUCI("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, "e7", from)
	assert.Equal(t, "e8", to)
	assert.Equal(t, Queen, promo)

	_, _, _, err = ParseUCI("e2")
	assert.Error(t, err)
	_, _, _, err = ParseUCI("e7e8x")
	assert.Error(t, err)
}
