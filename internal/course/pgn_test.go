package course

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/chessdrill/internal/rules"
)

func TestParseComment(t *testing.T) {
	text, ann := ParseComment("Develop the knight. [%cal Gg1f3,Rd7d5] [%csl Ye4,Bd5]")
	assert.Equal(t, "Develop the knight.", text)
	require.Len(t, ann.Arrows, 2)
	assert.Equal(t, Arrow{From: "g1", To: "f3", Color: "green"}, ann.Arrows[0])
	assert.Equal(t, Arrow{From: "d7", To: "d5", Color: "red"}, ann.Arrows[1])
	require.Len(t, ann.Highlights, 2)
	assert.Equal(t, Highlight{Square: "e4", Color: "yellow"}, ann.Highlights[0])
	assert.Equal(t, Highlight{Square: "d5", Color: "blue"}, ann.Highlights[1])
}

func TestParseComment_Plain(t *testing.T) {
	text, ann := ParseComment("  just   words ")
	assert.Equal(t, "just words", text)
	assert.True(t, ann.Empty())
}

func TestHeuristicNamer(t *testing.T) {
	ctx := context.Background()
	var n HeuristicNamer

	tests := []struct {
		name string
		in   Variation
		want Naming
	}{
		{
			"main line from opening tag",
			Variation{Opening: "Ruy Lopez", ECO: "C60"},
			Naming{Name: "Ruy Lopez", Category: "C60"},
		},
		{
			"main line fallback",
			Variation{},
			Naming{Name: "Main Line", Category: "Main Lines"},
		},
		{
			"variation named from comment",
			Variation{Number: 2, Comment: "The Hungarian Defense is solid."},
			Naming{Name: "Variation 2: Hungarian Defense", Category: "Defense"},
		},
		{
			"variation named from moves",
			Variation{Number: 1, Moves: []string{"e4", "e5", "Nf3", "Nf6", "Nxe5"}, BranchPly: 3},
			Naming{Name: "Variation 1: Nf6 Nxe5", Category: "Variations"},
		},
		{
			"gambit keyword",
			Variation{Number: 3, Comment: "a risky Gambit", ECO: "C44"},
			Naming{Name: "Variation 3: risky Gambit", Category: "Gambit"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Name(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const samplePGN = `[Event "Petrov Study"]
[White "Student"]
[Black "Coach"]
[Opening "Petrov Defense"]
[ECO "C42"]

1. e4 e5 2. Nf3 Nf6 {Symmetrical. [%cal Gf3e5]} 3. Nxe5 (3. Nc3 Nc6) 3... d6 4. Nf3 Nxe4 *
`

func TestImportPGN(t *testing.T) {
	c, err := ImportPGN(strings.NewReader(samplePGN), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Petrov Study", c.Name)
	assert.Equal(t, "petrov-study", c.ID)
	assert.Equal(t, rules.White, c.PlayerColor)
	require.NotEmpty(t, c.Lines)

	main := c.Lines[0]
	assert.Equal(t, "Petrov Defense", main.Name)
	assert.Equal(t, "C42", main.Category)
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nf6", "Nxe5", "d6", "Nf3", "Nxe4"}, main.Moves)
	assert.Equal(t, TypeTheory, main.Type)

	problems, err := Validate(c)
	require.NoError(t, err)
	assert.Empty(t, problems)

	for _, l := range c.Lines[1:] {
		assert.True(t, strings.HasPrefix(l.Name, "Variation"), l.Name)
	}
}

func TestImportPGN_Empty(t *testing.T) {
	_, err := ImportPGN(strings.NewReader(""), ImportOptions{})
	assert.Error(t, err)
}

type stubNamer struct{ calls int }

func (s *stubNamer) Name(_ context.Context, v Variation) (Naming, error) {
	s.calls++
	return Naming{Name: "stub", Category: "Stub"}, nil
}

func TestImportPGN_CustomNamer(t *testing.T) {
	n := &stubNamer{}
	c, err := ImportPGN(strings.NewReader(samplePGN), ImportOptions{Namer: n})
	require.NoError(t, err)
	assert.Equal(t, len(c.Lines), n.calls)
	assert.Equal(t, "stub", c.Lines[0].Name)
}
