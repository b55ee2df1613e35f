package board

import (
	"strings"
	"testing"

	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/trainer"
)

const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

func TestParse_Orientation(t *testing.T) {
	tests := []struct {
		name        string
		orientation rules.Color
		topLeft     string
		bottomRight string
	}{
		{"white", rules.White, "a8", "h1"},
		{"black", rules.Black, "h1", "a8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(rules.StartFEN, tt.orientation)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got := g[0][0].Square; got != tt.topLeft {
				t.Errorf("top-left = %q, want %q", got, tt.topLeft)
			}
			if got := g[7][7].Square; got != tt.bottomRight {
				t.Errorf("bottom-right = %q, want %q", got, tt.bottomRight)
			}
		})
	}
}

func TestParse_Pieces(t *testing.T) {
	g, err := Parse(afterE4, rules.White)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	find := func(sq string) Cell {
		for _, row := range g {
			for _, c := range row {
				if c.Square == sq {
					return c
				}
			}
		}
		t.Fatalf("square %s not in grid", sq)
		return Cell{}
	}

	if c := find("e4"); c.Piece != rules.Pawn || c.Color != rules.White {
		t.Errorf("e4 = %v %v, want white pawn", c.Color, c.Piece)
	}
	if c := find("e2"); !c.Empty() {
		t.Errorf("e2 should be empty, got %v", c.Piece)
	}
	if c := find("d8"); c.Piece != rules.Queen || c.Color != rules.Black {
		t.Errorf("d8 = %v %v, want black queen", c.Color, c.Piece)
	}
	if c := find("a1"); c.Light {
		t.Error("a1 should be a dark square")
	}
	if c := find("h1"); !c.Light {
		t.Error("h1 should be a light square")
	}
	if got := g.King(rules.Black); got != "e8" {
		t.Errorf("King(black) = %q, want e8", got)
	}
}

func TestParse_BadFEN(t *testing.T) {
	if _, err := Parse("not a fen", rules.White); err == nil {
		t.Error("expected error for malformed FEN")
	}
}

func TestRender(t *testing.T) {
	out, err := Render(rules.StartFEN, Options{
		Coordinates: true,
		Shapes:      []trainer.Shape{{From: "e2", To: "e4", Brush: trainer.BrushGreen}},
		Cursor:      "e2",
		Selected:    "e2",
		Targets:     []string{"e3", "e4"},
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	pieces := 0
	for _, g := range glyphs {
		pieces += strings.Count(out, g)
	}
	if pieces != 32 {
		t.Errorf("rendered %d pieces, want 32", pieces)
	}
	if got := strings.Count(out, "•"); got != 2 {
		t.Errorf("rendered %d target dots, want 2", got)
	}
	if lines := strings.Split(out, "\n"); len(lines) != 9 {
		t.Errorf("rendered %d lines, want 9 (8 ranks + file labels)", len(lines))
	}
	if !strings.Contains(out, " a ") || !strings.Contains(out, "8 ") {
		t.Error("expected coordinate labels")
	}
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		name        string
		from        string
		dx, dy      int
		orientation rules.Color
		want        string
	}{
		{"start white", "", 0, 0, rules.White, "e1"},
		{"start black", "", 0, 0, rules.Black, "e8"},
		{"up as white", "e2", 0, 1, rules.White, "e3"},
		{"up as black", "e7", 0, 1, rules.Black, "e6"},
		{"right as black", "e7", 1, 0, rules.Black, "d7"},
		{"clamped", "h8", 1, 1, rules.White, "h8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoveCursor(tt.from, tt.dx, tt.dy, tt.orientation); got != tt.want {
				t.Errorf("MoveCursor(%q, %d, %d) = %q, want %q", tt.from, tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestArrows(t *testing.T) {
	shapes := []trainer.Shape{
		{From: "g1", To: "f3", Brush: trainer.BrushGreen},
		{From: "f3", Brush: trainer.BrushRed},
	}
	got := Arrows(shapes)
	if len(got) != 1 || got[0] != "g1→f3" {
		t.Errorf("Arrows() = %v, want [g1→f3]", got)
	}
}
