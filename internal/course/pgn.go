package course

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/notnil/chess"

	"github.com/abhisek/chessdrill/internal/rules"
)

// ImportOptions configures PGN conversion.
type ImportOptions struct {
	// Namer names main lines and variations. Defaults to HeuristicNamer.
	Namer  Namer
	Logger *slog.Logger
}

// ImportPGN converts a PGN stream into a course. Every game and every
// variation becomes a theory line. Lines are not validated here beyond what
// the PGN decoder enforces; call Validate on the result.
func ImportPGN(r io.Reader, opts ImportOptions) (*Course, error) {
	return ImportPGNContext(context.Background(), r, opts)
}

// ImportPGNContext is ImportPGN with a context for namers that call out.
func ImportPGNContext(ctx context.Context, r io.Reader, opts ImportOptions) (*Course, error) {
	namer := opts.Namer
	if namer == nil {
		namer = HeuristicNamer{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scanner := chess.NewScannerWithOptions(r, chess.ScannerOpts{ExpandVariations: true})

	var c *Course
	var seen [][]string
	ids := make(map[string]bool)
	variation := 0

	for scanner.Scan() {
		g := scanner.Next()
		if c == nil {
			c = courseFromTags(g)
		}

		moves, comments := sanMoves(g)
		if len(moves) == 0 {
			continue
		}
		start := ""
		if tag(g, "FEN") != "" {
			start = g.Positions()[0].String()
		}
		id := LineID(firstNonEmpty(start, c.StartFEN, rules.StartFEN), moves)
		if ids[id] {
			continue
		}
		ids[id] = true

		branch := branchPly(seen, moves)
		seen = append(seen, moves)

		v := Variation{
			Moves:     moves,
			BranchPly: branch,
			Opening:   tag(g, "Opening"),
			Event:     tag(g, "Event"),
			ECO:       tag(g, "ECO"),
		}
		if branch > 0 {
			variation++
			v.Number = variation
		}
		if branch < len(comments) {
			v.Comment, _ = ParseComment(comments[branch])
		}

		naming, err := namer.Name(ctx, v)
		if err != nil {
			logger.Warn("namer failed, using heuristics", "line", id, "error", err)
			naming, _ = HeuristicNamer{}.Name(ctx, v)
		}

		l := Line{
			ID:       id,
			Name:     naming.Name,
			Category: naming.Category,
			StartFEN: start,
			Moves:    moves,
			Type:     TypeTheory,
			Side:     SideOf(c.PlayerColor),
		}
		if v.Number > 0 {
			l.Description = fmt.Sprintf("Variation %d", v.Number)
		} else {
			l.Description = c.Description
		}

		var ann Annotations
		for _, raw := range comments {
			text, a := ParseComment(raw)
			l.Comments = append(l.Comments, text)
			ann.Arrows = append(ann.Arrows, a.Arrows...)
			ann.Highlights = append(ann.Highlights, a.Highlights...)
		}
		if !ann.Empty() {
			l.Annotations = &ann
		}
		c.Lines = append(c.Lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan PGN: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("scan PGN: %w", ErrNoLines)
	}
	logger.Info("imported PGN", "course", c.ID, "lines", len(c.Lines))
	return c, nil
}

func courseFromTags(g *chess.Game) *Course {
	color := rules.White
	switch {
	case strings.Contains(strings.ToLower(tag(g, "White")), "student"):
		color = rules.White
	case strings.Contains(strings.ToLower(tag(g, "Black")), "student"):
		color = rules.Black
	}
	c := &Course{
		Name:        firstNonEmpty(tag(g, "Event"), tag(g, "Opening"), "PGN Course"),
		Author:      firstNonEmpty(tag(g, "White"), tag(g, "Black"), "Unknown"),
		Description: firstNonEmpty(tag(g, "Annotator"), "Imported from PGN"),
		PlayerColor: color,
		Orientation: color,
	}
	c.ID = Slug(c.Name)
	return c
}

// sanMoves returns the game's moves in SAN with the comment following each.
func sanMoves(g *chess.Game) ([]string, []string) {
	var notation chess.AlgebraicNotation
	positions := g.Positions()
	raw := g.Comments()
	moves := g.Moves()

	sans := make([]string, 0, len(moves))
	comments := make([]string, 0, len(moves))
	for i, m := range moves {
		if i >= len(positions) {
			break
		}
		sans = append(sans, notation.Encode(positions[i], m))
		var comment string
		if i < len(raw) {
			comment = strings.Join(raw[i], " ")
		}
		comments = append(comments, comment)
	}
	return sans, comments
}

// branchPly is the length of the longest prefix moves shares with any
// earlier line.
func branchPly(earlier [][]string, moves []string) int {
	best := 0
	for _, prev := range earlier {
		n := 0
		for n < len(prev) && n < len(moves) && rules.SameMove(prev[n], moves[n]) {
			n++
		}
		if n > best {
			best = n
		}
	}
	return best
}

func tag(g *chess.Game, key string) string {
	if tp := g.GetTagPair(key); tp != nil {
		return tp.Value
	}
	return ""
}
