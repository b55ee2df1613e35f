package course

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Variation is what a Namer sees of an imported line.
type Variation struct {
	Number    int // 0 for main lines
	Moves     []string
	BranchPly int // first ply that differs from an earlier line
	Comment   string
	Opening   string
	Event     string
	ECO       string
}

// Own returns the moves played after the branch point.
func (v Variation) Own() []string {
	if v.BranchPly >= len(v.Moves) {
		return nil
	}
	return v.Moves[v.BranchPly:]
}

// Naming is a display name and category for a line.
type Naming struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Namer names imported lines.
type Namer interface {
	Name(ctx context.Context, v Variation) (Naming, error)
}

// HeuristicNamer derives names from PGN tags and comments.
type HeuristicNamer struct{}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:The\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*?\s+(?:Defense|Defence|Attack|Gambit|System|Line|Variation))`),
	regexp.MustCompile(`^([A-Z][^.!?\[\]]{3,40}?)(?:[.!?\[]|$)`),
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"Defense", []string{"Defense", "Defence", "Defensive"}},
	{"Attack", []string{"Attack", "Attacking", "Aggressive"}},
	{"Gambit", []string{"Gambit"}},
	{"Trap", []string{"Trap", "Tricky"}},
	{"Endgame", []string{"Endgame", "Ending"}},
	{"Opening", []string{"Opening", "Debut"}},
}

func (HeuristicNamer) Name(_ context.Context, v Variation) (Naming, error) {
	if v.Number == 0 {
		name := firstNonEmpty(v.Opening, v.Event, "Main Line")
		return Naming{Name: name, Category: firstNonEmpty(v.ECO, "Main Lines")}, nil
	}

	n := Naming{Name: fmt.Sprintf("Variation %d", v.Number)}
	if label := labelFromComment(v.Comment); label != "" {
		n.Name += ": " + label
	} else if own := v.Own(); len(own) > 0 {
		if len(own) > 2 {
			own = own[:2]
		}
		n.Name += ": " + strings.Join(own, " ")
	}

	n.Category = firstNonEmpty(v.ECO, "Variations")
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(v.Comment, w) {
				n.Category = ck.category
				return n, nil
			}
		}
	}
	return n, nil
}

func labelFromComment(comment string) string {
	if comment == "" {
		return ""
	}
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(comment); m != nil && m[1] != "" {
			return strings.TrimRight(strings.TrimSpace(m[1]), ".!?")
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
