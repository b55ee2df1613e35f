// Package course defines opening courses and the lines they contain, and
// loads them from JSON, YAML or PGN sources.
package course

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/abhisek/chessdrill/internal/rules"
)

// AllCategories is the synthetic category that selects every line.
const AllCategories = "All Categories"

// LineType distinguishes study material from self-test material.
type LineType string

const (
	TypeTheory   LineType = "theory"
	TypeExercise LineType = "exercise"
)

// Side is the side a line trains.
type Side string

const (
	SideWhite  Side = "white"
	SideBlack  Side = "black"
	SideEither Side = "either"
)

// SideOf converts a color to a Side.
func SideOf(c rules.Color) Side {
	if c == rules.Black {
		return SideBlack
	}
	return SideWhite
}

// Color returns the trained color. ok is false for SideEither.
func (s Side) Color() (rules.Color, bool) {
	switch s {
	case SideWhite:
		return rules.White, true
	case SideBlack:
		return rules.Black, true
	}
	return "", false
}

// Arrow is an authored arrow annotation.
type Arrow struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Color string `json:"color" yaml:"color"`
}

// Highlight is an authored square annotation.
type Highlight struct {
	Square string `json:"square" yaml:"square"`
	Color  string `json:"color" yaml:"color"`
}

// Annotations holds the arrows and highlights authored for a line.
type Annotations struct {
	Arrows     []Arrow     `json:"arrows,omitempty" yaml:"arrows,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Empty reports whether there is nothing to draw.
func (a *Annotations) Empty() bool {
	return a == nil || (len(a.Arrows) == 0 && len(a.Highlights) == 0)
}

// Line is one authored move sequence. Lines are immutable once loaded.
type Line struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	StartFEN    string       `json:"startingFen,omitempty" yaml:"startingFen,omitempty"`
	Moves       []string     `json:"moves" yaml:"moves"`
	Comments    []string     `json:"comments,omitempty" yaml:"comments,omitempty"`
	Type        LineType     `json:"type,omitempty" yaml:"type,omitempty"`
	Side        Side         `json:"side,omitempty" yaml:"side,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Comment returns the comment attached to move i, if any.
func (l *Line) Comment(i int) string {
	if i < 0 || i >= len(l.Comments) {
		return ""
	}
	return l.Comments[i]
}

// Course is a named collection of lines for one player color.
type Course struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Author      string      `json:"author,omitempty" yaml:"author,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	PlayerColor rules.Color `json:"playerColor" yaml:"playerColor"`
	Orientation rules.Color `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	StartFEN    string      `json:"startingFen,omitempty" yaml:"startingFen,omitempty"`
	Lines       []Line      `json:"lines" yaml:"lines"`
}

// StartFor returns the position a line starts from.
func (c *Course) StartFor(l *Line) string {
	switch {
	case l != nil && l.StartFEN != "":
		return l.StartFEN
	case c.StartFEN != "":
		return c.StartFEN
	}
	return rules.StartFEN
}

// Line looks a line up by id.
func (c *Course) Line(id string) (*Line, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// LinesOfType returns the lines of the given type in authored order.
func (c *Course) LinesOfType(t LineType) []*Line {
	var out []*Line
	for i := range c.Lines {
		if c.Lines[i].Type == t {
			out = append(out, &c.Lines[i])
		}
	}
	return out
}

// Categories returns the distinct categories of lines in first-seen order.
// When there is more than one, AllCategories is listed first.
func Categories(lines []*Line) []string {
	seen := make(map[string]bool)
	var cats []string
	for _, l := range lines {
		if l.Category == "" || seen[l.Category] {
			continue
		}
		seen[l.Category] = true
		cats = append(cats, l.Category)
	}
	if len(cats) > 1 {
		cats = append([]string{AllCategories}, cats...)
	}
	return cats
}

// DefaultCategory picks AllCategories when offered, else the first category.
func DefaultCategory(cats []string) string {
	for _, c := range cats {
		if c == AllCategories {
			return c
		}
	}
	if len(cats) > 0 {
		return cats[0]
	}
	return ""
}

// FilterCategory returns lines in category. An empty category or
// AllCategories returns every line.
func FilterCategory(lines []*Line, category string) []*Line {
	if category == "" || category == AllCategories {
		return lines
	}
	var out []*Line
	for _, l := range lines {
		if l.Category == category {
			out = append(out, l)
		}
	}
	return out
}

// LineID derives a stable id from a line's start position and moves.
func LineID(startFEN string, moves []string) string {
	h := sha1.New()
	h.Write([]byte(startFEN))
	for _, m := range moves {
		h.Write([]byte{' '})
		h.Write([]byte(rules.NormalizeSAN(m)))
	}
	return "line-" + hex.EncodeToString(h.Sum(nil))[:12]
}

// Slug turns a display name into an identifier.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FormatMoves numbers SAN moves the way a scoresheet does: "1.e4 e5 2.Nf3",
// or "1...e5 2.Nf3" when Black moves first.
func FormatMoves(moves []string, blackFirst bool) string {
	var b strings.Builder
	ply := 0
	if blackFirst {
		ply = 1
	}
	for i, m := range moves {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case ply%2 == 0:
			fmt.Fprintf(&b, "%d.", ply/2+1)
		case i == 0:
			fmt.Fprintf(&b, "%d...", ply/2+1)
		}
		b.WriteString(m)
		ply++
	}
	return b.String()
}
