package course

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/chessdrill/internal/rules"
)

// ErrNoLines is returned when a course has no trainable lines left.
var ErrNoLines = errors.New("course has no valid lines")

// document is the on-disk layout. It accepts both the flat form
// ({lines: [...]}) and the sectioned form ({theory: {lines}, exercises: ...}).
// JSON files are read through the YAML decoder too.
type document struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Author      string    `yaml:"author"`
	Description string    `yaml:"description"`
	PlayerColor string    `yaml:"playerColor"`
	Orientation string    `yaml:"orientation"`
	StartFEN    string    `yaml:"startingFen"`
	Lines       []rawLine `yaml:"lines"`
	Theory      *section  `yaml:"theory"`
	Exercises   *section  `yaml:"exercises"`
}

type section struct {
	StartFEN string    `yaml:"startingFen"`
	Lines    []rawLine `yaml:"lines"`
}

// UnmarshalYAML accepts either a bare list of lines or a {lines: [...]} map.
func (s *section) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&s.Lines)
	}
	type plain section
	return value.Decode((*plain)(s))
}

type rawLine struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Category    string       `yaml:"category"`
	StartFEN    string       `yaml:"startingFen"`
	Moves       moveList     `yaml:"moves"`
	Comments    []string     `yaml:"comments"`
	Type        string       `yaml:"type"`
	Side        string       `yaml:"side"`
	Annotations *Annotations `yaml:"annotations"`
}

// moveList accepts a list of SAN tokens or a single space separated string,
// with or without move numbers.
type moveList []string

var moveNumber = regexp.MustCompile(`^\d+\.+`)

func (m *moveList) UnmarshalYAML(value *yaml.Node) error {
	var tokens []string
	if value.Kind == yaml.ScalarNode {
		tokens = strings.Fields(value.Value)
	} else if err := value.Decode(&tokens); err != nil {
		return err
	}
	*m = cleanMoves(tokens)
	return nil
}

func cleanMoves(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = moveNumber.ReplaceAllString(strings.TrimSpace(tok), "")
		switch tok {
		case "", "*", "1-0", "0-1", "1/2-1/2":
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Parse decodes course data (JSON or YAML) and normalizes it. The result is
// not yet validated against the rules; see Validate.
func Parse(data []byte) (*Course, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode course: %w", err)
	}
	return normalize(&doc), nil
}

// Load reads a course file, normalizes and validates it. PGN files are
// converted with the heuristic namer. Lines that do not replay legally are
// dropped and reported.
func Load(path string) (*Course, []Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read course: %w", err)
	}

	var c *Course
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgn":
		c, err = ImportPGN(bytes.NewReader(data), ImportOptions{})
	default:
		c, err = Parse(data)
	}
	if err != nil {
		return nil, nil, err
	}
	if c.ID == "" {
		c.ID = Slug(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	problems, err := Validate(c)
	if err != nil {
		return nil, problems, fmt.Errorf("%s: %w", path, err)
	}
	return c, problems, nil
}

func normalize(doc *document) *Course {
	c := &Course{
		ID:          doc.ID,
		Name:        doc.Name,
		Author:      doc.Author,
		Description: doc.Description,
		PlayerColor: parseColor(doc.PlayerColor, rules.White),
		StartFEN:    doc.StartFEN,
	}
	if c.Name == "" {
		c.Name = "Unnamed Course"
	}
	c.Orientation = parseColor(doc.Orientation, c.PlayerColor)
	if c.ID == "" {
		c.ID = Slug(c.Name)
	}

	theory := doc.Lines
	if doc.Theory != nil {
		theory = append(theory, doc.Theory.Lines...)
		if c.StartFEN == "" {
			c.StartFEN = doc.Theory.StartFEN
		}
	}

	ids := make(map[string]int)
	add := func(rl rawLine, def LineType, sectionFEN string) {
		l := Line{
			ID:          rl.ID,
			Name:        rl.Name,
			Description: rl.Description,
			Category:    rl.Category,
			StartFEN:    rl.StartFEN,
			Moves:       []string(rl.Moves),
			Comments:    rl.Comments,
			Type:        LineType(strings.ToLower(rl.Type)),
			Side:        Side(strings.ToLower(rl.Side)),
			Annotations: rl.Annotations,
		}
		if l.StartFEN == "" {
			l.StartFEN = sectionFEN
		}
		if l.Type != TypeTheory && l.Type != TypeExercise {
			l.Type = def
		}
		if l.Side != SideWhite && l.Side != SideBlack && l.Side != SideEither {
			l.Side = SideOf(c.PlayerColor)
		}
		if l.ID == "" {
			l.ID = LineID(c.StartFor(&l), l.Moves)
		}
		if n := ids[l.ID]; n > 0 {
			ids[l.ID] = n + 1
			l.ID = fmt.Sprintf("%s-%d", l.ID, n+1)
		} else {
			ids[l.ID] = 1
		}
		if l.Name == "" {
			l.Name = fmt.Sprintf("Line %d", len(c.Lines)+1)
		}
		c.Lines = append(c.Lines, l)
	}

	for _, rl := range theory {
		add(rl, TypeTheory, "")
	}
	if doc.Exercises != nil {
		for _, rl := range doc.Exercises.Lines {
			add(rl, TypeExercise, doc.Exercises.StartFEN)
		}
	}
	return c
}

func parseColor(s string, def rules.Color) rules.Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return rules.White
	case "black", "b":
		return rules.Black
	}
	return def
}
