package course

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/abhisek/chessdrill/internal/llm"
)

// LLMNamerConfig holds generation settings for the LLM namer.
type LLMNamerConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLLMNamerConfig returns sensible defaults.
func DefaultLLMNamerConfig() LLMNamerConfig {
	return LLMNamerConfig{
		MaxTokens:   128,
		Temperature: 0.2,
	}
}

// LLMNamer asks a language model for a line's name and category. When the
// call fails or the answer is unusable it falls back to another Namer.
type LLMNamer struct {
	provider llm.Provider
	fallback Namer
	cfg      LLMNamerConfig
	logger   *slog.Logger
}

// NewLLMNamer creates a namer backed by provider. A nil fallback uses
// HeuristicNamer.
func NewLLMNamer(provider llm.Provider, fallback Namer, cfg LLMNamerConfig, logger *slog.Logger) *LLMNamer {
	if fallback == nil {
		fallback = HeuristicNamer{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LLMNamer{provider: provider, fallback: fallback, cfg: cfg, logger: logger}
}

// NamingSchema constrains the model's answer.
var NamingSchema = &llm.Schema{
	Name:        "line-naming",
	Description: "Display name and category of a chess opening line",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Short display name, at most 60 characters",
			},
			"category": map[string]any{
				"type":        "string",
				"description": "Grouping such as the opening family, Gambit or Trap",
			},
		},
		"required":             []any{"name", "category"},
		"additionalProperties": false,
	},
}

func (n *LLMNamer) Name(ctx context.Context, v Variation) (Naming, error) {
	got, err := n.ask(ctx, v)
	if err != nil {
		n.logger.Warn("llm naming failed, using fallback", "variation", v.Number, "error", err)
		return n.fallback.Name(ctx, v)
	}
	return got, nil
}

func (n *LLMNamer) ask(ctx context.Context, v Variation) (Naming, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeVariationNaming)

	msg, err := buildNamingMessage(v)
	if err != nil {
		return Naming{}, fmt.Errorf("build naming prompt: %w", err)
	}

	req := llm.Ask(namingSystemPrompt, msg)
	req.Schema = NamingSchema
	req.MaxTokens = n.cfg.MaxTokens
	req.Temperature = n.cfg.Temperature
	resp, err := n.provider.Generate(ctx, req)
	if err != nil {
		return Naming{}, fmt.Errorf("llm naming: %w", err)
	}

	var out Naming
	if err := resp.Decode(&out); err != nil {
		return Naming{}, fmt.Errorf("parse naming response: %w", err)
	}
	out.Name = strings.TrimSpace(out.Name)
	out.Category = strings.TrimSpace(out.Category)
	if out.Name == "" {
		return Naming{}, fmt.Errorf("parse naming response: empty name")
	}
	if len(out.Name) > 60 {
		out.Name = strings.TrimSpace(out.Name[:60])
	}
	if out.Category == "" {
		out.Category = "Variations"
	}
	return out, nil
}

const namingSystemPrompt = `You name lines in a chess opening repertoire.

Instructions:
- Use the established opening or variation name when the moves match one.
- Otherwise describe the line by its characteristic idea in a few words.
- The category groups related lines, usually the opening family.
- Never invent move sequences or evaluations.`

var namingUserTemplate = template.Must(template.New("naming").Funcs(template.FuncMap{
	"numbered": numberedMoves,
}).Parse(`{{if .Opening}}Opening tag: {{.Opening}}
{{end}}{{if .ECO}}ECO: {{.ECO}}
{{end}}{{if .Event}}Event: {{.Event}}
{{end}}Moves: {{numbered .Moves}}
{{if gt .Number 0}}This is variation {{.Number}}; it leaves the earlier lines at ply {{.BranchPly}}.
{{else}}This is the main line.
{{end}}{{if .Comment}}Author's comment: {{.Comment}}
{{end}}`))

func buildNamingMessage(v Variation) (string, error) {
	var buf bytes.Buffer
	if err := namingUserTemplate.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// numberedMoves renders SAN moves as "1.e4 e5 2.Nf3".
func numberedMoves(moves []string) string {
	return FormatMoves(moves, false)
}
