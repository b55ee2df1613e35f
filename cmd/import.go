package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/chessdrill/internal/config"
	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/llm"
	"github.com/abhisek/chessdrill/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <pgn>",
	Short: "Convert a PGN file into a course",
	Long: `Convert a PGN file into a course file.

Every game and every variation becomes a theory line. Comments are kept,
[%cal] and [%csl] annotations become arrows and highlights, and lines that
do not replay legally are dropped and reported.

With --llm, variations are named by the configured language model
(CHESSDRILL_LLM_PROVIDER or a standard vendor API key); otherwise names come
from PGN tags and comments.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	importCmd.Flags().StringP("format", "f", "", "Output format: yaml or json (default: from the output extension, else yaml)")
	importCmd.Flags().Bool("llm", false, "Name variations with the configured LLM")
	importCmd.Flags().String("name", "", "Course name (default: from the PGN tags)")
	importCmd.Flags().String("id", "", "Course id (default: derived from the file name)")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	output, _ := cmd.Flags().GetString("output")
	format, err := outputFormat(cmd, output)
	if err != nil {
		return err
	}
	side, err := sideFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	opts := course.ImportOptions{Logger: logger}
	if useLLM, _ := cmd.Flags().GetBool("llm"); useLLM {
		namer, cleanup, err := llmNamer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		opts.Namer = namer
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pgn: %w", err)
	}
	defer f.Close()

	c, err := course.ImportPGNContext(ctx, f, opts)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		c.ID = id
	}
	if c.ID == "" {
		c.ID = course.Slug(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		c.Name = name
	}
	if color, ok := side.Color(); ok {
		c.PlayerColor = color
	}

	problems, err := course.Validate(c)
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, "skipped", p.Error())
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		out, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		w = out
	}
	if err := writeCourse(w, c, format); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d lines to %s (%d skipped)\n", len(c.Lines), output, len(problems))
	}
	return nil
}

// outputFormat resolves --format, falling back to the output extension.
func outputFormat(cmd *cobra.Command, output string) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = "yaml"
		if strings.EqualFold(filepath.Ext(output), ".json") {
			format = "json"
		}
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return "yaml", nil
	case "json":
		return "json", nil
	}
	return "", fmt.Errorf("invalid --format %q: want yaml or json", format)
}

func writeCourse(w io.Writer, c *course.Course, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode course: %w", err)
		}
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode course: %w", err)
	}
	return enc.Close()
}

// llmNamer builds the LLM-backed namer. Requests are recorded in the event
// log when the database opens; naming still works without it.
func llmNamer(ctx context.Context, cfg config.Config, logger *slog.Logger) (course.Namer, func(), error) {
	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if !llmCfg.Enabled() {
		return nil, nil, fmt.Errorf("--llm: no LLM provider configured (set CHESSDRILL_LLM_PROVIDER or an API key)")
	}

	cleanup := func() {}
	var events store.EventRepo
	if st, err := openStore(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "LLM requests will not be recorded:", err)
	} else {
		events = st.EventRepo()
		cleanup = func() { st.Close() }
	}

	provider, err := llm.NewProvider(ctx, llmCfg, events, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init llm provider: %w", err)
	}
	return course.NewLLMNamer(provider, nil, course.DefaultLLMNamerConfig(), logger), cleanup, nil
}
