package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/config"
	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/logging"
	"github.com/abhisek/chessdrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "chessdrill",
	Short: "Opening trainer for the terminal",
	Long: `chessdrill drills chess opening lines in the terminal.

Lines come from a JSON, YAML or PGN course file. Theory mode walks through
every line with hints, exercises test lines without help, and review mode
schedules each line with spaced repetition.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// ExecuteContext runs the root command with ctx, canceled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CHESSDRILL_DB)")
	rootCmd.PersistentFlags().String("course", "", "Course file: .json, .yaml or .pgn (overrides CHESSDRILL_COURSE)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path, or \"off\" (overrides CHESSDRILL_LOG_FILE)")
	rootCmd.PersistentFlags().String("mode", "", "Start a drill right away: theory, exercises or review (overrides CHESSDRILL_MODE)")
	rootCmd.PersistentFlags().String("color", "", "Side to train: white, black or either (default: the course's color)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(llmCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if p, _ := flags.GetString("db"); p != "" {
		cfg.DB = p
	}
	if p, _ := flags.GetString("course"); p != "" {
		cfg.Course = p
	}
	if p, _ := flags.GetString("log-file"); p != "" {
		cfg.LogFile = p
	}
	if m, _ := flags.GetString("mode"); m != "" {
		cfg.Mode = m
	}
	return cfg, nil
}

// sideFlag parses --color. An empty value keeps the course's color.
func sideFlag(cmd *cobra.Command) (course.Side, error) {
	v, _ := cmd.Flags().GetString("color")
	switch s := course.Side(v); s {
	case "":
		return "", nil
	case course.SideWhite, course.SideBlack, course.SideEither:
		return s, nil
	}
	return "", fmt.Errorf("invalid --color %q: want white, black or either", v)
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func newLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, closer, nil
}

// loadCourse loads the configured course, reporting dropped lines on stderr.
func loadCourse(cfg config.Config, logger *slog.Logger) (*course.Course, error) {
	if cfg.Course == "" {
		return nil, fmt.Errorf("no course: pass --course or set CHESSDRILL_COURSE")
	}
	c, problems, err := course.Load(cfg.Course)
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, "skipped", p.Error())
		logger.Warn("line dropped", "course", cfg.Course, "line", p.LineID, "error", p.Err)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("course loaded", "course", c.ID, "lines", len(c.Lines))
	return c, nil
}
