package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/app"
	"github.com/abhisek/chessdrill/internal/screens/drill"
	"github.com/abhisek/chessdrill/internal/screens/home"
	"github.com/abhisek/chessdrill/internal/selfupdate"
	"github.com/abhisek/chessdrill/internal/trainer"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a training session (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, loads the course and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	side, err := sideFlag(cmd)
	if err != nil {
		return err
	}
	mode, err := trainer.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	c, err := loadCourse(cfg, logger)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := app.Options{
		Logger: logger,
		Home: home.Options{
			Drill: drill.Options{
				Course:    c,
				Progress:  st.ProgressRepo(),
				Events:    st.EventRepo(),
				Config:    cfg.Trainer(),
				Scheduler: cfg.Scheduler(),
				Logger:    logger,
				Mode:      mode,
				Side:      side,
			},
			Version:   version,
			Updates:   selfupdate.NewChecker(),
			AutoStart: cfg.Mode != "",
		},
	}

	if err := app.Run(cmd.Context(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
