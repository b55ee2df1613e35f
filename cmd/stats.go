package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/screens/drill"
	"github.com/abhisek/chessdrill/internal/spacedrep"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics for the course",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
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

		ctx := cmd.Context()
		now := time.Now()
		sched, err := drill.LoadCards(ctx, drill.Options{
			Course:    c,
			Progress:  st.ProgressRepo(),
			Scheduler: cfg.Scheduler(),
			Logger:    logger,
		}, now)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		out := cmd.OutOrStdout()
		counts := sched.Counts()
		fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
		fmt.Fprintf(out, "Cards: %d new, %d learning, %d testing, %d due now\n\n",
			counts[spacedrep.DifficultyNew], counts[spacedrep.DifficultyLearning],
			counts[spacedrep.DifficultyTesting], sched.DueCount(now, drill.TheoryScope(c)))

		fmt.Fprintf(out, "%-32s  %-8s  %5s  %5s  %5s  %-8s  %s\n",
			"Line", "Phase", "Stage", "Days", "Ease", "Next", "Accuracy")
		fmt.Fprintln(out, strings.Repeat("─", 84))

		events := st.EventRepo()
		for _, l := range c.LinesOfType(course.TypeTheory) {
			card := sched.Card(l.ID)
			next := "now"
			if !card.IsDue(now) {
				next = fmt.Sprintf("%dd", card.DaysUntilReview(now))
			}
			accuracy := "-"
			if acc, n, err := events.LineAccuracy(ctx, c.ID, l.ID); err == nil && n > 0 {
				accuracy = fmt.Sprintf("%.0f%% (%d)", acc*100, n)
			}
			fmt.Fprintf(out, "%-32s  %-8s  %5d  %5d  %5.2f  %-8s  %s\n",
				truncate(l.Name, 32), card.Difficulty, card.HintStage, card.Interval,
				card.EaseFactor, next, accuracy)
		}
		return nil
	},
}
