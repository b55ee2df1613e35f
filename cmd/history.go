package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/screens/summary"
	"github.com/abhisek/chessdrill/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent training sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.EventRepo().QuerySessionSummaries(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-20s  %-17s  %8s  %5s  %7s  %8s  %5s\n",
			"When", "Course", "Mode", "Duration", "Lines", "Correct", "Mistakes", "Hints")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, s := range sessions {
			fmt.Fprintf(out, "%-16s  %-20s  %-17s  %8s  %5d  %7d  %8d  %5d\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				truncate(s.CourseID, 20),
				s.Mode,
				summary.FormatDuration(time.Duration(s.DurationSecs)*time.Second),
				s.LinesStudied, s.CorrectMoves, s.Mistakes, s.Hints)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
