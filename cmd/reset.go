package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/spacedrep"
)

var resetCmd = &cobra.Command{
	Use:   "reset [course-id]",
	Short: "Delete all review progress for a course",
	Long: `Delete all review progress for a course.

The course is taken from the argument or, without one, from --course.
Session history is kept.`,
	Args: cobra.MaximumNArgs(1),
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

		var courseID string
		if len(args) == 1 {
			courseID = args[0]
		} else {
			c, err := loadCourse(cfg, logger)
			if err != nil {
				return err
			}
			courseID = c.ID
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete all progress for %q? [y/N] ", courseID)
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		sched := spacedrep.NewScheduler(courseID, spacedrep.Options{Logger: logger})
		if err := sched.Purge(cmd.Context(), st.ProgressRepo()); err != nil {
			return fmt.Errorf("reset %s: %w", courseID, err)
		}
		logger.Info("progress reset", "course", courseID)
		fmt.Fprintf(cmd.OutOrStdout(), "Progress for %q deleted.\n", courseID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
