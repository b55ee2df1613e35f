package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/chessdrill/internal/course"
)

var validateCmd = &cobra.Command{
	Use:   "validate <course>",
	Short: "Check that every line of a course replays legally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, problems, err := course.Load(args[0])
		for _, p := range problems {
			fmt.Fprintln(out, "✗", p.Error())
		}
		if err != nil {
			return err
		}

		theory := len(c.LinesOfType(course.TypeTheory))
		exercises := len(c.LinesOfType(course.TypeExercise))
		fmt.Fprintf(out, "%s (%s): %d valid lines, %d theory and %d exercises\n",
			c.Name, c.ID, len(c.Lines), theory, exercises)
		if len(problems) > 0 {
			return fmt.Errorf("%d line(s) failed validation", len(problems))
		}
		return nil
	},
}
