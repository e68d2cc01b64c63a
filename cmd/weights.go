package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Desire-2/afriprog/internal/engine"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Print the canonical weight table",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(engine.DefaultConfig())
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		fmt.Printf("%-7s  %-11s  %-5s    %12s  %7s  %11s  %5s  %5s\n",
			"Quizzes", "Assignments", "Final", "Contribution", "Quizzes", "Assignments", "Final", "Sum")
		fmt.Println(strings.Repeat("─", 78))

		for _, row := range eng.WeightTable() {
			fmt.Printf("%-7s  %-11s  %-5s    %12d  %7d  %11d  %5d  %5d\n",
				mark(row.Availability.Quizzes),
				mark(row.Availability.Assignments),
				mark(row.Availability.FinalAssessment),
				row.Profile.CourseContribution,
				row.Profile.Quizzes,
				row.Profile.Assignments,
				row.Profile.FinalAssessment,
				row.Profile.Sum(),
			)
		}
		return nil
	},
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
