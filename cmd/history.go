package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Desire-2/afriprog/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history <learner-id> <module-id>",
	Short: "List recorded status transitions for one learner and module",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.EventRepo().History(ctx, args[0], args[1], store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query transitions: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No transitions recorded.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-11s  %-11s  %-8s  %7s  %3s\n",
			"Seq", "Timestamp", "From", "To", "Trigger", "Score", "Att")
		fmt.Println(strings.Repeat("─", 78))

		for _, e := range events {
			fmt.Printf("%-6d  %-19s  %-11s  %-11s  %-8s  %7.2f  %3d\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.FromStatus,
				e.ToStatus,
				e.Trigger,
				e.CumulativeScore,
				e.Attempts,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of transitions to show")
}
