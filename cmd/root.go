package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Desire-2/afriprog/internal/config"
	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/engine"
	"github.com/Desire-2/afriprog/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "afriprog",
	Short: "Module progression and scoring engine",
	Long: "Afriprog evaluates learner progression through course modules: " +
		"weighted cumulative scores, completion gates, bounded retakes and " +
		"suspension risk.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides AFRIPROG_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then AFRIPROG_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// newEngine builds an engine carrying the configured grading policy.
func newEngine(cfg config.Config) (*engine.Engine, error) {
	return engine.New(engine.Config{Policy: course.Policy{
		PassingThreshold: cfg.Grading.PassingThreshold,
		MaxAttempts:      cfg.Grading.MaxAttempts,
	}})
}
