package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Desire-2/afriprog/internal/config"
	"github.com/Desire-2/afriprog/internal/contract"
	"github.com/Desire-2/afriprog/internal/course"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a course: next unlockable module and progress rollup",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd)
		if err != nil {
			return err
		}
		modules, err := contract.DecodeCourse(raw)
		if err != nil {
			return fmt.Errorf("decode course: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		eng, err := newEngine(cfg)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		out := struct {
			NextUnlockable *course.Module `json:"nextUnlockable"`
			Rollup         course.Rollup  `json:"rollup"`
		}{Rollup: eng.Rollup(modules)}
		if next := eng.NextUnlockable(modules); next != nil {
			out.NextUnlockable = &next.Module
		}
		return printJSON(out)
	},
}

func init() {
	scanCmd.Flags().StringP("file", "f", "", "Course JSON file (default: stdin)")
}
