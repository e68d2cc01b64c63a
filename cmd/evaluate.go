package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Desire-2/afriprog/internal/config"
	"github.com/Desire-2/afriprog/internal/contract"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one module: score, validation, retake eligibility, risk",
	Long: "Evaluate reads a module data document (module metadata plus the " +
		"learner's progress record), runs the full assessment pipeline and " +
		"prints the evaluation as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd)
		if err != nil {
			return err
		}
		md, err := contract.DecodeModuleData(raw)
		if err != nil {
			return fmt.Errorf("decode module data: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		eng, err := newEngine(cfg)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		return printJSON(eng.Evaluate(md))
	},
}

func init() {
	evaluateCmd.Flags().StringP("file", "f", "", "Module data JSON file (default: stdin)")
}

// readInput returns the contents of the -f file, or stdin when the flag
// is unset or set to "-".
func readInput(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
