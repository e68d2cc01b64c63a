package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Desire-2/afriprog/internal/contract"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and contract information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("afriprog", version)
		fmt.Println("contract", contract.Version)
	},
}
