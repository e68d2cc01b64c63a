package main

import (
	"os"

	"github.com/Desire-2/afriprog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
