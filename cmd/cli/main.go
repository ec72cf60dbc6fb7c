// Package main is the entry point for the dbu-cost CLI.
package main

import (
	"os"

	"dbu-cost/cmd/cli/cmd"
	"dbu-cost/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
