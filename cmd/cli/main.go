// Package main is the entry point for the cardctl CLI.
// The CLI is the operator tool for triggering and inspecting import runs.
package main

import (
	"os"

	"cardbase/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
