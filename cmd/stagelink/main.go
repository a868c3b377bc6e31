// Package main provides the entry point for the StageLink CLI.
package main

import (
	"os"

	"github.com/stagelink/stagelink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
