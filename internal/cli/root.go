// Package cli provides the command-line interface for StageLink.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stagelink/stagelink/internal/cli/commands"
	"github.com/stagelink/stagelink/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "stagelink",
	Short: "StageLink - real-time control/session bridge",
	Long: `StageLink bridges authenticated web clients to a real-time engine's
control socket, mints short-lived session grants for streaming rooms,
and maps live audio energy to facial-animation control frames.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(commands.NewBridgeCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewFaceCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
