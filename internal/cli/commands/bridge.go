// Package commands provides CLI subcommands for StageLink.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagelink/stagelink/internal/bridge"
	"github.com/stagelink/stagelink/internal/config"
)

// NewBridgeCommand creates the bridge subcommand.
func NewBridgeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Run the bridge server",
		Long:  `Start the StageLink bridge server in the foreground.`,
		Example: `  stagelink bridge
  stagelink bridge --host 0.0.0.0 --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Flags override the config file
			if cmd.Flags().Changed("host") {
				cfg.Bridge.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Bridge.Port = port
			}

			return bridge.New(cfg).Start()
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Bridge host")
	cmd.Flags().IntVarP(&port, "port", "p", 18890, "Bridge port")

	return cmd
}
