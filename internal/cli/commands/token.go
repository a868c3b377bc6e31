package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagelink/stagelink/internal/config"
	"github.com/stagelink/stagelink/internal/grant"
)

// NewTokenCommand creates the token subcommand.
func NewTokenCommand() *cobra.Command {
	var (
		room     string
		identity string
		name     string
		agent    string
		metadata string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session grant",
		Long:  `Mint a signed session grant from the local signing configuration. Useful for debugging room access without a running bridge.`,
		Example: `  stagelink token --room studio-1
  stagelink token --room studio-1 --agent narrator --identity guest-42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Grant.APIKey == "" || cfg.Grant.APISecret == "" {
				return errors.New("grant.apiKey and grant.apiSecret must be configured")
			}

			req := &grant.Request{
				RoomName:  room,
				Identity:  identity,
				Name:      name,
				AgentName: agent,
			}
			if metadata != "" {
				req.Metadata = metadata
			}

			token, err := grant.Mint(req, grant.Options{
				APIKey:    cfg.Grant.APIKey,
				APISecret: cfg.Grant.APISecret,
				TTL:       cfg.Grant.TTL(),
				ClockSkew: cfg.Grant.ClockSkew(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Room name (required)")
	cmd.Flags().StringVar(&identity, "identity", "", "Participant identity (default: generated)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: identity)")
	cmd.Flags().StringVar(&agent, "agent", "", "Agent to dispatch on join")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Opaque participant metadata")
	_ = cmd.MarkFlagRequired("room")

	return cmd
}
