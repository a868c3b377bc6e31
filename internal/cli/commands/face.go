package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stagelink/stagelink/internal/face"
)

// NewFaceCommand creates the face subcommand.
func NewFaceCommand() *cobra.Command {
	var (
		low  float64
		high float64
	)

	cmd := &cobra.Command{
		Use:   "face <amplitude>",
		Short: "Map one audio sample to a control frame",
		Long:  `Run the signal mapper on a single amplitude sample and print the resulting control frame. Handy for checking calibration against a reference rig.`,
		Example: `  stagelink face 0.08
  stagelink face 0.15 --low 0.3 --high 0.6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amplitude, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amplitude %q", args[0])
			}

			frame := face.Map(amplitude, low, high)
			out, err := json.MarshalIndent(frame, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().Float64Var(&low, "low", 0, "Low band energy")
	cmd.Flags().Float64Var(&high, "high", 0, "High band energy")

	return cmd
}
