package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stagelink/stagelink/internal/config"
)

const statusTimeout = 2 * time.Second

// HealthResponse matches the /health envelope from the bridge.
type HealthResponse struct {
	OK     bool `json:"ok"`
	Bridge struct {
		Host             string   `json:"host"`
		Port             int      `json:"port"`
		Endpoints        []string `json:"endpoints"`
		TokenRequired    bool     `json:"tokenRequired"`
		UpstreamUp       *bool    `json:"upstreamUp,omitempty"`
		UpstreamLastSeen string   `json:"upstreamLastSeen,omitempty"`
	} `json:"bridge"`
	Unreal json.RawMessage `json:"unreal"`
}

// NewStatusCommand creates the status subcommand.
func NewStatusCommand() *cobra.Command {
	var (
		host       string
		port       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show bridge status",
		Long:  `Query a running bridge's /health endpoint and display bridge and upstream state.`,
		Example: `  stagelink status
  stagelink status --host 127.0.0.1 --port 18890 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actualPort := port
			if actualPort == 0 {
				if cfg, err := config.Load(); err == nil && cfg.Bridge.Port > 0 {
					actualPort = cfg.Bridge.Port
				} else {
					actualPort = 18890
				}
			}
			return runStatus(cmd.OutOrStdout(), host, actualPort, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Bridge host")
	cmd.Flags().IntVar(&port, "port", 0, "Bridge port (default: from config file, or 18890)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runStatus(out io.Writer, host string, port int, jsonOutput bool) error {
	client := resty.New().SetTimeout(statusTimeout)
	url := fmt.Sprintf("http://%s:%d/health", host, port)

	resp, err := client.R().Get(url)
	if err != nil {
		if jsonOutput {
			fmt.Fprintf(out, "{\"running\": false, \"error\": %q}\n", err.Error())
			return nil
		}
		fmt.Fprintf(out, "Bridge not reachable at %s: %v\n", url, err)
		return nil
	}

	if jsonOutput {
		fmt.Fprintln(out, string(resp.Body()))
		return nil
	}

	var health HealthResponse
	if err := json.Unmarshal(resp.Body(), &health); err != nil {
		fmt.Fprintf(out, "Unexpected response from %s\n", url)
		return nil
	}

	upstream := "unknown"
	var unrealProbe struct {
		OK *bool `json:"ok"`
	}
	if err := json.Unmarshal(health.Unreal, &unrealProbe); err == nil && unrealProbe.OK != nil {
		if *unrealProbe.OK {
			upstream = "up"
		} else {
			upstream = "down"
		}
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	table.Append([]string{"Bridge", fmt.Sprintf("%s:%d", health.Bridge.Host, health.Bridge.Port)})
	table.Append([]string{"Token required", fmt.Sprintf("%v", health.Bridge.TokenRequired)})
	table.Append([]string{"Upstream", upstream})
	if health.Bridge.UpstreamLastSeen != "" {
		table.Append([]string{"Upstream last seen", health.Bridge.UpstreamLastSeen})
	}
	for _, ep := range health.Bridge.Endpoints {
		table.Append([]string{"Endpoint", ep})
	}

	table.Render()
	return nil
}
