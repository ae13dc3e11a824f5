package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/carbontrack/internal/gateway"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the gateway is reachable",
	Long: `Call /health on the gateway at --gateway and print its status and version.
Exits non-zero when the gateway is down or unhealthy.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := gateway.New(cfg.Dashboard.GatewayURL, cfg.Dashboard.RequestTimeout)
	h, err := client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("gateway %s: %w", client.BaseURL(), err)
	}
	if h.Status != "healthy" {
		return fmt.Errorf("gateway %s reports %q", client.BaseURL(), h.Status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (version %s, %s)\n", client.BaseURL(), h.Status, h.Version, h.Timestamp)
	return nil
}
