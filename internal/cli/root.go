package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sadopc/carbontrack/internal/config"
)

var (
	configPath string
	gatewayURL string
	listenAddr string
	sqlitePath string
)

var rootCmd = &cobra.Command{
	Use:   "carbontrack",
	Short: "Track personal carbon emissions",
	Long: `Log everyday activities, convert them to CO2 estimates and review
summaries, forecasts and reduction tips in a terminal dashboard.

Examples:
  carbontrack                      # Open the dashboard
  carbontrack serve --addr :5000   # Run the emissions API
  carbontrack export --format csv  # Write all records to a CSV file`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine.
		_ = godotenv.Load(".env")
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "Gateway base URL, e.g. http://localhost:5000/api")
}

// Execute runs the command line with ctx cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if gatewayURL != "" {
		cfg.Dashboard.GatewayURL = gatewayURL
	}
	if listenAddr != "" {
		cfg.HTTP.Address = listenAddr
	}
	if sqlitePath != "" {
		cfg.Storage.Path = sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
