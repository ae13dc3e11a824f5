package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the emissions gateway API",
	Long: `Start the HTTP/JSON gateway the dashboard talks to.

Records are stored in SQLite by default, or Postgres when
STORAGE_DRIVER=postgres. Prometheus metrics are served on /metrics.

Examples:
  carbontrack serve                         # Listen on :5000
  carbontrack serve --addr 127.0.0.1:8080   # Custom address
  carbontrack serve --db ./carbon.db        # Custom SQLite file`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (overrides http.address)")
	serveCmd.Flags().StringVar(&sqlitePath, "db", "", "SQLite database path (overrides storage.path)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, cleanup, err := initializeServer(cfg)
	if err != nil {
		return fmt.Errorf("wire gateway: %w", err)
	}
	defer cleanup()

	return app.Run(cmd.Context())
}
