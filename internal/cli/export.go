package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/carbontrack/internal/export"
	"github.com/sadopc/carbontrack/internal/gateway"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all emission records to a file",
	Long: `Fetch every record from the gateway and write it to
carbon-emissions-<YYYY-MM-DD>.json or .csv.

Examples:
  carbontrack export                          # JSON into dashboard.exportDir
  carbontrack export --format csv --out /tmp  # CSV into /tmp`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatJSON, "Export format: json or csv")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Output directory (default dashboard.exportDir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := exportDir
	if dir == "" {
		dir = cfg.Dashboard.ExportDir
	}

	client := gateway.New(cfg.Dashboard.GatewayURL, cfg.Dashboard.RequestTimeout)
	path, err := export.Write(cmd.Context(), client, strings.ToLower(exportFormat), dir, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}
