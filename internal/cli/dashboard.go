package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/carbontrack/internal/gateway"
	"github.com/sadopc/carbontrack/internal/tui"
	"github.com/sadopc/carbontrack/pkg/logger"
)

const dashboardService = "carbontrack-dashboard"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the terminal dashboard",
	Long: `Open the interactive dashboard. It reads from and writes to the gateway
at --gateway (default http://localhost:5000/api); start one with
"carbontrack serve".

Logs go to dashboard.logFile since the terminal is in use.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logger.NewFile(cfg.Dashboard.LogFile, cfg.Log.Level, dashboardService)
	if err != nil {
		return err
	}
	defer closer.Close()

	client := gateway.New(cfg.Dashboard.GatewayURL, cfg.Dashboard.RequestTimeout)
	log.Info("dashboard starting", "gateway", client.BaseURL())

	app := tui.NewApp(client, tui.Options{ExportDir: cfg.Dashboard.ExportDir, Logger: log})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
