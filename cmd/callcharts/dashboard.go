package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/callcharts/internal/dashboard"
	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	dashboardEmail string
	dashboardChart string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive chart dashboard",
	Long: `Opens the terminal dashboard. Pick a chart with tab, edit its JSON values,
enter your email and save them (ctrl+s) or load your previously saved values (ctrl+l).`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardEmail, "email", "", "Email to pre-fill (default from config)")
	dashboardCmd.Flags().StringVar(&dashboardChart, "chart", "voiceQuality", "Initially selected chart (voiceQuality or callVolume)")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	chart, err := models.ParseChartID(dashboardChart)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	wf := newWorkflow(cfg, store,
		workflow.WithEmail(resolveEmail(dashboardEmail, cfg)),
		workflow.WithSelected(chart),
	)

	return dashboard.Run(cmd.Context(), wf, logger)
}
