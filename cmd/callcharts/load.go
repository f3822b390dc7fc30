package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	loadEmail string
	loadChart string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Show previously saved values for a chart",
	Long: `Looks up the values saved for an email address and chart and prints them
as JSON. Prints a notice when nothing has been saved yet.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadEmail, "email", "", "Email the values were saved under (default from config)")
	loadCmd.Flags().StringVar(&loadChart, "chart", "voiceQuality", "Chart to load (voiceQuality or callVolume)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	chart, err := models.ParseChartID(loadChart)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	email := resolveEmail(loadEmail, cfg)
	wf := newWorkflow(cfg, store, workflow.WithSelected(chart))

	res, err := wf.LoadPrevious(cmd.Context(), email, chart)
	if err != nil {
		return workflowError(err)
	}

	if res.Result == workflow.LoadNotFound {
		fmt.Fprintf(out, "⚠ %s for %s (%s)\n", workflow.StatusNotFound, chart.Title(), email)
		return nil
	}

	text, err := res.Values.MarshalIndent()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ %s for %s (%s)\n", workflow.StatusLoaded, chart.Title(), email)
	fmt.Fprintln(out, text)
	return nil
}
