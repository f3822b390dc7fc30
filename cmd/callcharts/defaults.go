package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/callcharts/pkg/models"
)

var defaultsChart string

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in chart data",
	Long:  `Prints the built-in dataset for a chart as JSON, ready to edit and pass to "save --file".`,
	RunE:  runDefaults,
}

func init() {
	defaultsCmd.Flags().StringVar(&defaultsChart, "chart", "", "Chart to print (voiceQuality or callVolume, default: both)")
	rootCmd.AddCommand(defaultsCmd)
}

func runDefaults(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	charts := models.ChartIDs
	if defaultsChart != "" {
		chart, err := models.ParseChartID(defaultsChart)
		if err != nil {
			return err
		}
		charts = []models.ChartID{chart}
	}

	for i, chart := range charts {
		text, err := models.DefaultSeries(chart).MarshalIndent()
		if err != nil {
			return err
		}
		if len(charts) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s (%s)\n", chart.Title(), chart)
		}
		fmt.Fprintln(out, text)
	}
	return nil
}
