package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/render"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	snapshotEmail  string
	snapshotChart  string
	snapshotOutput string
	snapshotSVG    bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render a chart to PNG or SVG",
	Long: `Renders a chart to an image. PNG output uses a headless Chrome, so Chrome or
Chromium must be installed; --svg writes the chart markup directly.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotEmail, "email", "", "Use values saved under this email (default from config)")
	snapshotCmd.Flags().StringVar(&snapshotChart, "chart", "voiceQuality", "Chart to render (voiceQuality or callVolume)")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Output file (default: <chart>.png or <chart>.svg)")
	snapshotCmd.Flags().BoolVar(&snapshotSVG, "svg", false, "Write SVG instead of PNG")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	chart, err := models.ParseChartID(snapshotChart)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	email := models.NormalizeEmail(resolveEmail(snapshotEmail, cfg))
	values, source, err := chartValues(cmd.Context(), store, email, chart)
	if err != nil {
		return err
	}

	output := snapshotOutput
	var data []byte
	if snapshotSVG {
		if output == "" {
			output = string(chart) + ".svg"
		}
		data = []byte(render.SVG(chart, values))
	} else {
		if output == "" {
			output = string(chart) + ".png"
		}
		fmt.Fprintf(out, "Rendering %s in headless browser...\n", chart.Title())
		data, err = render.Snapshot(cmd.Context(), chart, values)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	logger.Debug("Wrote snapshot", zap.String("file", output), zap.String("source", source))
	fmt.Fprintf(out, "✓ Wrote %s (%s, %s values)\n", output, humanize.Bytes(uint64(len(data))), source)
	return nil
}
