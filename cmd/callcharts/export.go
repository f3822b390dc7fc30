package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/callcharts/internal/export"
	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

var (
	exportEmail  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export both charts to an Excel workbook",
	Long: `Writes one sheet per chart with the data and a native Excel chart. Charts use the
values saved for --email when there are any, otherwise the built-in data.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "Use values saved under this email (default from config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "callcharts.xlsx", "Workbook to write")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	email := models.NormalizeEmail(resolveEmail(exportEmail, cfg))
	sheets := make([]export.Sheet, len(models.ChartIDs))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, chart := range models.ChartIDs {
		i, chart := i, chart
		g.Go(func() error {
			values, source, err := chartValues(ctx, store, email, chart)
			if err != nil {
				return err
			}
			sheets[i] = export.Sheet{Chart: chart, Values: values, Source: source}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := export.WriteWorkbook(exportOutput, sheets); err != nil {
		return err
	}

	for _, sh := range sheets {
		fmt.Fprintf(out, "  %s: %d points (%s)\n", sh.Chart.Title(), len(sh.Values), sh.Source)
	}
	fmt.Fprintf(out, "✓ Exported %d charts to %s\n", len(sheets), exportOutput)
	return nil
}

// chartValues returns the values saved for (email, chart), falling back to
// the built-in data when email is empty or nothing was saved.
func chartValues(ctx context.Context, store workflow.Store, email string, chart models.ChartID) (models.Series, string, error) {
	if models.ValidEmail(email) {
		entry, err := store.Get(ctx, email, chart)
		if err != nil {
			return nil, "", fmt.Errorf("fetching %s values: %w", chart, err)
		}
		if entry != nil {
			return entry.Values, "saved", nil
		}
	}
	return models.DefaultSeries(chart), "default", nil
}
