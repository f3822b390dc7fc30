// Package export writes chart series into an Excel workbook, one sheet per
// chart, each with a native line or bar chart next to the data.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jgoulah/callcharts/pkg/models"
)

// Sheet is one chart's data to export
type Sheet struct {
	Chart  models.ChartID
	Values models.Series
	Source string // "saved" or "default"
}

// Columns returns the union of record keys in first-seen order, with "name" first
func Columns(s models.Series) []string {
	cols := []string{"name"}
	seen := map[string]bool{"name": true}
	for _, rec := range s {
		for _, f := range rec {
			if !seen[f.Key] {
				seen[f.Key] = true
				cols = append(cols, f.Key)
			}
		}
	}
	return cols
}

// WriteWorkbook writes sheets to path
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		name := string(sh.Chart)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, sh); err != nil {
			return fmt.Errorf("writing sheet %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sh Sheet) error {
	cols := Columns(sh.Values)

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	for r, rec := range sh.Values {
		row := make([]interface{}, len(cols))
		for c, key := range cols {
			if v, ok := rec.Get(key); ok {
				row[c] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	// Source note to the right of the chart
	noteCell, err := excelize.CoordinatesToCellName(len(cols)+2, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(name, noteCell, "source: "+sh.Source); err != nil {
		return err
	}

	if len(sh.Values) == 0 {
		return nil
	}
	return addChart(f, name, sh, cols)
}

func addChart(f *excelize.File, name string, sh Sheet, cols []string) error {
	metricCol := 0
	for i, c := range cols {
		if c == sh.Chart.MetricKey() {
			metricCol = i + 1
		}
	}
	if metricCol == 0 {
		// No plottable metric, data only
		return nil
	}

	colName, err := excelize.ColumnNumberToName(metricCol)
	if err != nil {
		return err
	}
	last := len(sh.Values) + 1

	chartType := excelize.Line
	if sh.Chart.Kind() == models.KindBar {
		chartType = excelize.Col
	}

	anchor, err := excelize.CoordinatesToCellName(len(cols)+2, 3)
	if err != nil {
		return err
	}

	return f.AddChart(name, anchor, &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$1", name, colName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", name, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", name, colName, colName, last),
		}},
		Title: []excelize.RichTextRun{{Text: sh.Chart.Title()}},
	})
}
