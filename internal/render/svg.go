// Package render draws a chart series as SVG and captures it as a PNG
// through a headless browser.
package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/jgoulah/callcharts/pkg/models"
)

const (
	width   = 720
	height  = 360
	padding = 48
)

// SVG draws the series as a line chart or a bar chart depending on chart
func SVG(chart models.ChartID, s models.Series) string {
	labels, values := s.Metric(chart.MetricKey())

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	plotW := float64(width - 2*padding)
	plotH := float64(height - 2*padding)
	n := len(values)
	step := plotW
	if n > 0 {
		step = plotW / float64(n)
	}
	y := func(v float64) float64 {
		return float64(height-padding) - v/peak*plotH
	}
	x := func(i int) float64 {
		return float64(padding) + step*float64(i) + step/2
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg id="chart" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	fmt.Fprintf(&b, `<text x="%d" y="28" font-family="sans-serif" font-size="18">%s</text>`, padding, html.EscapeString(chart.Title()))

	// Grid
	for i := 0; i <= 4; i++ {
		gy := y(peak * float64(i) / 4)
		fmt.Fprintf(&b, `<line class="grid" x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#dddddd" stroke-dasharray="3 3"/>`, padding, gy, width-padding, gy)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-family="sans-serif" font-size="11" text-anchor="end">%s</text>`, padding-6, gy+4, formatValue(peak*float64(i)/4))
	}

	switch chart.Kind() {
	case models.KindBar:
		barW := step * 0.6
		for i, v := range values {
			top := y(v)
			fmt.Fprintf(&b, `<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#82ca9d"/>`, x(i)-barW/2, top, barW, float64(height-padding)-top)
		}
	default:
		points := make([]string, n)
		for i, v := range values {
			points[i] = fmt.Sprintf("%.1f,%.1f", x(i), y(v))
		}
		fmt.Fprintf(&b, `<polyline class="line" fill="none" stroke="#8884d8" stroke-width="2" points="%s"/>`, strings.Join(points, " "))
	}

	for i, label := range labels {
		fmt.Fprintf(&b, `<text class="label" x="%.1f" y="%d" font-family="sans-serif" font-size="12" text-anchor="middle">%s</text>`, x(i), height-padding+18, html.EscapeString(label))
	}

	b.WriteString(`</svg>`)
	return b.String()
}

// Document wraps the SVG in a minimal HTML page
func Document(chart models.ChartID, s models.Series) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><style>body{margin:0}</style></head><body>` + SVG(chart, s) + `</body></html>`
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
