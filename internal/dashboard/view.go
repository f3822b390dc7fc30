package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

const chartWidth = 40

// View renders the dashboard.
func (m Model) View() string {
	st := m.wf.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Voice Agent Analytics Dashboard"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("This demo uses imaginary data. Enter your email to save custom values for a chart."))
	b.WriteString("\n\n")

	b.WriteString(m.renderTabs(st.Selected))
	b.WriteString("\n")
	b.WriteString(m.renderChart(st.Selected, st.Series[st.Selected]))
	b.WriteString("\n")

	b.WriteString(m.styles.Section.Render("Editable values (JSON)"))
	b.WriteString("\n")
	if models.ValidEmail(st.Email) {
		b.WriteString(m.editor.View())
	} else {
		b.WriteString(m.styles.Muted.Render("(enter a valid email to edit values)"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	b.WriteString("\n")

	if m.inFlight || st.Busy {
		b.WriteString(m.styles.Warning.Render("Working..."))
		b.WriteString("\n")
	}
	if st.Status != "" {
		b.WriteString(m.styles.Status.Render(st.Status))
		b.WriteString("\n")
	}

	if m.confirming {
		prompt := fmt.Sprintf("%s\n\n%s\n\n%s to overwrite, %s to cancel",
			workflow.StatusConfirm,
			renderJSON(m.pendingOld),
			m.styles.Key.Render("y"), m.styles.Key.Render("n"))
		b.WriteString(m.styles.Prompt.Render(prompt))
		b.WriteString("\n")
	} else if st.Previous != nil {
		b.WriteString(m.styles.Section.Render(fmt.Sprintf("Previous values (%s):", st.PreviousChart.Title())))
		b.WriteString("\n")
		b.WriteString(renderJSON(st.Previous))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderTabs(selected models.ChartID) string {
	tabs := make([]string, 0, len(models.ChartIDs))
	for _, id := range models.ChartIDs {
		if id == selected {
			tabs = append(tabs, m.styles.ActiveTab.Render(id.Title()))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(id.Title()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderHelp() string {
	key := func(k, label string, enabled bool) string {
		s := m.styles.Key.Render(k) + " " + label
		if !enabled {
			return m.styles.Disabled.Render(k + " " + label)
		}
		return s
	}
	run := m.canRun()
	parts := []string{
		key("tab", "chart", true),
		key("shift+tab", "email/editor", m.wf.EmailValid()),
		key("ctrl+r", "reset", true),
		key("ctrl+l", "load previous", run),
		key("ctrl+s", "save", run),
		key("ctrl+p", "apply previous", true),
		key("esc", "quit", true),
	}
	return strings.Join(parts, m.styles.Muted.Render(" • "))
}

// renderChart draws one row per point: a bar for bar charts and a marker at
// the value for line charts.
func (m Model) renderChart(chart models.ChartID, s models.Series) string {
	labels, values := s.Metric(chart.MetricKey())
	if len(labels) == 0 {
		return m.styles.Muted.Render("(no data)")
	}

	peak := 0.0
	labelW := 0
	for i, v := range values {
		peak = math.Max(peak, v)
		labelW = max(labelW, lipgloss.Width(labels[i]))
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for i, v := range values {
		n := int(math.Round(math.Max(v, 0) / peak * chartWidth))
		var plot string
		if chart.Kind() == models.KindBar {
			plot = m.styles.Bar.Render(strings.Repeat("█", n))
		} else {
			plot = m.styles.Line.Render(strings.Repeat("─", max(n-1, 0)) + "●")
		}
		fmt.Fprintf(&b, "%-*s │ %s %s\n", labelW, labels[i], plot, formatValue(v))
	}
	return b.String()
}

func renderJSON(s models.Series) string {
	text, err := s.MarshalIndent()
	if err != nil {
		return err.Error()
	}
	return text
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}
