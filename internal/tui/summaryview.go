package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/summary"
)

// summaryColumns is the subset of metrics shown as columns in the
// all-departments table. The drill-down view shows the full set.
var summaryColumns = []string{
	metrics.MetricBotHandled,
	metrics.MetricSimilarity,
	metrics.MetricIncorrectTools,
	metrics.MetricEscalations,
	metrics.MetricQualityScore,
	metrics.MetricCostPerChat,
}

const (
	deptColWidth = 12
	cellColWidth = 26
)

func (m Model) renderSummary() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader(" All departments"))
	sb.WriteByte('\n')

	if m.loading && m.rows == nil {
		sb.WriteString(dimStyle.Render("\n  Loading summary..."))
		return sb.String()
	}

	// Column headers use the labels active for the selected date.
	header := fmt.Sprintf("%-*s", deptColWidth, "Dept")
	for _, id := range summaryColumns {
		d, ok := metrics.Lookup(id)
		if !ok {
			continue
		}
		header += fmt.Sprintf("%-*s", cellColWidth, truncate(d.LabelFor(m.date), cellColWidth-2))
	}
	sb.WriteString(dimStyle.Render(header))
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render(strings.Repeat("─", min(len(header), max(m.width, 20)))))
	sb.WriteByte('\n')

	for i, row := range m.rows {
		line := fmt.Sprintf("%-*s", deptColWidth, truncate(string(row.Department), deptColWidth-1))
		for _, id := range summaryColumns {
			line += fmt.Sprintf("%-*s", cellColWidth, truncate(summaryCellText(row, id), cellColWidth-2))
		}
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render(line))
		} else {
			sb.WriteString(styleRowLine(row, line))
		}
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	sb.WriteString(statusBarStyle.Render(" ↑/↓ select  enter open  ←/→ day  r reload  q quit"))

	if m.alert != "" {
		sb.WriteByte('\n')
		sb.WriteString(alertStyle.Render(m.alert))
	}

	return sb.String()
}

// summaryCellText flattens one cell for the table: dual-endpoint values
// join their lines, hidden metrics render as a dash.
func summaryCellText(row summary.Row, metricID string) string {
	for _, cell := range row.Cells {
		if cell.MetricID != metricID {
			continue
		}
		if cell.Placeholder != "" {
			return cell.Placeholder
		}
		if cell.Value.Secondary != "" && cell.MetricID == metrics.MetricQualityScore {
			return cell.Value.Display + " / " + cell.Value.Secondary
		}
		return cell.Value.Display
	}
	return "–"
}

// styleRowLine dims rows whose every cell is missing (typically a
// failed fetch degraded to an empty snapshot).
func styleRowLine(row summary.Row, line string) string {
	allMissing := len(row.Cells) > 0
	for _, cell := range row.Cells {
		if !cell.Value.Missing {
			allMissing = false
			break
		}
	}
	if allMissing {
		return pendingStyle.Render(line)
	}
	return line
}

func (m Model) renderHeader(context string) string {
	title := " botboard" + context + "  " + m.date.Format("Mon 2006-01-02")
	w := m.width
	if w < len(title) {
		w = len(title)
	}
	return headerStyle.Width(w).Render(title)
}

func truncate(s string, maxLen int) string {
	if maxLen < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return string(r[:1])
	}
	return string(r[:maxLen-1]) + "…"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
