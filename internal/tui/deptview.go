package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
	"github.com/halcyon-ops/botboard/internal/summary"
)

func (m Model) renderDepartment() string {
	var sb strings.Builder

	context := " " + string(m.selectedDept)
	if sub := m.selectedSub(); sub != "" {
		context += " / " + sub
	}
	sb.WriteString(m.renderHeader(context))
	sb.WriteByte('\n')

	// The single-department view has no partial fallback: a failed
	// fetch is a blocking error state with a retry affordance.
	if m.deptErr != nil {
		sb.WriteByte('\n')
		sb.WriteString(errorStyle.Render("  Failed to load " + string(m.selectedDept)))
		sb.WriteByte('\n')
		sb.WriteString(dimStyle.Render("  " + m.deptErr.Error()))
		sb.WriteString("\n\n")
		sb.WriteString(statusBarStyle.Render("  r retry  esc back  q quit"))
		return sb.String()
	}

	if m.loading {
		sb.WriteString(dimStyle.Render("\n  Loading..."))
		return sb.String()
	}

	row := summary.BuildRow(m.selectedDept, m.date, m.deptSnapshot)

	labelWidth := 0
	for _, cell := range row.Cells {
		if len(cell.Label) > labelWidth {
			labelWidth = len(cell.Label)
		}
	}

	sb.WriteByte('\n')
	for _, cell := range row.Cells {
		sb.WriteString(m.renderMetricLine(cell, labelWidth))
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	help := " esc back  ←/→ day  r reload  o raw data  q quit"
	if len(policy.For(m.selectedDept).SubDepartments) > 0 {
		help = " tab sub-department " + help
	}
	sb.WriteString(statusBarStyle.Render(help))

	if m.alert != "" {
		sb.WriteByte('\n')
		sb.WriteString(alertStyle.Render(m.alert))
	}

	return sb.String()
}

func (m Model) renderMetricLine(cell summary.Cell, labelWidth int) string {
	label := panelTitleStyle.Render(fmt.Sprintf("  %-*s", labelWidth+2, cell.Label))

	if cell.Placeholder != "" {
		return label + placeholderStyle.Render(cell.Placeholder)
	}

	value := cell.Value.Display
	var rendered string
	switch {
	case cell.Value.Missing:
		rendered = pendingStyle.Render(value)
	case cell.Value.Severity != metrics.SeverityNone:
		rendered = severityStyle(cell.Value.Severity).Render("● " + value)
	default:
		rendered = value
	}

	line := label + rendered
	if cell.Value.Secondary != "" {
		line += "\n" + strings.Repeat(" ", labelWidth+4) + secondaryStyle.Render(cell.Value.Secondary)
	}
	return line
}

func severityStyle(s metrics.Severity) lipgloss.Style {
	switch s {
	case metrics.SeverityHigh:
		return sevHighStyle
	case metrics.SeverityMedium:
		return sevMediumStyle
	default:
		return sevLowStyle
	}
}
