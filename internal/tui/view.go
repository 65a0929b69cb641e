package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	unselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Width(24)

	metricValueStyle = lipgloss.NewStyle().Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			MarginRight(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// View implements tea.Model.
func (m Model) View() string {
	var params strings.Builder
	for i, p := range m.params {
		line := fmt.Sprintf("%-22s %12s", p.label, p.value(&m.profile))
		if i == m.selected {
			params.WriteString(selectedStyle.Render("> " + line))
		} else {
			params.WriteString(unselectedStyle.Render("  " + line))
		}
		params.WriteString("\n")
	}

	var metrics strings.Builder
	if m.err != nil {
		metrics.WriteString(dangerStyle.Render(m.err.Error()))
		metrics.WriteString("\n")
	}
	if m.result != nil {
		writeMetric(&metrics, "Balance at retirement", m.result.BalanceAtRetirement.StringFixed(0))
		writeMetric(&metrics, "Balance at end", m.result.BalanceAtEnd.StringFixed(0))
		if m.result.PerpetuityFeasible {
			writeMetric(&metrics, "Perpetuity capital", m.result.RequiredCapitalForPerpetuity.StringFixed(0))
		} else {
			writeMetric(&metrics, "Perpetuity capital", "n/a")
		}
		writeMetric(&metrics, "PV of deficit", m.result.PVOfDeficit.StringFixed(0))
		if m.result.DepletionAge != nil {
			metrics.WriteString(metricLabelStyle.Render("Depletes at age"))
			metrics.WriteString(dangerStyle.Render(fmt.Sprintf("%.1f", *m.result.DepletionAge)))
			metrics.WriteString("\n")
		} else {
			writeMetric(&metrics, "Depletes at age", "never")
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(params.String()),
		panelStyle.Render(metrics.String()))

	return titleStyle.Render("penplan projection explorer") + "\n" +
		body + "\n" +
		helpStyle.Render("↑/↓ select   ←/→ adjust   q quit")
}

func writeMetric(b *strings.Builder, label, value string) {
	b.WriteString(metricLabelStyle.Render(label))
	b.WriteString(metricValueStyle.Render(value))
	b.WriteString("\n")
}
