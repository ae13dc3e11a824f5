package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/carbontrack/internal/dashboard"
)

type analyticsModel struct {
	width  int
	height int

	// ready is set by the deferred tick after the tab opens.
	ready   bool
	rows    []dashboard.StatRow
	records []dashboard.StatRow
	built   int
}

func (m *analyticsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *analyticsModel) build(slots *dashboard.Slots, state *dashboard.State) {
	w, h := chartSize(m.width, m.height)
	buildTypeLine(slots, dashboard.TypeSeries(state.Summary.ByType), w, h/2+2)
	m.rows = dashboard.StatisticsRows(state.Summary)
	m.built++
}

func (m analyticsModel) view(slots *dashboard.Slots) string {
	w := m.width - 4
	title := titleStyle.Render("Analytics")
	if !m.ready {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("Preparing charts...")))
	}

	types := slotView(slots, slotTypes)
	if types == "" {
		types = mutedStyle.Render(dashboard.NoTypeData)
	}
	line := slotView(slots, slotTypeLine)

	table := statTable(m.rows)
	records := mutedStyle.Render(dashboard.NotAvailable)
	if len(m.records) > 0 {
		records = statTable(m.records)
	}

	parts := []string{title, "", titleStyle.Render("Emissions by Activity"), types}
	if line != "" {
		parts = append(parts, "", line)
	}
	parts = append(parts, "", titleStyle.Render("Statistics"), table,
		"", titleStyle.Render("Per Record"), records)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func statTable(rows []dashboard.StatRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %-28s %s", r.Label, highlightStyle.Render(r.Value)))
	}
	return strings.Join(lines, "\n")
}
