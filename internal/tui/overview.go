package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/carbontrack/internal/dashboard"
)

func (a App) renderOverview() string {
	w := a.width - 4
	tiles := dashboard.SummaryTiles(a.state.Summary)

	tileW := max((w-8)/4, 14)
	tile := func(label, value string) string {
		return tileStyle.Width(tileW).Render(
			lipgloss.JoinVertical(lipgloss.Center, tileValueStyle.Render(value), mutedStyle.Render(label)),
		)
	}
	tileRow := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Total kg CO2", tiles.Total),
		tile("Monthly avg kg", tiles.MonthlyAverage),
		tile("Top contributor", tiles.TopContributor),
		tile("Activities", tiles.Records),
	)

	series := dashboard.CategorySeries(a.state.Summary.ByCategory)
	category := mutedStyle.Render(dashboard.NoCategoryData)
	if chart := slotView(a.slots, slotCategory); chart != "" {
		category = lipgloss.JoinVertical(lipgloss.Left, chart, renderCategoryLegend(series))
	}
	categoryPanel := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("By Category"), category)

	forecast := mutedStyle.Render(dashboard.ForecastCaption(a.state.Forecast))
	if chart := slotView(a.slots, slotPredictions); chart != "" {
		forecast = lipgloss.JoinVertical(lipgloss.Left, chart, forecast)
	}
	forecastPanel := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Forecast"), forecast)

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(w/2).Render(categoryPanel),
		lipgloss.NewStyle().Width(w-w/2).Render(forecastPanel),
	)

	types := slotView(a.slots, slotTypes)
	if types == "" {
		types = mutedStyle.Render(dashboard.NoTypeData)
	}
	typePanel := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("By Activity"), types)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, tileRow, "", charts, "", typePanel))
}

func (a App) renderRecommendations() string {
	w := a.width - 4
	title := titleStyle.Render("Recommendations")

	cards, placeholder := dashboard.RecommendationCards(a.state.Recommendations)
	if placeholder != "" {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render(placeholder),
		))
	}

	blocks := []string{title}
	for _, c := range cards {
		stats := make([]string, 0, len(c.Stats))
		for _, s := range c.Stats {
			stats = append(stats, fmt.Sprintf("%s %s", mutedStyle.Render(s.Label+":"), highlightStyle.Render(s.Value+s.Unit)))
		}
		lines := []string{
			accentStyle.Bold(true).Render(c.Title),
			c.Description,
			strings.Join(stats, "   "),
		}
		if c.Timeframe != "" {
			lines = append(lines, mutedStyle.Render("Implementation: "+c.Timeframe))
		}
		blocks = append(blocks, activePanelStyle.Width(w-6).Padding(0, 1).Render(strings.Join(lines, "\n")))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}
