package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/carbontrack/internal/dashboard"
)

// Chart slots.
const (
	slotCategory    = "category"
	slotPredictions = "predictions"
	slotTypes       = "types"
	slotTypeLine    = "type-line"
)

type chartView interface {
	View() string
}

// chartHandle owns one drawn ntcharts model until the slot replaces it.
type chartHandle struct {
	chart chartView
}

func (h *chartHandle) Release() { h.chart = nil }

func (h *chartHandle) View() string {
	if h.chart == nil {
		return ""
	}
	return h.chart.View()
}

func slotView(slots *dashboard.Slots, slot string) string {
	h, ok := slots.Get(slot)
	if !ok {
		return ""
	}
	if ch, ok := h.(*chartHandle); ok {
		return ch.View()
	}
	return ""
}

func chartSize(width, height int) (int, int) {
	w := max(width-8, 20)
	h := 10
	if height > 40 {
		h = 14
	}
	return w, h
}

func buildCategoryChart(slots *dashboard.Slots, series []dashboard.Slice, w, h int) {
	if len(series) == 0 {
		slots.Release(slotCategory)
		return
	}
	m := barchart.New(w, h)
	bars := make([]barchart.BarData, 0, len(series))
	for _, s := range series {
		bars = append(bars, barchart.BarData{
			Label: s.Label,
			Values: []barchart.BarValue{{
				Name:  s.Label,
				Value: s.Value,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)),
			}},
		})
	}
	m.PushAll(bars)
	m.Draw()
	slots.Acquire(slotCategory, &chartHandle{chart: &m})
}

func buildPredictionChart(slots *dashboard.Slots, points []dashboard.Point, w, h int) {
	if len(points) == 0 {
		slots.Release(slotPredictions)
		return
	}
	m := timeserieslinechart.New(w, h)
	for _, p := range points {
		m.Push(timeserieslinechart.TimePoint{Time: p.Time, Value: p.Value})
	}
	m.DrawBraille()
	slots.Acquire(slotPredictions, &chartHandle{chart: &m})
}

func buildTypeChart(slots *dashboard.Slots, bars []dashboard.Bar, w, h int) {
	if len(bars) == 0 {
		slots.Release(slotTypes)
		return
	}
	m := barchart.New(w, h, barchart.WithHorizontalBars())
	data := make([]barchart.BarData, 0, len(bars))
	for i, b := range bars {
		color := dashboard.Palette[i%len(dashboard.Palette)]
		data = append(data, barchart.BarData{
			Label: b.Label,
			Values: []barchart.BarValue{{
				Name:  b.Label,
				Value: b.Value,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(color)),
			}},
		})
	}
	m.PushAll(data)
	m.Draw()
	slots.Acquire(slotTypes, &chartHandle{chart: &m})
}

func buildTypeLine(slots *dashboard.Slots, bars []dashboard.Bar, w, h int) {
	if len(bars) == 0 {
		slots.Release(slotTypeLine)
		return
	}
	m := streamlinechart.New(w, h)
	for _, b := range bars {
		m.Push(b.Value)
	}
	m.Draw()
	slots.Acquire(slotTypeLine, &chartHandle{chart: &m})
}

func renderCategoryLegend(series []dashboard.Slice) string {
	items := make([]string, 0, len(series))
	for _, s := range series {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("●")
		items = append(items, fmt.Sprintf("%s %s %.2f kg (%.1f%%)", dot, s.Label, s.Value, s.Percent))
	}
	return "  " + strings.Join(items, "  ")
}
