package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/carbontrack/internal/dashboard"
)

type historyModel struct {
	client Client
	loader *dashboard.Loader
	state  *dashboard.State
	width  int
	height int

	cursor int

	confirming bool
	confirm    *huh.Form
	confirmed  *bool
	pendingID  string
}

func newHistoryModel(c Client, l *dashboard.Loader, s *dashboard.State) historyModel {
	confirmed := false
	return historyModel{client: c, loader: l, state: s, confirmed: &confirmed}
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

func (h *historyModel) clampCursor() {
	h.cursor = clamp(h.cursor, 0, max(len(h.state.Emissions)-1, 0))
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if h.confirming && h.confirm != nil {
		return h.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(km, keys.Down):
		if h.cursor < len(h.state.Emissions)-1 {
			h.cursor++
		}
	case key.Matches(km, keys.All):
		return h.selectPeriod(dashboard.PeriodAll)
	case key.Matches(km, keys.Week):
		return h.selectPeriod(dashboard.PeriodWeek)
	case key.Matches(km, keys.Month):
		return h.selectPeriod(dashboard.PeriodMonth)
	case key.Matches(km, keys.Year):
		return h.selectPeriod(dashboard.PeriodYear)
	case key.Matches(km, keys.Left):
		return h.selectPeriod(h.shiftPeriod(-1))
	case key.Matches(km, keys.Right):
		return h.selectPeriod(h.shiftPeriod(1))
	case key.Matches(km, keys.Delete):
		return h.askDelete()
	}
	return h, nil
}

func (h historyModel) shiftPeriod(delta int) dashboard.Period {
	n := len(dashboard.Periods)
	for i, p := range dashboard.Periods {
		if p == h.state.Period {
			return dashboard.Periods[(i+delta+n)%n]
		}
	}
	return dashboard.PeriodAll
}

// selectPeriod makes p the only active filter and reloads just the list.
func (h historyModel) selectPeriod(p dashboard.Period) (historyModel, tea.Cmd) {
	h.state.SetPeriod(p)
	h.cursor = 0
	loader := h.loader
	return h, func() tea.Msg {
		return emissionsLoadedMsg{result: loader.LoadEmissions(context.Background(), p)}
	}
}

func (h historyModel) askDelete() (historyModel, tea.Cmd) {
	if len(h.state.Emissions) == 0 {
		return h, nil
	}
	rec := h.state.Emissions[h.cursor]
	h.pendingID = rec.ID
	*h.confirmed = false
	h.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this record?").
				Description(fmt.Sprintf("%s, %s, %.2f kg CO2", rec.Type, dashboard.FormatDate(rec.Date), rec.Emissions)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(h.confirmed),
		),
	).WithShowHelp(true)
	h.confirming = true
	return h, h.confirm.Init()
}

func (h historyModel) updateConfirm(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return h.resolve(false)
	}

	form, cmd := h.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.confirm = f
	}
	switch h.confirm.State {
	case huh.StateCompleted:
		return h.resolve(*h.confirmed)
	case huh.StateAborted:
		return h.resolve(false)
	}
	return h, cmd
}

// resolve closes the confirmation. Declining sends nothing.
func (h historyModel) resolve(accept bool) (historyModel, tea.Cmd) {
	id := h.pendingID
	h.confirming = false
	h.confirm = nil
	h.pendingID = ""
	if !accept || id == "" {
		return h, nil
	}
	// The list may have been reloaded while the prompt was open.
	if _, ok := h.state.Record(id); !ok {
		return h, func() tea.Msg {
			return statusMsg{text: "Record is no longer listed", isError: true}
		}
	}
	client := h.client
	return h, func() tea.Msg {
		if err := client.DeleteEmission(context.Background(), id); err != nil {
			return statusMsg{text: fmt.Sprintf("Error deleting record: %v", err), isError: true}
		}
		return deletedMsg{id: id}
	}
}

func (h historyModel) view() string {
	w := h.width - 4
	title := titleStyle.Render("Activity History")

	if h.confirming && h.confirm != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, warningStyle.Render("This cannot be undone."), "", h.confirm.View()),
		)
	}

	var filters []string
	for _, p := range dashboard.Periods {
		if p == h.state.Period {
			filters = append(filters, activeTabStyle.Render(p.Label()))
		} else {
			filters = append(filters, inactiveTabStyle.Render(p.Label()))
		}
	}
	filterRow := lipgloss.JoinHorizontal(lipgloss.Bottom, filters...)

	rows, placeholder := dashboard.ActivityRows(h.state.Emissions)
	if placeholder != "" {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, filterRow, "", mutedStyle.Render(placeholder),
		))
	}

	lines := []string{
		title,
		filterRow,
		"",
		mutedStyle.Render(fmt.Sprintf("  %-14s %10s  %-14s %-12s %12s", "Type", "Value", "Date", "Category", "kg CO2")),
		mutedStyle.Render("  " + strings.Repeat("─", min(max(w-6, 10), 68))),
	}
	for i, r := range rows {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%-14s %10s  %-14s %-12s %12s",
			cursor, r.Type, r.Value, r.Date, r.Category, r.Emissions)))
	}
	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("  a/w/m/y or ←/→: filter  d: delete  ↑/↓: move"))

	return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
}
