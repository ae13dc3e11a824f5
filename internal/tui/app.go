package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/carbontrack/internal/dashboard"
	"github.com/sadopc/carbontrack/internal/export"
	"github.com/sadopc/carbontrack/internal/gateway"
)

// Client is the gateway surface the dashboard uses.
type Client interface {
	dashboard.Gateway
	export.Source
	LogEmission(ctx context.Context, e gateway.Entry) (gateway.LogResult, error)
	DeleteEmission(ctx context.Context, id string) error
	Stats(ctx context.Context) (gateway.Statistics, error)
}

type Options struct {
	ExportDir string
	Logger    *slog.Logger
	Now       func() time.Time
}

var exportFormats = []string{export.FormatJSON, export.FormatCSV}

// App is the root Bubble Tea model.
type App struct {
	client    Client
	loader    *dashboard.Loader
	state     *dashboard.State
	notes     *dashboard.Notifier
	slots     *dashboard.Slots
	logger    *slog.Logger
	exportDir string
	now       func() time.Time

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	loading       bool

	logForm   logFormModel
	history   historyModel
	analytics analyticsModel

	spinner spinner.Model
	help    help.Model
}

func NewApp(c Client, opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := help.New()
	h.ShowAll = false

	state := dashboard.NewState()
	loader := dashboard.NewLoader(c, opts.Logger)
	return App{
		client:     c,
		loader:     loader,
		state:      state,
		notes:      &dashboard.Notifier{},
		slots:      dashboard.NewSlots(),
		logger:     opts.Logger,
		exportDir:  opts.ExportDir,
		now:        opts.Now,
		activeView: viewOverview,
		loading:    true,
		logForm:    newLogFormModel(c, state, opts.Now),
		history:    newHistoryModel(c, loader, state),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(highlightStyle)),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, loadAllCmd(a.loader, a.state.Period))
}

func loadAllCmd(l *dashboard.Loader, period dashboard.Period) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{result: l.LoadAll(context.Background(), period)}
	}
}

// reload starts a full load and shows the spinner until it settles.
func (a *App) reload() tea.Cmd {
	a.loading = true
	return loadAllCmd(a.loader, a.state.Period)
}

func (a *App) notify(kind dashboard.Kind, text string) tea.Cmd {
	id := a.notes.Push(kind, text)
	return tea.Tick(dashboard.DisplayDuration, func(time.Time) tea.Msg {
		return notifyExitMsg{id: id}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.logForm.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.rebuildCharts()
		if a.activeView == viewAnalytics && a.analytics.ready {
			a.analytics.build(a.slots, a.state)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (form or confirm) gets keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			a.slots.ReleaseAll()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Refresh):
			cmd := a.reload()
			return a, cmd
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewOverview)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewLog)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewHistory)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewRecommendations)
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewAnalytics)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case loadedMsg:
		a.loading = false
		a.state.Apply(msg.result)
		a.history.clampCursor()
		a.rebuildCharts()
		if a.activeView == viewAnalytics && a.analytics.ready {
			a.analytics.build(a.slots, a.state)
		}
		if msg.result.AllFailed() {
			return a, a.notify(dashboard.KindError, "Error loading data")
		}
		return a, nil

	case emissionsLoadedMsg:
		if a.state.ApplyEmissions(msg.result) {
			a.history.clampCursor()
		}
		return a, nil

	case loggedMsg:
		note := a.notify(dashboard.KindSuccess,
			fmt.Sprintf("Activity logged! Emissions: %.2f kg CO2", msg.result.EmissionsKgCO2))
		var formCmd tea.Cmd
		a.logForm, formCmd = a.logForm.reset()
		load := a.reload()
		return a, tea.Batch(note, formCmd, load)

	case deletedMsg:
		note := a.notify(dashboard.KindSuccess, "Emission record deleted")
		load := a.reload()
		return a, tea.Batch(note, load)

	case exportDoneMsg:
		a.exportPicking = false
		return a, a.notify(dashboard.KindSuccess, "Exported to "+msg.path)

	case statusMsg:
		kind := dashboard.KindInfo
		if msg.isError {
			kind = dashboard.KindError
			a.logForm.submitting = false
		}
		return a, a.notify(kind, msg.text)

	case notifyExitMsg:
		if !a.notes.BeginExit(msg.id) {
			return a, nil
		}
		id := msg.id
		return a, tea.Tick(dashboard.ExitDuration, func(time.Time) tea.Msg {
			return notifyRemoveMsg{id: id}
		})

	case notifyRemoveMsg:
		a.notes.Remove(msg.id)
		return a, nil

	case analyticsReadyMsg:
		if a.activeView != viewAnalytics {
			return a, nil
		}
		a.analytics.ready = true
		a.analytics.build(a.slots, a.state)
		client := a.client
		return a, func() tea.Msg {
			st, err := client.Stats(context.Background())
			return statsLoadedMsg{stats: st, err: err}
		}

	case statsLoadedMsg:
		if msg.err != nil {
			a.logger.Warn("stats fetch failed", "error", msg.err)
			a.analytics.records = nil
			return a, nil
		}
		a.analytics.records = dashboard.RecordStatsRows(msg.stats)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	prev := a.activeView
	a.activeView = v
	if prev == viewAnalytics && v != viewAnalytics {
		a.analytics.ready = false
	}

	switch v {
	case viewLog:
		var cmd tea.Cmd
		a.logForm, cmd = a.logForm.open()
		return a, cmd
	case viewAnalytics:
		// Defer chart sizing until the tab has been laid out once.
		return a, func() tea.Msg { return analyticsReadyMsg{} }
	}
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewLog:
		a.logForm, cmd = a.logForm.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewLog:
		return a.logForm.active
	case viewHistory:
		return a.history.confirming
	}
	return false
}

func (a *App) rebuildCharts() {
	if a.width == 0 {
		return
	}
	w, h := chartSize(a.width/2, a.height)
	buildCategoryChart(a.slots, dashboard.CategorySeries(a.state.Summary.ByCategory), w, h)
	buildPredictionChart(a.slots, dashboard.PredictionSeries(a.state.Forecast.Predictions), w, h)
	tw, _ := chartSize(a.width, a.height)
	buildTypeChart(a.slots, dashboard.TypeSeries(a.state.Summary.ByType), tw, h/2+2)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewOverview:
		content = a.renderOverview()
	case viewLog:
		content = a.logForm.view()
	case viewHistory:
		content = a.history.view()
	case viewRecommendations:
		content = a.renderRecommendations()
	case viewAnalytics:
		content = a.analytics.view(a.slots)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("carbontrack")
	if a.loading {
		title += " " + a.spinner.View()
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := footerStyle.Render(a.help.View(keys))
	notes := a.renderNotifications()
	if notes == "" {
		return helpView
	}
	return lipgloss.JoinVertical(lipgloss.Left, notes, helpView)
}

func (a App) renderNotifications() string {
	active := a.notes.Active()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, 0, len(active))
	for _, n := range active {
		style := infoStyle
		icon := "ℹ"
		switch n.Kind {
		case dashboard.KindSuccess:
			style, icon = successStyle, "✓"
		case dashboard.KindError:
			style, icon = errorStyle, "✗"
		}
		if n.Exiting {
			style = mutedStyle
		}
		lines = append(lines, style.Render(" "+icon+" "+n.Text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range []string{"JSON", "CSV"} {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	client, dir, day := a.client, a.exportDir, a.now()
	return func() tea.Msg {
		path, err := export.Write(context.Background(), client, format, dir, day)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
