package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/carbontrack/internal/dashboard"
)

var logCategories = []string{"transport", "energy", "food", "waste", "water", "general"}

type logFormModel struct {
	client Client
	state  *dashboard.State
	now    func() time.Time
	width  int
	height int

	active     bool
	submitting bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formType     *string
	formCategory *string
	formValue    *string
	formDate     *string
	formNotes    *string
}

func newLogFormModel(c Client, state *dashboard.State, now func() time.Time) logFormModel {
	typ, cat, value, date, notes := "", logCategories[0], "", dashboard.Today(now()), ""
	return logFormModel{
		client:       c,
		state:        state,
		now:          now,
		formType:     &typ,
		formCategory: &cat,
		formValue:    &value,
		formDate:     &date,
		formNotes:    &notes,
	}
}

func (l *logFormModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

// open shows the form with the current field values.
func (l logFormModel) open() (logFormModel, tea.Cmd) {
	typeOptions := make([]huh.Option[string], len(l.state.ActivityTypes))
	for i, t := range l.state.ActivityTypes {
		typeOptions[i] = huh.NewOption(t, t)
	}
	catOptions := make([]huh.Option[string], len(logCategories))
	for i, c := range logCategories {
		catOptions[i] = huh.NewOption(c, c)
	}

	// Without a catalog the type is typed in and checked by the gateway.
	var typeField huh.Field = huh.NewInput().Title("Activity Type").Value(l.formType)
	if len(typeOptions) > 0 {
		typeField = huh.NewSelect[string]().Title("Activity Type").Options(typeOptions...).Value(l.formType)
	}

	l.form = huh.NewForm(
		huh.NewGroup(
			typeField,
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(l.formCategory),
			huh.NewInput().Title("Value").Placeholder("e.g. 25").Value(l.formValue),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(l.formDate),
			huh.NewInput().Title("Notes").Value(l.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	l.active = true
	return l, l.form.Init()
}

// reset clears the fields after a successful submit and reopens the form.
func (l logFormModel) reset() (logFormModel, tea.Cmd) {
	*l.formType = ""
	*l.formCategory = logCategories[0]
	*l.formValue = ""
	*l.formDate = dashboard.Today(l.now())
	*l.formNotes = ""
	l.submitting = false
	return l.open()
}

func (l logFormModel) input() dashboard.FormInput {
	return dashboard.FormInput{
		Type:     *l.formType,
		Category: *l.formCategory,
		Value:    *l.formValue,
		Date:     *l.formDate,
		Notes:    *l.formNotes,
	}
}

func (l logFormModel) update(msg tea.Msg) (logFormModel, tea.Cmd) {
	if !l.active || l.form == nil {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" && !l.submitting {
			return l.open()
		}
		return l, nil
	}

	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			l.active = false
			l.form = nil
			return l, nil
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		return l.submit()
	}
	return l, cmd
}

// submit validates the form and posts it. Invalid input never reaches the
// gateway.
func (l logFormModel) submit() (logFormModel, tea.Cmd) {
	entry, err := dashboard.ValidateEntry(l.input(), l.now())
	if err != nil {
		reopened, cmd := l.open()
		return reopened, tea.Batch(cmd, func() tea.Msg {
			return statusMsg{text: err.Error(), isError: true}
		})
	}

	l.active = false
	l.form = nil
	l.submitting = true
	client := l.client
	return l, func() tea.Msg {
		res, err := client.LogEmission(context.Background(), entry)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error logging activity: %v", err), isError: true}
		}
		return loggedMsg{result: res}
	}
}

func (l logFormModel) view() string {
	w := l.width - 4
	title := titleStyle.Render("Log Activity")

	if l.active && l.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", l.form.View())
		return panelStyle.Width(w).Render(content)
	}

	hint := "Press enter to log an activity."
	if l.submitting {
		hint = "Saving..."
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render(hint))
	return panelStyle.Width(w).Render(content)
}
