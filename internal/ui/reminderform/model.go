// Package reminderform implements the add-reminder form: a title plus
// day, hour, and minute selectors for the countdown duration.
package reminderform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// ReminderCreatedMsg is dispatched when a new reminder is submitted.
type ReminderCreatedMsg struct {
	Title  string
	Day    int
	Hour   int
	Minute int
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title  string
	day    int
	hour   int
	minute int
}

// Model is the Bubble Tea model for the add-reminder form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new reminder form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for creating a new reminder.
func (m *Model) Start() tea.Cmd {
	m.fb.title = ""
	m.fb.day = 0
	m.fb.hour = 0
	m.fb.minute = 0
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the reminder form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the reminder form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Reminder") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What should we remind you about?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewSelect[int]().
				Title("Days").
				Options(intOptions(0, 30)...).
				Value(&m.fb.day),
			huh.NewSelect[int]().
				Title("Hours").
				Options(intOptions(0, 23)...).
				Value(&m.fb.hour),
			huh.NewSelect[int]().
				Title("Minutes").
				Options(intOptions(0, 59)...).
				Value(&m.fb.minute),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	return func() tea.Msg {
		return ReminderCreatedMsg{
			Title:  fb.title,
			Day:    fb.day,
			Hour:   fb.hour,
			Minute: fb.minute,
		}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// intOptions builds the numeric select options for the range [lo, hi].
func intOptions(lo, hi int) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d", v), v))
	}
	return opts
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
