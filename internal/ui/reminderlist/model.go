// Package reminderlist renders the reminders panel: a selectable list
// of reminders with live countdowns.
package reminderlist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdeshmukh/farm-assistant/internal/keys"
	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// RemindersUpdatedMsg is sent when the reminder list has been recomputed.
type RemindersUpdatedMsg struct {
	Reminders []model.Reminder
}

// DeleteRequestedMsg is sent when the user asks to delete the selected
// reminder.
type DeleteRequestedMsg struct {
	ReminderID string
}

// Model is the reminders panel component.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new reminders panel.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Helpful Reminders"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.PanelTitleStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command for the panel.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the reminders panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RemindersUpdatedMsg:
		return m, m.setReminders(msg.Reminders)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Delete) {
			item, ok := m.list.SelectedItem().(ReminderItem)
			if !ok {
				return m, nil
			}
			id := item.Reminder.ID
			return m, func() tea.Msg {
				return DeleteRequestedMsg{ReminderID: id}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// setReminders replaces the list items, keeping the cursor on the same
// reminder where possible.
func (m *Model) setReminders(reminders []model.Reminder) tea.Cmd {
	var selectedID string
	if item, ok := m.list.SelectedItem().(ReminderItem); ok {
		selectedID = item.Reminder.ID
	}

	items := make([]list.Item, len(reminders))
	newIndex := -1
	for i, r := range reminders {
		items[i] = ReminderItem{Reminder: r}
		if r.ID == selectedID {
			newIndex = i
		}
	}

	cmd := m.list.SetItems(items)
	if newIndex >= 0 {
		m.list.Select(newIndex)
	}
	return cmd
}

// Selected returns the currently highlighted reminder, if any.
func (m Model) Selected() (model.Reminder, bool) {
	item, ok := m.list.SelectedItem().(ReminderItem)
	if !ok {
		return model.Reminder{}, false
	}
	return item.Reminder, true
}

// View renders the reminders panel.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when there are no reminders.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	return style.Render(
		"No reminders yet.\n\nPress 'a' to add one.",
	)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
