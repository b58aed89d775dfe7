package reminderlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdeshmukh/farm-assistant/internal/countdown"
	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// ReminderItem wraps a model.Reminder so it can be used in a bubbles/list.
type ReminderItem struct {
	Reminder model.Reminder
}

// FilterValue returns the string used for fuzzy filtering.
func (i ReminderItem) FilterValue() string { return i.Reminder.Title }

// Title returns the reminder title for the list.
func (i ReminderItem) Title() string { return i.Reminder.Title }

// Description returns the reminder description for the list.
func (i ReminderItem) Description() string { return i.Reminder.Description }

// ItemDelegate implements list.ItemDelegate for rendering reminder rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single reminder entry: icon, title, and countdown on
// the first line, description on the second.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(ReminderItem)
	if !ok {
		return
	}

	r := ri.Reminder
	isSelected := index == m.Index()

	remaining := r.RemainingTime
	var countdownStr string
	switch {
	case remaining == "":
		countdownStr = ""
	case countdown.IsUrgent(remaining):
		countdownStr = theme.UrgentStyle.Render(remaining)
	default:
		countdownStr = theme.CountdownStyle.Render(remaining)
	}

	line := fmt.Sprintf("%s %s  %s", iconGlyph(r.Icon), r.Title, countdownStr)
	desc := theme.HelpStyle.Render(r.Description)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
		desc = theme.SelectedItemStyle.Render(desc)
	} else {
		line = theme.ListItemStyle.Render(line)
		desc = theme.ListItemStyle.Render(desc)
	}

	fmt.Fprint(w, line+"\n"+desc)
}

// iconGlyph maps an icon kind to its terminal glyph.
func iconGlyph(icon string) string {
	switch icon {
	case model.IconCalendar:
		return "📅"
	case model.IconLeaf:
		return "🌿"
	case model.IconShield:
		return "🛡"
	default:
		return "•"
	}
}
