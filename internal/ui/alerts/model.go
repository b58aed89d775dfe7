// Package alerts renders the advisory panel: pest warnings, disease
// sightings, and weather notices for the user's region.
package alerts

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// AlertsUpdatedMsg is sent when a fresh advisory set is available.
type AlertsUpdatedMsg struct {
	Alerts []model.Alert
}

// Model is the advisory panel component.
type Model struct {
	alerts []model.Alert
	width  int
	height int
}

// New creates an advisory panel with the given initial alerts.
func New(alerts []model.Alert, width, height int) Model {
	return Model{
		alerts: alerts,
		width:  width,
		height: height,
	}
}

// Update handles messages for the advisory panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if updated, ok := msg.(AlertsUpdatedMsg); ok {
		m.alerts = updated.Alerts
	}
	return m, nil
}

// View renders the advisory cards stacked vertically.
func (m Model) View() string {
	title := theme.PanelTitleStyle.Render("Alerts & Advisories")

	if len(m.alerts) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render("No advisories right now.")
		return lipgloss.JoinVertical(lipgloss.Left, title, "", empty)
	}

	sections := []string{title}
	cardWidth := m.width - 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	bodyStyle := lipgloss.NewStyle().Width(cardWidth)
	actionStyle := lipgloss.NewStyle().
		Foreground(theme.ColorBlue).
		Underline(true)

	for _, a := range m.alerts {
		card := lipgloss.JoinVertical(
			lipgloss.Left,
			theme.AlertKindStyle(a.Title).Render(a.Title),
			theme.AlertRegionStyle.Render(a.Region),
			bodyStyle.Render(a.Detail),
			actionStyle.Render("▸ "+a.ActionLabel),
		)
		sections = append(sections, theme.PanelStyle.Width(cardWidth).Render(card))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
