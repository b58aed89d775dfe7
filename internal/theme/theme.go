package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorGreen).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps a dashboard panel.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// PanelTitleStyle renders a panel heading.
var PanelTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorGreen).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorGreen)

// UrgentStyle flags reminders that are about to expire.
var UrgentStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// CountdownStyle renders the remaining time of a reminder.
var CountdownStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// TickerStyle renders the scrolling market quote line.
var TickerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Padding(0, 1)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// AlertRegionStyle renders the region tag on an advisory card.
var AlertRegionStyle = lipgloss.NewStyle().
	Foreground(ColorOrange).
	Bold(true)

// AlertKindStyle returns a color-coded style for an advisory title based
// on rough severity keywords.
func AlertKindStyle(title string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch {
	case strings.Contains(title, "Warning") || strings.Contains(title, "Alert"):
		return base.Foreground(ColorRed)
	case strings.Contains(title, "Rain") || strings.Contains(title, "Weather"):
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGreen)
	}
}
