// Package ui holds the shared layout helpers for composing the
// dashboard's header, panels, and status bar.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	TickerHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight, TickerHeight, and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		TickerHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the panel area,
// accounting for the header, ticker, and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.TickerHeight - l.StatusBarHeight
}

// SplitColumns divides the content width between the reminders panel
// and the advisory panel. The reminders panel takes roughly 60%.
func (l Layout) SplitColumns() (left, right int) {
	left = l.Width * 6 / 10
	right = l.Width - left
	return left, right
}

// RenderHeader renders the top header bar with a title and session status.
func (l Layout) RenderHeader(title string, sessionStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(sessionStatus)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, ticker line, panel area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	ticker string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		ticker,
		content,
		statusBar,
	)
}
