// Package ticker renders the scrolling crop price line at the top of
// the dashboard.
package ticker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// separator joins adjacent quotes on the ticker line.
const separator = "   •   "

// Model is the market ticker component. The line advances one cell per
// tick unless paused, and the arrow keys scrub it manually.
type Model struct {
	quotes []model.CropQuote
	offset int
	paused bool
	width  int
}

// New creates a ticker with the given initial quotes.
func New(quotes []model.CropQuote, width int) Model {
	return Model{
		quotes: quotes,
		width:  width,
	}
}

// SetQuotes replaces the quote set, clamping the scroll offset.
func (m *Model) SetQuotes(quotes []model.CropQuote) {
	m.quotes = quotes
	m.offset = m.offset % max(1, m.lineLen())
}

// Advance moves the ticker one cell to the left unless paused.
func (m *Model) Advance() {
	if m.paused {
		return
	}
	m.scroll(1)
}

// ScrollLeft scrubs the ticker backwards.
func (m *Model) ScrollLeft() { m.scroll(-3) }

// ScrollRight scrubs the ticker forwards.
func (m *Model) ScrollRight() { m.scroll(3) }

// TogglePause flips the automatic scrolling state.
func (m *Model) TogglePause() {
	m.paused = !m.paused
}

// Paused reports whether automatic scrolling is suspended.
func (m Model) Paused() bool { return m.paused }

// Update handles messages for the ticker (none today; the parent calls
// the scroll methods directly from its key handling).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the visible window of the ticker line.
func (m Model) View() string {
	line := m.line()
	if line == "" {
		return theme.TickerStyle.Render("")
	}

	// Double the line so the window can wrap around the end.
	runes := []rune(line + separator + line)
	start := m.offset % m.lineLen()
	width := m.width - 2
	if width < 1 {
		width = 1
	}
	end := start + width
	if end > len(runes) {
		end = len(runes)
	}

	visible := string(runes[start:end])
	if m.paused {
		visible += " ⏸"
	}
	return theme.TickerStyle.Render(visible)
}

// SetSize updates the ticker width.
func (m *Model) SetSize(width int) {
	m.width = width
}

// scroll moves the offset by delta cells, wrapping around the line.
func (m *Model) scroll(delta int) {
	n := m.lineLen()
	if n == 0 {
		return
	}
	m.offset = ((m.offset+delta)%n + n) % n
}

// line builds the full unscrolled ticker string.
func (m Model) line() string {
	if len(m.quotes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.quotes))
	for _, q := range m.quotes {
		entry := q.Name
		if q.Price != "" {
			entry += " " + q.Price
		}
		if q.Note != "" {
			entry += " (" + q.Note + ")"
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, separator)
}

// lineLen is the rune length of one full pass of the ticker line
// including the trailing separator.
func (m Model) lineLen() int {
	line := m.line()
	if line == "" {
		return 0
	}
	return len([]rune(line + separator))
}
