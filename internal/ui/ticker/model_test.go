package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

func TestAdvanceWrapsAroundTheLine(t *testing.T) {
	m := New(model.SeedQuotes(), 40)
	n := m.lineLen()
	require.Positive(t, n)

	for i := 0; i < n; i++ {
		m.Advance()
	}
	assert.Equal(t, 0, m.offset, "one full pass returns to the start")
}

func TestPauseStopsAutomaticScrolling(t *testing.T) {
	m := New(model.SeedQuotes(), 40)

	m.TogglePause()
	m.Advance()
	assert.Equal(t, 0, m.offset)
	assert.True(t, m.Paused())

	m.TogglePause()
	m.Advance()
	assert.Equal(t, 1, m.offset)
}

func TestManualScrubbing(t *testing.T) {
	m := New(model.SeedQuotes(), 40)

	m.ScrollLeft()
	assert.Equal(t, m.lineLen()-3, m.offset, "scrubbing backwards wraps")

	m.ScrollRight()
	assert.Equal(t, 0, m.offset)
}

func TestViewHandlesEmptyQuotes(t *testing.T) {
	m := New(nil, 40)
	assert.NotPanics(t, func() { _ = m.View() })
	m.Advance()
}
