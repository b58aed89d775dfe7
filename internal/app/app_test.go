package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

func TestTickerQuotesHidePricesWhileSignedOut(t *testing.T) {
	m := New(Deps{})

	quotes := m.tickerQuotes()
	require.Len(t, quotes, len(model.SeedQuotes()))
	for _, q := range quotes {
		assert.Empty(t, q.Price)
		assert.Equal(t, "sign in to see price", q.Note)
		assert.NotEmpty(t, q.Name)
	}
}
