package market_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/market"
	"github.com/pdeshmukh/farm-assistant/tests/testutil"
)

func TestQuotesFallsBackToSeed(t *testing.T) {
	s := market.NewService("", testutil.NewTestStore(t))

	got := s.Quotes(context.Background())
	require.Len(t, got, 5)
	assert.Equal(t, "Tomato", got[0].Name)
}

func TestRefreshUpdatesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name": "Tomato", "price": "₹28/kg", "image": "tomato.jpeg", "note": "up 5% today"},
			{"name": "Ragi", "price": "₹35/kg", "image": "ragi.jpeg", "note": ""}
		]`))
	}))
	defer srv.Close()

	cache := testutil.NewTestStore(t)
	s := market.NewService(srv.URL, cache)

	got, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].FetchedAt.IsZero())

	cached, err := cache.GetQuotes(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestRefreshFailureServesCachedQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cache := testutil.NewTestStore(t)
	s := market.NewService(srv.URL, cache)

	got, err := s.Refresh(context.Background())
	assert.Error(t, err)
	require.Len(t, got, 5, "seed quotes keep the ticker populated")
}
