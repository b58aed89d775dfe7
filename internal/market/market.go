// Package market supplies the crop quotes shown on the scrolling
// ticker, refreshed from a quotes endpoint and cached locally so the
// dashboard stays populated offline.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/store"
)

// Service fetches and caches crop quotes.
type Service struct {
	quotesURL  string
	httpClient *http.Client
	cache      store.Store
}

// NewService creates a market service. An empty quotesURL disables
// remote refresh; the built-in seed quotes are served instead.
func NewService(quotesURL string, cache store.Store) *Service {
	return &Service{
		quotesURL: quotesURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: cache,
	}
}

// Quotes returns the best quotes currently available: the local cache
// when populated, otherwise the seed set.
func (s *Service) Quotes(ctx context.Context) []model.CropQuote {
	if s.cache != nil {
		cached, err := s.cache.GetQuotes(ctx)
		if err == nil && len(cached) > 0 {
			return cached
		}
	}
	return model.SeedQuotes()
}

// Refresh fetches the quote list from the configured endpoint and
// updates the cache. On any failure the current best quotes are
// returned alongside the error so the ticker never goes blank.
func (s *Service) Refresh(ctx context.Context) ([]model.CropQuote, error) {
	if s.quotesURL == "" {
		return s.Quotes(ctx), nil
	}

	fetched, err := s.fetch(ctx)
	if err != nil {
		return s.Quotes(ctx), err
	}

	now := time.Now()
	for i := range fetched {
		fetched[i].FetchedAt = now
	}

	if s.cache != nil {
		if err := s.cache.UpsertQuotes(ctx, fetched); err != nil {
			return fetched, fmt.Errorf("caching quotes: %w", err)
		}
	}
	return fetched, nil
}

// fetch performs the HTTP GET against the quotes endpoint.
func (s *Service) fetch(ctx context.Context) ([]model.CropQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.quotesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating quotes request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("quotes endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading quotes response: %w", err)
	}

	var quotes []model.CropQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("decoding quotes: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("quotes endpoint returned an empty list")
	}
	return quotes, nil
}
