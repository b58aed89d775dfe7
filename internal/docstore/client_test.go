package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

func TestFetchRemindersDecodesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/farmer@example.com", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"personalization": {
				"helpful_reminders": [
					{"id": "r1", "title": "Water crops", "description": "", "icon": "calendar", "expiresAt": 1700000000000},
					{"id": "r2", "title": "Pinned", "description": "", "icon": "leaf"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	got, err := c.FetchReminders(context.Background(), "farmer@example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "r1", got[0].ID)
	require.NotNil(t, got[0].ExpiresAt)
	assert.Equal(t, int64(1_700_000_000_000), *got[0].ExpiresAt)
	assert.Nil(t, got[1].ExpiresAt)
	assert.Empty(t, got[0].RemainingTime, "countdowns are not read from the store")
}

func TestFetchRemindersNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchReminders(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsUnavailable(err), "absence is not an availability failure")
}

func TestReplaceRemindersOmitsDerivedState(t *testing.T) {
	var captured map[string][]map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	exp := int64(42)
	c := NewClient(srv.URL, "tok")
	err := c.ReplaceReminders(context.Background(), "farmer@example.com", []model.Reminder{
		{ID: "r1", Title: "Water crops", Icon: model.IconCalendar, ExpiresAt: &exp, RemainingTime: "0d:0h:0m:1s"},
	})
	require.NoError(t, err)

	list := captured["personalization.helpful_reminders"]
	require.Len(t, list, 1)
	assert.Equal(t, "r1", list[0]["id"])
	assert.NotContains(t, list[0], "remainingTime")
	assert.NotContains(t, list[0], "RemainingTime")
}

func TestServerErrorIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.InitializeEmpty(context.Background(), "farmer@example.com")
	assert.True(t, IsUnavailable(err))
}

func TestRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.InitializeEmpty(context.Background(), "farmer@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
