package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// storedReminder is the wire shape of a reminder inside the user
// document. The countdown string is derived client-side and never
// round-trips through the store.
type storedReminder struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"`
}

// userDocument is the wire shape of a per-user document.
type userDocument struct {
	Personalization struct {
		HelpfulReminders []storedReminder `json:"helpful_reminders"`
	} `json:"personalization"`
}

// Client is a thin HTTP client for the hosted document service. It
// handles Bearer token authentication, JSON marshaling, and automatic
// retry with backoff on HTTP 429.
type Client struct {
	baseURL    string
	mu         sync.Mutex
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a document service client. The baseURL should be
// the root URL of the service; documents live at /users/{userKey}.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// FetchReminders retrieves the user document and returns its reminder
// list. A 404 maps to ErrNotFound; any other failure to a RemoteError.
func (c *Client) FetchReminders(
	ctx context.Context,
	userKey string,
) ([]model.Reminder, error) {
	var doc userDocument
	if err := c.do(ctx, http.MethodGet, c.documentPath(userKey), nil, &doc); err != nil {
		return nil, err
	}

	reminders := make([]model.Reminder, 0, len(doc.Personalization.HelpfulReminders))
	for _, sr := range doc.Personalization.HelpfulReminders {
		reminders = append(reminders, model.Reminder{
			ID:          sr.ID,
			Title:       sr.Title,
			Description: sr.Description,
			Icon:        sr.Icon,
			ExpiresAt:   sr.ExpiresAt,
		})
	}
	return reminders, nil
}

// InitializeEmpty creates the user document with an empty reminder list.
func (c *Client) InitializeEmpty(ctx context.Context, userKey string) error {
	var doc userDocument
	doc.Personalization.HelpfulReminders = []storedReminder{}
	return c.do(ctx, http.MethodPut, c.documentPath(userKey), doc, nil)
}

// ReplaceReminders overwrites the persisted reminder list in full.
func (c *Client) ReplaceReminders(
	ctx context.Context,
	userKey string,
	list []model.Reminder,
) error {
	stored := make([]storedReminder, 0, len(list))
	for _, r := range list {
		stored = append(stored, storedReminder{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Icon:        r.Icon,
			ExpiresAt:   r.ExpiresAt,
		})
	}

	body := map[string]interface{}{
		"personalization.helpful_reminders": stored,
	}
	return c.do(ctx, http.MethodPatch, c.documentPath(userKey), body, nil)
}

// SetToken replaces the bearer token, e.g. after a fresh sign-in.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// documentPath returns the resource path for a user's document.
func (c *Client) documentPath(userKey string) string {
	return "/users/" + url.PathEscape(userKey)
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with backoff, and JSON (de)serialization. Every
// transport or status failure other than 404 is wrapped as a
// RemoteError so callers can treat the store as merely unavailable.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	reqURL := c.baseURL + path

	var bodyData []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyData = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if bodyData != nil {
			bodyReader = bytes.NewReader(bodyData)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return &RemoteError{Op: method + " " + path, Cause: err}
		}

		if token := c.bearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Accept", "application/json")
		if bodyData != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &RemoteError{Op: method + " " + path, Cause: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &RemoteError{Op: method + " " + path, Cause: readErr}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")

			select {
			case <-ctx.Done():
				return &RemoteError{Op: method + " " + path, Cause: ctx.Err()}
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		}

		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &RemoteError{
				Op:    method + " " + path,
				Cause: fmt.Errorf("authentication failed (401): check the access token for %s", c.baseURL),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &RemoteError{
				Op:    method + " " + path,
				Cause: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
			}
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return &RemoteError{
					Op:    method + " " + path,
					Cause: fmt.Errorf("decoding response: %w", err),
				}
			}
		}

		return nil
	}

	return &RemoteError{Op: method + " " + path, Cause: lastErr}
}

// retryAfterDuration honors the Retry-After header when present and
// falls back to exponential backoff.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(1<<attempt) * time.Second
}

// truncate shortens s to at most n runes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
