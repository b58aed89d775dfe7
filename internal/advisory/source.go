// Package advisory pulls crop advisory bulletins from an agriculture
// department mailbox over IMAP and maps them onto the alert cards shown
// on the dashboard. When no mailbox is configured, or a poll fails, the
// built-in advisory set keeps the panel populated.
package advisory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/store"
)

const (
	// lookback bounds the IMAP search window.
	lookback = 7 * 24 * time.Hour

	// maxBulletins caps how many mails a single poll maps to alerts.
	maxBulletins = 20

	defaultActionLabel = "See more details"
)

// BulletinFetcher is the slice of the IMAP client the source needs.
type BulletinFetcher interface {
	FetchBulletins(ctx context.Context, since time.Time, limit int) ([]Bulletin, error)
}

// Source polls the bulletin mailbox and caches the resulting alerts.
type Source struct {
	fetcher BulletinFetcher
	cache   store.Store

	// sender filters bulletins to one trusted address. Empty accepts all.
	sender string

	now func() time.Time
}

// NewSource creates an advisory source. A nil fetcher means no mailbox
// is configured; Alerts then serves cached or built-in alerts only.
func NewSource(fetcher BulletinFetcher, cache store.Store, sender string) *Source {
	return &Source{
		fetcher: fetcher,
		cache:   cache,
		sender:  strings.ToLower(strings.TrimSpace(sender)),
		now:     time.Now,
	}
}

// Alerts returns the best advisories currently available: the local
// cache when populated, otherwise the built-in set.
func (s *Source) Alerts(ctx context.Context) []model.Alert {
	if s.cache != nil {
		cached, err := s.cache.GetAlerts(ctx, maxBulletins)
		if err == nil && len(cached) > 0 {
			return cached
		}
	}
	return model.BuiltinAlerts()
}

// Poll fetches recent bulletins from the mailbox, maps them to alerts,
// and updates the cache. New alerts also raise an unread notification.
// On any failure the current best alerts are returned alongside the
// error so the panel never goes blank.
func (s *Source) Poll(ctx context.Context) ([]model.Alert, error) {
	if s.fetcher == nil {
		return s.Alerts(ctx), nil
	}

	bulletins, err := s.fetcher.FetchBulletins(ctx, s.now().Add(-lookback), maxBulletins)
	if err != nil {
		return s.Alerts(ctx), err
	}

	known := map[string]bool{}
	if s.cache != nil {
		if cached, err := s.cache.GetAlerts(ctx, maxBulletins); err == nil {
			for _, a := range cached {
				known[a.ID] = true
			}
		}
	}

	var fresh []model.Alert
	for _, b := range bulletins {
		if s.sender != "" && strings.ToLower(b.From) != s.sender {
			continue
		}
		alert := alertFromBulletin(b)
		if !known[alert.ID] {
			fresh = append(fresh, alert)
		}
	}

	if len(fresh) == 0 {
		return s.Alerts(ctx), nil
	}

	if s.cache != nil {
		if err := s.cache.UpsertAlerts(ctx, fresh); err != nil {
			return fresh, fmt.Errorf("caching alerts: %w", err)
		}
		for _, a := range fresh {
			_ = s.cache.CreateNotification(ctx, model.Notification{
				Kind:    "advisory",
				Message: "New bulletin: " + a.Title,
			})
		}
	}

	return s.Alerts(ctx), nil
}

// alertFromBulletin maps one mail onto an alert card. The message ID
// keeps the mapping stable across polls; a body line of the form
// "Region: ..." sets the region, and "Action: ..." the action label.
func alertFromBulletin(b Bulletin) model.Alert {
	alert := model.Alert{
		ID:          b.MessageID,
		Title:       strings.TrimSpace(b.Subject),
		Region:      "Your region",
		ActionLabel: defaultActionLabel,
		ReceivedAt:  b.Date,
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Title == "" {
		alert.Title = "Crop Advisory"
	}

	var detail []string
	for _, line := range strings.Split(b.TextBody, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Region:"):
			alert.Region = strings.TrimSpace(strings.TrimPrefix(line, "Region:"))
		case strings.HasPrefix(line, "Action:"):
			alert.ActionLabel = strings.TrimSpace(strings.TrimPrefix(line, "Action:"))
		default:
			detail = append(detail, line)
		}
	}
	alert.Detail = strings.Join(detail, " ")
	if len(alert.Detail) > 200 {
		alert.Detail = alert.Detail[:200]
	}

	return alert
}
