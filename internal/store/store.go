package store

import (
	"context"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// Store defines the local persistence interface for cached market
// quotes, advisory alerts, notifications, and the profile draft.
//
// This cache keeps the dashboard useful between refreshes and offline;
// it is not the reminder store; reminders live in the remote per-user
// document (see internal/docstore).
type Store interface {
	// === Market quotes ===

	UpsertQuotes(ctx context.Context, quotes []model.CropQuote) error
	GetQuotes(ctx context.Context) ([]model.CropQuote, error)

	// === Advisory alerts ===

	UpsertAlerts(ctx context.Context, alerts []model.Alert) error
	GetAlerts(ctx context.Context, limit int) ([]model.Alert, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// === Profile draft ===

	SaveProfile(ctx context.Context, userKey string, p model.FarmerProfile) error
	GetProfile(ctx context.Context, userKey string) (*model.FarmerProfile, error)
}
