package model

// Icon kind constants for reminder display.
const (
	IconCalendar = "calendar"
	IconLeaf     = "leaf"
	IconShield   = "shield"
)

// DefaultReminderDescription is attached to reminders the user creates
// through the add form.
const DefaultReminderDescription = "Custom reminder added by you."

// Reminder is a time-bound entry shown on the dashboard's reminder panel.
type Reminder struct {
	// ID is a stable unique identifier assigned at creation time.
	// List position is never used as an identity.
	ID string `json:"id"`

	// Title is a short, required, non-empty label.
	Title string `json:"title"`

	// Description is the longer explanatory text.
	Description string `json:"description"`

	// Icon is one of the Icon* constants and only affects display.
	Icon string `json:"icon"`

	// ExpiresAt is the absolute expiry instant in epoch milliseconds.
	// Nil for pinned entries that never expire (demo reminders).
	ExpiresAt *int64 `json:"expiresAt,omitempty"`

	// RemainingTime is the countdown string derived from ExpiresAt on
	// every tick. It is never persisted; the remote document stores
	// only ExpiresAt and clients recompute the countdown locally.
	RemainingTime string `json:"-"`
}

// Expiring reports whether the reminder carries an expiry instant.
func (r Reminder) Expiring() bool {
	return r.ExpiresAt != nil
}

// DemoReminders returns the fixed sample set shown while signed out.
// These never expire, are never persisted, and are discarded on sign-in.
func DemoReminders() []Reminder {
	return []Reminder{
		{
			ID:            "demo-subsidy",
			Title:         "Subsidy Application",
			Description:   "Apply for the subsidy before the deadline.",
			Icon:          IconCalendar,
			RemainingTime: "2d:5h:30m:0s",
		},
		{
			ID:            "demo-diagnosis",
			Title:         "Plant Diagnosis",
			Description:   "Check the results of your plant photo diagnosis.",
			Icon:          IconLeaf,
			RemainingTime: "1d:0h:0m:0s",
		},
		{
			ID:            "demo-protection",
			Title:         "Crop Protection",
			Description:   "Spray neem oil on your crops to protect them from pests.",
			Icon:          IconShield,
			RemainingTime: "0d:12h:0m:0s",
		},
	}
}
