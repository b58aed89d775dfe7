package model

import "time"

// Notification is a transient message surfaced in the status area,
// e.g. a new advisory bulletin or a failed persistence attempt.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// Kind labels the originating subsystem ("advisory", "market",
	// "reminder").
	Kind string `json:"kind" db:"kind"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
