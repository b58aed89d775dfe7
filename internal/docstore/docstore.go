// Package docstore abstracts the hosted per-user document that backs
// reminder persistence. Each user owns one document keyed by their
// email address; the reminder list lives under the document's
// personalization field and is always replaced wholesale.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// ErrNotFound signals that no document exists yet for a user key.
// It is not a failure: callers create the document and proceed.
var ErrNotFound = errors.New("document not found")

// RemoteError wraps any store operation failure (network, auth, quota).
// Callers degrade to in-memory operation and retry on a later write.
type RemoteError struct {
	Op    string
	Cause error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("document store %s: %v", e.Op, e.Cause)
}

func (e *RemoteError) Unwrap() error { return e.Cause }

// IsUnavailable reports whether err (or any error in its chain) is a
// RemoteError.
func IsUnavailable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Store is the persistence contract consumed by the reminder engine.
// Implementations must make ReplaceReminders an idempotent full
// overwrite that is safe to call on every mutation.
type Store interface {
	// FetchReminders returns the persisted list for userKey, or
	// ErrNotFound when the user has no document yet.
	FetchReminders(ctx context.Context, userKey string) ([]model.Reminder, error)

	// InitializeEmpty creates the user document with an empty reminder
	// list. Called exactly once after FetchReminders reports ErrNotFound.
	InitializeEmpty(ctx context.Context, userKey string) error

	// ReplaceReminders overwrites the persisted reminder list in full.
	ReplaceReminders(ctx context.Context, userKey string, list []model.Reminder) error
}
