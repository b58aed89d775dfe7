package model

// SessionContext is the ambient identity state that gates which remote
// document the reminder engine targets. A zero value means signed out.
type SessionContext struct {
	// SignedIn reports whether a user session is active.
	SignedIn bool `json:"signed_in"`

	// UserKey is the unique identifier for the signed-in user (their
	// email address, which keys the remote document). Empty when
	// signed out.
	UserKey string `json:"user_key"`
}
