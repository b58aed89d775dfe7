// Package session manages the ambient sign-in state that gates the
// reminder engine and the personalized dashboard panels.
package session

import (
	"fmt"
	"strings"
	gosync "sync"

	"github.com/pdeshmukh/farm-assistant/internal/credential"
	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// Keyring keys for the remembered identity.
const (
	keyUser  = "session-user"
	keyToken = "session-token"
)

// Manager tracks the current session context and remembers the last
// identity in the system keyring so a restart can resume signed in.
type Manager struct {
	mu      gosync.Mutex
	current model.SessionContext
	token   string
}

// NewManager creates a signed-out manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the active session context.
func (m *Manager) Current() model.SessionContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token returns the access token of the signed-in user, or empty.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// SignIn activates a session for userKey and remembers it. The token
// is whatever credential the document service expects; it is stored in
// the system keyring, never in the config file.
func (m *Manager) SignIn(userKey, token string) error {
	userKey = strings.TrimSpace(userKey)
	if userKey == "" {
		return fmt.Errorf("user key must not be empty")
	}

	m.mu.Lock()
	m.current = model.SessionContext{SignedIn: true, UserKey: userKey}
	m.token = token
	m.mu.Unlock()

	if err := credential.Set(keyUser, userKey); err != nil {
		return fmt.Errorf("remembering session: %w", err)
	}
	if token != "" {
		if err := credential.Set(keyToken, token); err != nil {
			return fmt.Errorf("remembering session token: %w", err)
		}
	}
	return nil
}

// SignOut clears the session and forgets the remembered identity.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = model.SessionContext{}
	m.token = ""
	m.mu.Unlock()

	// Best effort; a stale remembered identity only affects resume.
	_ = credential.Delete(keyUser)
	_ = credential.Delete(keyToken)
}

// Resume restores the last remembered session from the keyring.
// Returns false when no identity was remembered.
func (m *Manager) Resume() bool {
	userKey, err := credential.Get(keyUser)
	if err != nil || userKey == "" {
		return false
	}
	token, _ := credential.Get(keyToken)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = model.SessionContext{SignedIn: true, UserKey: userKey}
	m.token = token
	return true
}
