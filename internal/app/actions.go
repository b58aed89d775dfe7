package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// tickMsg drives the 1-second countdown recompute.
type tickMsg time.Time

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// remindersRefreshedMsg carries a fresh engine snapshot to the list.
type remindersRefreshedMsg struct {
	reminders []model.Reminder
}

// signInResultMsg reports the outcome of a sign-in attempt.
type signInResultMsg struct {
	userKey string
	err     error
}

// profileLoadedMsg carries the stored profile draft into the form.
type profileLoadedMsg struct {
	profile *model.FarmerProfile
}

// profileSavedMsg reports the outcome of saving the profile.
type profileSavedMsg struct {
	err error
}

// engineErrorMsg surfaces a background persistence failure.
type engineErrorMsg struct {
	err error
}

// doTick schedules the next countdown tick.
func (m Model) doTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshReminders returns a command that snapshots the engine's list.
func (m Model) refreshReminders() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		return remindersRefreshedMsg{reminders: eng.Reminders()}
	}
}

// performSignIn activates the session and loads the user's reminders.
// A store failure does not block the sign-in; the engine degrades to an
// empty in-memory list and reports the error for the status bar.
func (m Model) performSignIn(userKey, token string) tea.Cmd {
	sess := m.session
	eng := m.engine
	client := m.docClient
	return func() tea.Msg {
		if err := sess.SignIn(userKey, token); err != nil {
			return signInResultMsg{userKey: userKey, err: err}
		}
		if client != nil {
			client.SetToken(token)
		}
		err := eng.SignIn(context.Background(), userKey)
		return signInResultMsg{userKey: userKey, err: err}
	}
}

// resumeSession re-activates the engine for a remembered identity.
func (m Model) resumeSession() tea.Cmd {
	eng := m.engine
	current := m.session.Current()
	client := m.docClient
	token := m.session.Token()
	return func() tea.Msg {
		if client != nil {
			client.SetToken(token)
		}
		err := eng.SignIn(context.Background(), current.UserKey)
		return signInResultMsg{userKey: current.UserKey, err: err}
	}
}

// loadProfile fetches the stored profile draft for the profile form.
func (m Model) loadProfile() tea.Cmd {
	cache := m.cache
	userKey := m.profileKey()
	return func() tea.Msg {
		if cache == nil {
			return profileLoadedMsg{}
		}
		profile, err := cache.GetProfile(context.Background(), userKey)
		if err != nil {
			return profileLoadedMsg{}
		}
		return profileLoadedMsg{profile: profile}
	}
}

// saveProfile persists the submitted profile draft.
func (m Model) saveProfile(profile model.FarmerProfile) tea.Cmd {
	cache := m.cache
	userKey := m.profileKey()
	return func() tea.Msg {
		if cache == nil {
			return profileSavedMsg{}
		}
		err := cache.SaveProfile(context.Background(), userKey, profile)
		return profileSavedMsg{err: err}
	}
}

// profileKey returns the key the profile draft is stored under. Drafts
// written while signed out stay on this device under a fixed key.
func (m Model) profileKey() string {
	if m.signedIn() {
		return m.session.Current().UserKey
	}
	return "local"
}

// fetchUnreadCount returns a tea.Cmd that queries the cache for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		if cache == nil {
			return unreadCountMsg{}
		}
		notifications, err := cache.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}

// waitForEngineError subscribes to background persistence failures.
func (m Model) waitForEngineError() tea.Cmd {
	ch := m.engineErrors
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return engineErrorMsg{err: err}
	}
}
