// Package reminder implements the lifecycle engine for time-bound
// reminders: countdown recomputation, expiry eviction, insertion,
// deletion, and best-effort synchronization with the per-user remote
// document.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdeshmukh/farm-assistant/internal/countdown"
	"github.com/pdeshmukh/farm-assistant/internal/docstore"
	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// ErrEmptyTitle is returned by Add when the title trims to nothing.
var ErrEmptyTitle = errors.New("reminder title must not be empty")

// ErrOutOfRange is returned by Add when a duration field is outside
// its selection bounds (day 0-30, hour 0-23, minute 0-59).
var ErrOutOfRange = errors.New("reminder duration out of range")

// writeTimeout bounds a single persistence attempt.
const writeTimeout = 30 * time.Second

// Millisecond factors matching the add form's day/hour/minute fields.
const (
	msPerDay    = 86_400_000
	msPerHour   = 3_600_000
	msPerMinute = 60_000
)

// writeRequest is one queued persistence snapshot. The user key is
// captured with the snapshot so a sign-out cannot redirect a write.
type writeRequest struct {
	userKey string
	list    []model.Reminder
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow overrides the engine's clock (epoch milliseconds). For tests.
func WithNow(now func() int64) Option {
	return func(e *Engine) { e.now = now }
}

// WithErrorFunc installs a callback invoked with persistence errors.
// The callback runs on the writer goroutine and must not block.
func WithErrorFunc(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

// Engine owns the in-memory reminder list for the active session and
// keeps the remote document eventually consistent with it.
//
// All mutation happens under one mutex; persistence is decoupled
// through a depth-1 coalescing write queue serviced by a single writer
// goroutine, so at most one write is in flight per engine and the
// latest snapshot always wins.
type Engine struct {
	mu      gosync.Mutex
	store   docstore.Store
	session model.SessionContext
	list    []model.Reminder

	writeCh chan writeRequest
	stopCh  chan struct{}
	done    chan struct{}
	closed  bool

	now     func() int64
	onError func(error)
}

// New creates an engine in signed-out (demo) state and starts its
// writer goroutine. Call Close to release it.
func New(store docstore.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		list:    model.DemoReminders(),
		writeCh: make(chan writeRequest, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		now: func() int64 {
			return time.Now().UnixMilli()
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	go e.writeLoop()
	return e
}

// Close stops the writer goroutine. Queued writes are abandoned.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.stopCh)
	<-e.done
}

// Session returns the current session context.
func (e *Engine) Session() model.SessionContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Reminders returns a snapshot of the current list in display order.
func (e *Engine) Reminders() []model.Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.list)
}

// SignIn activates a session for userKey and initializes the list from
// the remote document. Demo state is discarded unconditionally; a
// changed user key replaces the list, never merges.
//
// When the store is unreachable the engine still signs in and proceeds
// with an empty in-memory list; the error is returned for display.
func (e *Engine) SignIn(ctx context.Context, userKey string) error {
	now := e.now()

	fetched, err := e.store.FetchReminders(ctx, userKey)
	if errors.Is(err, docstore.ErrNotFound) {
		if initErr := e.store.InitializeEmpty(ctx, userKey); initErr != nil {
			e.report(initErr)
		}
		fetched, err = nil, nil
	}

	e.mu.Lock()
	e.session = model.SessionContext{SignedIn: true, UserKey: userKey}

	if err != nil {
		// Degrade to a purely in-memory session.
		e.list = nil
		e.mu.Unlock()
		return fmt.Errorf("initializing reminders for %s: %w", userKey, err)
	}

	live, evicted := recompute(fetched, now)
	e.list = live
	var pending writeRequest
	persist := evicted > 0
	if persist {
		// Persisting right away closes the window where the remote
		// copy still contains entries that expired while offline.
		pending = writeRequest{userKey: userKey, list: snapshot(live)}
	}
	e.mu.Unlock()

	if persist {
		e.enqueue(pending)
	}
	return nil
}

// SignOut deactivates the session and restores the demo list. Any
// in-flight write is allowed to finish; its result is discarded.
func (e *Engine) SignOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = model.SessionContext{}
	e.list = model.DemoReminders()
}

// Tick recomputes every countdown against now, evicts expired entries,
// and re-sorts. It persists only when the tick actually evicted
// something; unchanged ticks never touch the store. The returned
// snapshot is what the UI should display.
//
// Tick runs even if a previous persistence attempt failed: the next
// write always carries the cumulative state.
func (e *Engine) Tick(nowMillis int64) []model.Reminder {
	e.mu.Lock()

	if !e.session.SignedIn {
		// Demo entries carry no expiry; nothing to recompute.
		snap := snapshot(e.list)
		e.mu.Unlock()
		return snap
	}

	live, evicted := recompute(e.list, nowMillis)
	e.list = live
	snap := snapshot(live)

	var pending writeRequest
	persist := evicted > 0
	if persist {
		pending = writeRequest{userKey: e.session.UserKey, list: snap}
	}
	e.mu.Unlock()

	if persist {
		e.enqueue(pending)
	}
	return snap
}

// Add creates a reminder expiring day/hour/minute from now and persists
// the updated list. The new entry is returned with its generated ID.
func (e *Engine) Add(title string, day, hour, minute int) (model.Reminder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Reminder{}, ErrEmptyTitle
	}
	if day < 0 || day > 30 {
		return model.Reminder{}, fmt.Errorf("%w: day %d not in [0,30]", ErrOutOfRange, day)
	}
	if hour < 0 || hour > 23 {
		return model.Reminder{}, fmt.Errorf("%w: hour %d not in [0,23]", ErrOutOfRange, hour)
	}
	if minute < 0 || minute > 59 {
		return model.Reminder{}, fmt.Errorf("%w: minute %d not in [0,59]", ErrOutOfRange, minute)
	}

	now := e.now()
	expiresAt := now + int64(day)*msPerDay + int64(hour)*msPerHour + int64(minute)*msPerMinute

	r := model.Reminder{
		ID:            uuid.New().String(),
		Title:         title,
		Description:   model.DefaultReminderDescription,
		Icon:          model.IconCalendar,
		ExpiresAt:     &expiresAt,
		RemainingTime: countdown.Encode(expiresAt, now),
	}

	e.mu.Lock()
	e.list = append(e.list, r)
	sortByExpiry(e.list)
	snap := snapshot(e.list)

	var pending writeRequest
	persist := e.session.SignedIn
	if persist {
		pending = writeRequest{userKey: e.session.UserKey, list: snap}
	}
	e.mu.Unlock()

	if persist {
		e.enqueue(pending)
	}
	return r, nil
}

// Delete removes the reminder with the given ID and persists the
// updated list. Unknown IDs are a no-op.
func (e *Engine) Delete(id string) {
	e.mu.Lock()

	found := false
	kept := e.list[:0]
	for _, r := range e.list {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		e.mu.Unlock()
		return
	}

	e.list = kept
	sortByExpiry(e.list)
	snap := snapshot(e.list)

	var pending writeRequest
	persist := e.session.SignedIn
	if persist {
		pending = writeRequest{userKey: e.session.UserKey, list: snap}
	}
	e.mu.Unlock()

	if persist {
		e.enqueue(pending)
	}
}

// enqueue places a snapshot on the depth-1 write queue, replacing any
// still-pending older snapshot. Never blocks.
func (e *Engine) enqueue(req writeRequest) {
	for {
		select {
		case e.writeCh <- req:
			return
		default:
		}
		// Queue full: drop the stale pending snapshot and retry.
		select {
		case <-e.writeCh:
		default:
		}
	}
}

// writeLoop is the single writer goroutine. One write in flight at a
// time; failures are reported and the in-memory state stays
// authoritative.
func (e *Engine) writeLoop() {
	defer close(e.done)
	for {
		select {
		case <-e.stopCh:
			return
		case req := <-e.writeCh:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := e.store.ReplaceReminders(ctx, req.userKey, req.list)
			cancel()
			if err != nil {
				e.report(fmt.Errorf("persisting reminders: %w", err))
			}
		}
	}
}

func (e *Engine) report(err error) {
	if e.onError != nil {
		e.onError(err)
	}
}

// recompute refreshes every countdown against now, drops expired
// entries, and sorts the survivors. Entries without an expiry pass
// through untouched. Returns the live list and the eviction count.
func recompute(list []model.Reminder, now int64) ([]model.Reminder, int) {
	live := make([]model.Reminder, 0, len(list))
	evicted := 0
	for _, r := range list {
		if r.ExpiresAt == nil {
			live = append(live, r)
			continue
		}
		if *r.ExpiresAt <= now {
			evicted++
			continue
		}
		r.RemainingTime = countdown.Encode(*r.ExpiresAt, now)
		live = append(live, r)
	}
	sortByExpiry(live)
	return live, evicted
}

// sortByExpiry orders ascending by expiry instant with never-expiring
// entries last.
func sortByExpiry(list []model.Reminder) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].ExpiresAt, list[j].ExpiresAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

func snapshot(list []model.Reminder) []model.Reminder {
	out := make([]model.Reminder, len(list))
	copy(out, list)
	return out
}
