package reminder

import (
	"context"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/countdown"
	"github.com/pdeshmukh/farm-assistant/internal/docstore"
	"github.com/pdeshmukh/farm-assistant/internal/model"
)

const userKey = "farmer@example.com"

// fakeStore is an in-memory docstore.Store that can be made to fail.
type fakeStore struct {
	mu           gosync.Mutex
	docs         map[string][]model.Reminder
	failReplace  bool
	fetchCalls   int
	initCalls    int
	replaceCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string][]model.Reminder)}
}

func (f *fakeStore) FetchReminders(_ context.Context, key string) ([]model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	doc, ok := f.docs[key]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	out := make([]model.Reminder, len(doc))
	copy(out, doc)
	return out, nil
}

func (f *fakeStore) InitializeEmpty(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	f.docs[key] = []model.Reminder{}
	return nil
}

func (f *fakeStore) ReplaceReminders(_ context.Context, key string, list []model.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	if f.failReplace {
		return &docstore.RemoteError{Op: "replace", Cause: fmt.Errorf("network down")}
	}
	out := make([]model.Reminder, len(list))
	copy(out, list)
	f.docs[key] = out
	return nil
}

func (f *fakeStore) setFailReplace(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReplace = fail
}

func (f *fakeStore) doc(key string) []model.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reminder, len(f.docs[key]))
	copy(out, f.docs[key])
	return out
}

func (f *fakeStore) calls() (fetch, init, replace int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.initCalls, f.replaceCalls
}

// clock is a controllable epoch-millisecond time source.
type clock struct {
	mu  gosync.Mutex
	now int64
}

func (c *clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}

func newEngine(t *testing.T, store docstore.Store, c *clock) *Engine {
	t.Helper()
	e := New(store, WithNow(c.Now))
	t.Cleanup(e.Close)
	return e
}

func ids(list []model.Reminder) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func at(ms int64) *int64 { return &ms }

func TestSignInCreatesMissingDocument(t *testing.T) {
	store := newFakeStore()
	c := &clock{now: 1_000_000}
	e := newEngine(t, store, c)

	require.NoError(t, e.SignIn(context.Background(), userKey))

	_, inits, _ := store.calls()
	assert.Equal(t, 1, inits)
	assert.Empty(t, e.Reminders())
	assert.Equal(t, model.SessionContext{SignedIn: true, UserKey: userKey}, e.Session())
}

func TestSignInEvictsAndSorts(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "pinned", Title: "Pinned", Icon: model.IconShield},
		{ID: "late", Title: "Late", Icon: model.IconCalendar, ExpiresAt: at(9_000_000)},
		{ID: "gone", Title: "Gone", Icon: model.IconLeaf, ExpiresAt: at(500_000)},
		{ID: "soon", Title: "Soon", Icon: model.IconCalendar, ExpiresAt: at(2_000_000)},
	}
	c := &clock{now: 1_000_000}
	e := newEngine(t, store, c)

	require.NoError(t, e.SignIn(context.Background(), userKey))

	got := e.Reminders()
	assert.Equal(t, []string{"soon", "late", "pinned"}, ids(got))
	assert.Equal(t, "0d:0h:16m:40s", got[0].RemainingTime)
	assert.Empty(t, got[2].RemainingTime, "pinned entries have no countdown")

	// The eviction is pushed to the store right away.
	require.Eventually(t, func() bool {
		doc := store.doc(userKey)
		return len(doc) == 3
	}, time.Second, 5*time.Millisecond)
}

func TestTickCountdownMonotonic(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "r1", Title: "Water crops", Icon: model.IconCalendar, ExpiresAt: at(10_000)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	prev := 11
	for i := 0; i < 9; i++ {
		c.Advance(1_000)
		got := e.Tick(c.Now())
		require.Len(t, got, 1)
		d, h, m, s, err := countdown.Parse(got[0].RemainingTime)
		require.NoError(t, err, "tick %d", i)
		total := ((d*24+h)*60+m)*60 + s
		assert.Less(t, total, prev, "tick %d", i)
		prev = total
	}

	// The final tick crosses the expiry and evicts.
	c.Advance(1_000)
	assert.Empty(t, e.Tick(c.Now()))
}

func TestTickEvictsAtExpiry(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "r1", Title: "Spray", Icon: model.IconLeaf, ExpiresAt: at(5_000)},
		{ID: "pinned", Title: "Pinned", Icon: model.IconShield},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	c.Advance(5_000)
	got := e.Tick(c.Now())
	assert.Equal(t, []string{"pinned"}, ids(got), "expiresAt == now evicts")

	require.Eventually(t, func() bool {
		return len(store.doc(userKey)) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTickWithoutChangeDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "r1", Title: "Water crops", Icon: model.IconCalendar, ExpiresAt: at(1_000_000)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	for i := 0; i < 5; i++ {
		c.Advance(1_000)
		e.Tick(c.Now())
	}
	time.Sleep(50 * time.Millisecond)

	_, _, replaces := store.calls()
	assert.Zero(t, replaces, "countdown-only ticks must not write")
}

func TestAddSortsAndPersists(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "existing", Title: "Existing", Icon: model.IconCalendar, ExpiresAt: at(2 * msPerDay)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	r, err := e.Add("Water crops", 1, 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, model.IconCalendar, r.Icon)
	assert.Equal(t, model.DefaultReminderDescription, r.Description)
	require.NotNil(t, r.ExpiresAt)
	assert.Equal(t, int64(msPerDay), *r.ExpiresAt)
	assert.Equal(t, "1d:0h:0m:0s", r.RemainingTime)

	got := e.Reminders()
	assert.Equal(t, []string{r.ID, "existing"}, ids(got), "sooner expiry sorts first")

	require.Eventually(t, func() bool {
		doc := store.doc(userKey)
		return len(doc) == 2 && doc[0].ID == r.ID
	}, time.Second, 5*time.Millisecond)
}

func TestAddValidation(t *testing.T) {
	store := newFakeStore()
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	_, err := e.Add("   ", 1, 0, 0)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	for _, tt := range []struct{ d, h, m int }{
		{-1, 0, 0}, {31, 0, 0},
		{0, -1, 0}, {0, 24, 0},
		{0, 0, -1}, {0, 0, 60},
	} {
		_, err := e.Add("Water crops", tt.d, tt.h, tt.m)
		assert.ErrorIs(t, err, ErrOutOfRange, "d=%d h=%d m=%d", tt.d, tt.h, tt.m)
	}

	assert.Empty(t, e.Reminders(), "rejected adds leave the list untouched")
}

func TestAddDeleteRoundTrip(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "existing", Title: "Existing", Icon: model.IconCalendar, ExpiresAt: at(5 * msPerDay)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	before := e.Reminders()

	r, err := e.Add("Water crops", 1, 0, 0)
	require.NoError(t, err)
	e.Delete(r.ID)

	assert.Equal(t, before, e.Reminders())

	// Deleting an unknown identifier is a no-op.
	_, _, replacesBefore := store.calls()
	e.Delete("no-such-id")
	assert.Equal(t, before, e.Reminders())
	time.Sleep(20 * time.Millisecond)
	_, _, replacesAfter := store.calls()
	assert.Equal(t, replacesBefore, replacesAfter)
}

func TestPersistenceFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "r1", Title: "First", Icon: model.IconCalendar, ExpiresAt: at(1_000)},
		{ID: "r2", Title: "Second", Icon: model.IconCalendar, ExpiresAt: at(2_000)},
	}
	c := &clock{now: 0}

	var errMu gosync.Mutex
	var reported []error
	e := New(store, WithNow(c.Now), WithErrorFunc(func(err error) {
		errMu.Lock()
		reported = append(reported, err)
		errMu.Unlock()
	}))
	t.Cleanup(e.Close)

	require.NoError(t, e.SignIn(context.Background(), userKey))

	// First eviction happens while the store is down.
	store.setFailReplace(true)
	c.Advance(1_000)
	got := e.Tick(c.Now())
	assert.Equal(t, []string{"r2"}, ids(got), "eviction is not rolled back")

	require.Eventually(t, func() bool {
		errMu.Lock()
		defer errMu.Unlock()
		return len(reported) > 0
	}, time.Second, 5*time.Millisecond)

	// Store heals; the next eviction's write carries cumulative state.
	store.setFailReplace(false)
	c.Advance(1_000)
	assert.Empty(t, e.Tick(c.Now()))

	require.Eventually(t, func() bool {
		return len(store.doc(userKey)) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDemoIsolation(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "remote", Title: "Remote", Icon: model.IconCalendar, ExpiresAt: at(msPerDay)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)

	demo := e.Reminders()
	require.Len(t, demo, 3)

	r, err := e.Add("Local only", 0, 1, 0)
	require.NoError(t, err)
	assert.Len(t, e.Reminders(), 4)
	e.Delete(demo[0].ID)
	assert.Len(t, e.Reminders(), 3)

	time.Sleep(50 * time.Millisecond)
	fetches, inits, replaces := store.calls()
	assert.Zero(t, fetches)
	assert.Zero(t, inits)
	assert.Zero(t, replaces, "signed-out mutations never reach the store")

	// Sign-in discards all demo-mode state, including the local add.
	require.NoError(t, e.SignIn(context.Background(), userKey))
	got := e.Reminders()
	assert.Equal(t, []string{"remote"}, ids(got))
	assert.NotContains(t, ids(got), r.ID)
}

func TestSignOutRestoresDemo(t *testing.T) {
	store := newFakeStore()
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	e.SignOut()
	assert.False(t, e.Session().SignedIn)
	assert.Len(t, e.Reminders(), 3)
}

func TestSwitchingUserReplacesList(t *testing.T) {
	store := newFakeStore()
	store.docs["a@example.com"] = []model.Reminder{
		{ID: "a1", Title: "A", Icon: model.IconCalendar, ExpiresAt: at(msPerDay)},
	}
	store.docs["b@example.com"] = []model.Reminder{
		{ID: "b1", Title: "B", Icon: model.IconLeaf, ExpiresAt: at(msPerDay)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)

	require.NoError(t, e.SignIn(context.Background(), "a@example.com"))
	require.NoError(t, e.SignIn(context.Background(), "b@example.com"))

	assert.Equal(t, []string{"b1"}, ids(e.Reminders()), "a changed user key re-fetches, never merges")
}

func TestWriteQueueCoalesces(t *testing.T) {
	store := newFakeStore()
	c := &clock{now: 0}

	gate := make(chan struct{})
	blocking := &gatedStore{fakeStore: store, gate: gate}

	e := New(blocking, WithNow(c.Now))
	t.Cleanup(e.Close)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	// First add occupies the writer; the next three coalesce into the
	// single pending slot.
	var last model.Reminder
	for i := 0; i < 4; i++ {
		r, err := e.Add(fmt.Sprintf("Task %d", i), 1, 0, i)
		require.NoError(t, err)
		last = r
	}

	close(gate)

	require.Eventually(t, func() bool {
		doc := store.doc(userKey)
		return len(doc) == 4
	}, time.Second, 5*time.Millisecond)

	_, _, replaces := store.calls()
	assert.LessOrEqual(t, replaces, 3, "intermediate snapshots are coalesced away")
	assert.Contains(t, ids(store.doc(userKey)), last.ID)
}

// gatedStore blocks each ReplaceReminders until released, simulating a
// slow network so queued writes pile up.
type gatedStore struct {
	*fakeStore
	gate chan struct{}
}

func (g *gatedStore) ReplaceReminders(ctx context.Context, key string, list []model.Reminder) error {
	<-g.gate
	return g.fakeStore.ReplaceReminders(ctx, key, list)
}

func TestRemainingTimeAgreesWithCodec(t *testing.T) {
	store := newFakeStore()
	store.docs[userKey] = []model.Reminder{
		{ID: "r1", Title: "Harvest", Icon: model.IconCalendar, ExpiresAt: at(3*msPerDay + 90_000)},
	}
	c := &clock{now: 0}
	e := newEngine(t, store, c)
	require.NoError(t, e.SignIn(context.Background(), userKey))

	got := e.Tick(c.Now())
	require.Len(t, got, 1)
	assert.Equal(t, countdown.Encode(3*msPerDay+90_000, 0), got[0].RemainingTime)
	assert.False(t, countdown.IsUrgent(got[0].RemainingTime))

	c.Advance(3*msPerDay + 90_000 - 4*60_000)
	got = e.Tick(c.Now())
	require.Len(t, got, 1)
	assert.True(t, countdown.IsUrgent(got[0].RemainingTime))
}
