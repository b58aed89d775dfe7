package advisory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/advisory"
	"github.com/pdeshmukh/farm-assistant/tests/testutil"
)

type fakeFetcher struct {
	bulletins []advisory.Bulletin
	err       error
}

func (f *fakeFetcher) FetchBulletins(
	_ context.Context,
	_ time.Time,
	_ int,
) ([]advisory.Bulletin, error) {
	return f.bulletins, f.err
}

func TestAlertsFallsBackToBuiltin(t *testing.T) {
	s := advisory.NewSource(nil, testutil.NewTestStore(t), "")

	got := s.Alerts(context.Background())
	require.Len(t, got, 3)
	assert.Equal(t, "Yellow Leaf Spot Alert", got[0].Title)
}

func TestPollMapsBulletinsToAlerts(t *testing.T) {
	received := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	fetcher := &fakeFetcher{
		bulletins: []advisory.Bulletin{
			{
				MessageID: "<bulletin-42@agri.example>",
				Subject:   "Brown Planthopper Advisory",
				From:      "bulletins@agri.example",
				Date:      received,
				TextBody:  "Region: Mandya\nAction: Get remedy steps\nScout paddy fields this week.\nSpray only after threshold.",
			},
		},
	}

	cache := testutil.NewTestStore(t)
	s := advisory.NewSource(fetcher, cache, "bulletins@agri.example")

	got, err := s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "<bulletin-42@agri.example>", got[0].ID)
	assert.Equal(t, "Brown Planthopper Advisory", got[0].Title)
	assert.Equal(t, "Mandya", got[0].Region)
	assert.Equal(t, "Get remedy steps", got[0].ActionLabel)
	assert.Equal(t, "Scout paddy fields this week. Spray only after threshold.", got[0].Detail)

	unread, err := cache.GetUnreadNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Contains(t, unread[0].Message, "Brown Planthopper Advisory")
}

func TestPollFiltersBySender(t *testing.T) {
	fetcher := &fakeFetcher{
		bulletins: []advisory.Bulletin{
			{MessageID: "<spam-1@ads.example>", Subject: "Buy now", From: "ads@ads.example"},
		},
	}

	s := advisory.NewSource(fetcher, testutil.NewTestStore(t), "bulletins@agri.example")

	got, err := s.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3, "nothing accepted keeps the built-in set")
}

func TestPollSkipsAlreadySeenBulletins(t *testing.T) {
	fetcher := &fakeFetcher{
		bulletins: []advisory.Bulletin{
			{MessageID: "<bulletin-1@agri.example>", Subject: "Rain Advisory", From: "bulletins@agri.example"},
		},
	}

	cache := testutil.NewTestStore(t)
	s := advisory.NewSource(fetcher, cache, "")

	_, err := s.Poll(context.Background())
	require.NoError(t, err)
	_, err = s.Poll(context.Background())
	require.NoError(t, err)

	unread, err := cache.GetUnreadNotifications(context.Background())
	require.NoError(t, err)
	assert.Len(t, unread, 1, "a bulletin notifies once")
}

func TestPollFailureServesCachedAlerts(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection reset")}

	s := advisory.NewSource(fetcher, testutil.NewTestStore(t), "")

	got, err := s.Poll(context.Background())
	assert.Error(t, err)
	require.Len(t, got, 3, "built-in alerts keep the panel populated")
}

func TestIsAuthError(t *testing.T) {
	err := error(&advisory.AuthError{Message: "login rejected"})
	assert.True(t, advisory.IsAuthError(err))
	assert.False(t, advisory.IsAuthError(errors.New("other")))
}
