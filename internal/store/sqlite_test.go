package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/tests/testutil"
)

func TestQuoteCacheRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertQuotes(ctx, model.SeedQuotes()))

	got, err := s.GetQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "Cotton", got[0].Name, "ordered by name")
	assert.Equal(t, "₹30/kg", got[0].Price)
	assert.False(t, got[0].FetchedAt.IsZero())

	// A refresh replaces prices in place.
	require.NoError(t, s.UpsertQuotes(ctx, []model.CropQuote{
		{Name: "Cotton", Price: "₹32/kg", Image: "cotton.jpeg"},
	}))
	got, err = s.GetQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "₹32/kg", got[0].Price)
}

func TestAlertsNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertAlerts(ctx, []model.Alert{
		{ID: "old", Title: "Old", ReceivedAt: base},
		{ID: "new", Title: "New", ReceivedAt: base.Add(time.Hour)},
		{ID: "mid", Title: "Mid", ReceivedAt: base.Add(30 * time.Minute)},
	}))

	got, err := s.GetAlerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestNotificationsUnread(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		Kind:    "advisory",
		Message: "New bulletin: Aphid Insect Warning",
	}))
	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		Kind:    "reminder",
		Message: "Could not sync reminders",
	}))

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.NotEmpty(t, unread[0].ID, "IDs are generated when absent")

	require.NoError(t, s.MarkNotificationRead(ctx, unread[0].ID))
	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestProfileDraft(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	got, err := s.GetProfile(ctx, "farmer@example.com")
	require.NoError(t, err)
	assert.Nil(t, got, "missing draft is not an error")

	p := model.FarmerProfile{
		Name:   "Purvi",
		Age:    34,
		Gender: "female",
		Contact: model.Contact{
			Phone: "9876543210",
			Email: "farmer@example.com",
		},
		Location: model.Location{
			Village:  "Hebbal",
			District: "Mysore",
			State:    "Karnataka",
			Pincode:  "570016",
		},
		LanguagePreferences: model.LanguagePreferences{
			Spoken:        "Kannada",
			LiteracyLevel: model.LiteracyMedium,
		},
		DeviceInfo:     model.DeviceInfo{DeviceType: model.DeviceSmartphone},
		Crops:          []string{"Tomato", "Maize"},
		FarmingHistory: model.FarmingHistory{YearsOfExperience: 12},
		LandInfo:       model.LandInfo{LandSizeAcres: 3.5},
	}
	require.NoError(t, s.SaveProfile(ctx, "farmer@example.com", p))

	got, err = s.GetProfile(ctx, "farmer@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Purvi", got.Name)
	assert.Equal(t, []string{"Tomato", "Maize"}, got.Crops)
	assert.False(t, got.UpdatedAt.IsZero())
}
