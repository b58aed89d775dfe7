package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdeshmukh/farm-assistant/internal/advisory"
	"github.com/pdeshmukh/farm-assistant/internal/model"
)

type stubMarket struct {
	quotes []model.CropQuote
}

func (s *stubMarket) Refresh(context.Context) ([]model.CropQuote, error) {
	return s.quotes, nil
}

type stubAdvisory struct {
	err error
}

func (s *stubAdvisory) Poll(context.Context) ([]model.Alert, error) {
	return model.BuiltinAlerts(), s.err
}

func TestStartDeliversInitialResults(t *testing.T) {
	r := New(
		&stubMarket{quotes: model.SeedQuotes()},
		&stubAdvisory{},
		time.Hour,
		time.Hour,
	)
	defer r.Stop()

	cmd := r.Start()
	require.NotNil(t, cmd)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg := cmd()
		switch m := msg.(type) {
		case MarketMsg:
			require.NoError(t, m.Error)
			assert.Len(t, m.Quotes, 5)
			seen["market"] = true
		case AdvisoryMsg:
			require.NoError(t, m.Error)
			assert.Len(t, m.Alerts, 3)
			seen["advisory"] = true
		default:
			t.Fatalf("unexpected message %T", msg)
		}
		cmd = r.WaitForNextResult()
	}
	assert.True(t, seen["market"])
	assert.True(t, seen["advisory"])
}

func TestStartTwiceIsNoOp(t *testing.T) {
	r := New(&stubMarket{}, nil, time.Hour, time.Hour)
	defer r.Stop()

	require.NotNil(t, r.Start())
	assert.Nil(t, r.Start())
}

func TestAuthErrorIsSurfaced(t *testing.T) {
	r := New(nil, &stubAdvisory{
		err: &advisory.AuthError{Message: "login rejected"},
	}, time.Hour, time.Hour)
	defer r.Stop()

	msg := r.Start()()
	adv, ok := msg.(AdvisoryMsg)
	require.True(t, ok)
	require.NotNil(t, adv.AuthError)
	assert.Contains(t, adv.AuthError.Message, "authentication failed")
}
