// Package sync runs the background refresh loops that keep the market
// ticker and the advisory panel current while the dashboard is open.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdeshmukh/farm-assistant/internal/advisory"
	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// refreshKind identifies one of the background loops.
type refreshKind int

const (
	refreshMarket refreshKind = iota
	refreshAdvisory
)

// MarketMsg is a tea.Msg sent when a market refresh completes.
type MarketMsg struct {
	Quotes []model.CropQuote
	Error  error
}

// AdvisoryMsg is a tea.Msg sent when an advisory poll completes.
type AdvisoryMsg struct {
	Alerts    []model.Alert
	Error     error
	AuthError *AuthErrorMsg
}

// AuthErrorMsg is a tea.Msg sent when the bulletin mailbox rejects
// the configured credentials.
type AuthErrorMsg struct {
	Message string
}

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// MarketRefresher is the slice of the market service the refresher needs.
type MarketRefresher interface {
	Refresh(ctx context.Context) ([]model.CropQuote, error)
}

// AdvisoryPoller is the slice of the advisory source the refresher needs.
type AdvisoryPoller interface {
	Poll(ctx context.Context) ([]model.Alert, error)
}

// Refresher orchestrates the background market and advisory loops and
// delivers their results to the Bubble Tea runtime as messages.
type Refresher struct {
	market           MarketRefresher
	advisory         AdvisoryPoller
	marketInterval   time.Duration
	advisoryInterval time.Duration

	resultCh  chan tea.Msg
	triggerCh chan refreshKind
	stopCh    chan struct{}

	mu      gosync.Mutex
	running bool
}

// New creates a refresher. Either service may be nil; its loop is then
// skipped. Non-positive intervals fall back to sensible defaults.
func New(
	m MarketRefresher,
	a AdvisoryPoller,
	marketInterval, advisoryInterval time.Duration,
) *Refresher {
	if marketInterval <= 0 {
		marketInterval = 5 * time.Minute
	}
	if advisoryInterval <= 0 {
		advisoryInterval = 2 * time.Minute
	}

	return &Refresher{
		market:           m,
		advisory:         a,
		marketInterval:   marketInterval,
		advisoryInterval: advisoryInterval,
		resultCh:         make(chan tea.Msg, 16),
		triggerCh:        make(chan refreshKind, 16),
		stopCh:           make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the background loops and
// subscribes to their results. The returned command waits on the result
// channel and delivers MarketMsg and AdvisoryMsg messages.
func (r *Refresher) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	if r.market != nil {
		go r.loop(refreshMarket, r.marketInterval)
	}
	if r.advisory != nil {
		go r.loop(refreshAdvisory, r.advisoryInterval)
	}

	return r.waitForResult()
}

// Stop halts the background loops.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// RefreshAll triggers an immediate refresh of both loops.
func (r *Refresher) RefreshAll() tea.Cmd {
	for _, kind := range []refreshKind{refreshMarket, refreshAdvisory} {
		select {
		case r.triggerCh <- kind:
		default:
			// Channel full; skip to avoid blocking
		}
	}
	return nil
}

// loop runs the refresh loop for one concern.
func (r *Refresher) loop(kind refreshKind, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Do an initial refresh immediately
	r.refresh(kind)

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refresh(kind)
		case triggered := <-r.triggerCh:
			if triggered == kind {
				r.refresh(kind)
			}
		}
	}
}

// refresh performs a single refresh and sends the result message.
func (r *Refresher) refresh(kind refreshKind) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	switch kind {
	case refreshMarket:
		quotes, err := r.market.Refresh(ctx)
		r.sendResult(MarketMsg{Quotes: quotes, Error: err})

	case refreshAdvisory:
		alerts, err := r.advisory.Poll(ctx)
		msg := AdvisoryMsg{Alerts: alerts, Error: err}
		if advisory.IsAuthError(err) {
			msg.AuthError = &AuthErrorMsg{
				Message: "advisory mailbox: authentication failed. Check your configuration.",
			}
		}
		r.sendResult(msg)
	}
}

// sendResult sends a message on the result channel without blocking.
func (r *Refresher) sendResult(msg tea.Msg) {
	select {
	case r.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the loops
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. This should be called after processing a MarketMsg or
// AdvisoryMsg to continue listening for future results.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}
