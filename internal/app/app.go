// Package app wires the dashboard together: the root Bubble Tea model,
// view routing, and the glue between the reminder engine, the session,
// and the background refreshers.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	aiservice "github.com/pdeshmukh/farm-assistant/internal/ai"
	"github.com/pdeshmukh/farm-assistant/internal/docstore"
	"github.com/pdeshmukh/farm-assistant/internal/keys"
	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/reminder"
	"github.com/pdeshmukh/farm-assistant/internal/session"
	"github.com/pdeshmukh/farm-assistant/internal/store"
	appsync "github.com/pdeshmukh/farm-assistant/internal/sync"
	"github.com/pdeshmukh/farm-assistant/internal/theme"
	"github.com/pdeshmukh/farm-assistant/internal/ui"
	"github.com/pdeshmukh/farm-assistant/internal/ui/alerts"
	"github.com/pdeshmukh/farm-assistant/internal/ui/chat"
	helpview "github.com/pdeshmukh/farm-assistant/internal/ui/help"
	"github.com/pdeshmukh/farm-assistant/internal/ui/profileform"
	"github.com/pdeshmukh/farm-assistant/internal/ui/reminderform"
	"github.com/pdeshmukh/farm-assistant/internal/ui/reminderlist"
	"github.com/pdeshmukh/farm-assistant/internal/ui/signin"
	"github.com/pdeshmukh/farm-assistant/internal/ui/ticker"
)

// OpenSignInMsg asks the root model to open the sign-in form. Any
// component that needs the user signed in emits this message instead of
// reaching for shared state.
type OpenSignInMsg struct{}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewAddReminder
	ViewSignIn
	ViewProfile
	ViewChat
	ViewHelp
)

// Deps bundles the services the root model is built from.
type Deps struct {
	Engine       *reminder.Engine
	Session      *session.Manager
	DocClient    *docstore.Client
	Cache        store.Store
	Refresher    *appsync.Refresher
	Assistant    *aiservice.Assistant
	EngineErrors <-chan error
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the 1-second countdown tick.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	engine       *reminder.Engine
	session      *session.Manager
	docClient    *docstore.Client
	cache        store.Store
	refresher    *appsync.Refresher
	engineErrors <-chan error

	reminderList reminderlist.Model
	tickerView   ticker.Model
	alertsView   alerts.Model
	chatView     chat.Model
	reminderForm reminderform.Model
	signinForm   signin.Model
	profileForm  profileform.Model
	helpView     helpview.Model

	quotes        []model.CropQuote
	ready         bool
	unreadCount   int
	statusMessage string
}

// New creates the root application model.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView:  ViewDashboard,
		keys:         k,
		engine:       deps.Engine,
		session:      deps.Session,
		docClient:    deps.DocClient,
		cache:        deps.Cache,
		refresher:    deps.Refresher,
		engineErrors: deps.EngineErrors,
		quotes:       model.SeedQuotes(),
		reminderList: reminderlist.New(k, 48, 22),
		tickerView:   ticker.New(nil, 80),
		alertsView:   alerts.New(model.BuiltinAlerts(), 32, 22),
		chatView:     chat.New(deps.Assistant, k, 80, 24),
		reminderForm: reminderform.New(80, 24),
		signinForm:   signin.New(80, 24),
		profileForm:  profileform.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
	}
	m.tickerView.SetQuotes(m.tickerQuotes())
	return m
}

// tickerQuotes returns the quote set for the ticker. Signed-out users
// see crop names only; prices appear after sign-in.
func (m Model) tickerQuotes() []model.CropQuote {
	if m.signedIn() {
		return m.quotes
	}
	masked := make([]model.CropQuote, len(m.quotes))
	for i, q := range m.quotes {
		q.Price = ""
		q.Note = "sign in to see price"
		masked[i] = q
	}
	return masked
}

// Init starts the countdown tick, the background refreshers, and, when
// a remembered session exists, the sign-in resume.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.doTick(),
		m.fetchUnreadCount(),
		m.refreshReminders(),
	}
	if m.refresher != nil {
		cmds = append(cmds, m.refresher.Start())
	}
	if m.engineErrors != nil {
		cmds = append(cmds, m.waitForEngineError())
	}
	if m.session != nil && m.session.Current().SignedIn {
		cmds = append(cmds, m.resumeSession())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.applySizes()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tickMsg:
		reminders := m.engine.Tick(time.Time(msg).UnixMilli())
		var cmd tea.Cmd
		m.reminderList, cmd = m.reminderList.Update(
			reminderlist.RemindersUpdatedMsg{Reminders: reminders},
		)
		m.tickerView.Advance()
		return m, tea.Batch(cmd, m.doTick())

	case appsync.MarketMsg:
		if len(msg.Quotes) > 0 {
			m.quotes = msg.Quotes
		}
		m.tickerView.SetQuotes(m.tickerQuotes())
		if msg.Error != nil {
			m.statusMessage = "market prices unavailable; showing last known"
		}
		return m, m.refresher.WaitForNextResult()

	case appsync.AdvisoryMsg:
		var cmd tea.Cmd
		m.alertsView, cmd = m.alertsView.Update(
			alerts.AlertsUpdatedMsg{Alerts: msg.Alerts},
		)
		if msg.AuthError != nil {
			m.statusMessage = msg.AuthError.Message
		}
		return m, tea.Batch(
			cmd,
			m.refresher.WaitForNextResult(),
			m.fetchUnreadCount(),
		)

	case engineErrorMsg:
		m.statusMessage = fmt.Sprintf("sync: %v", msg.err)
		return m, m.waitForEngineError()

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case remindersRefreshedMsg:
		var cmd tea.Cmd
		m.reminderList, cmd = m.reminderList.Update(
			reminderlist.RemindersUpdatedMsg{Reminders: msg.reminders},
		)
		return m, cmd

	case OpenSignInMsg:
		m.previousView = m.currentView
		m.currentView = ViewSignIn
		return m, m.signinForm.Start()

	case reminderlist.DeleteRequestedMsg:
		m.engine.Delete(msg.ReminderID)
		return m, m.refreshReminders()

	case reminderform.ReminderCreatedMsg:
		m.currentView = ViewDashboard
		if _, err := m.engine.Add(msg.Title, msg.Day, msg.Hour, msg.Minute); err != nil {
			m.statusMessage = fmt.Sprintf("could not add reminder: %v", err)
			return m, nil
		}
		m.statusMessage = ""
		return m, m.refreshReminders()

	case reminderform.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case signin.SignInSubmittedMsg:
		m.currentView = ViewDashboard
		return m, m.performSignIn(msg.UserKey, msg.Token)

	case signin.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case signInResultMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf(
				"signed in as %s, but sync is unavailable: %v", msg.userKey, msg.err,
			)
		} else {
			m.statusMessage = "signed in as " + msg.userKey
		}
		m.tickerView.SetQuotes(m.tickerQuotes())
		return m, m.refreshReminders()

	case profileform.ProfileSubmittedMsg:
		m.currentView = ViewDashboard
		return m, m.saveProfile(msg.Profile)

	case profileform.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case profileLoadedMsg:
		m.previousView = m.currentView
		m.currentView = ViewProfile
		return m, m.profileForm.Start(msg.profile)

	case profileSavedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("could not save profile: %v", msg.err)
		} else {
			m.statusMessage = "profile saved"
		}
		return m, nil

	case chat.CloseMsg:
		m.chatView.Reset()
		m.currentView = ViewDashboard
		return m, nil

	case chat.ResponseChunkMsg:
		if m.currentView == ViewChat {
			var cmd tea.Cmd
			m.chatView, cmd = m.chatView.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the focused
// sub-view. Text-entry views only honor ctrl+c here.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, m, m.shutdown()
	}

	// Views with text input own the rest of the keyboard.
	if m.currentView != ViewDashboard && m.currentView != ViewHelp {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewDashboard {
			return true, m, m.shutdown()
		}

	case "?", "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		if msg.String() == "?" {
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return true, m, nil
		}

	case "a":
		if m.currentView == ViewDashboard {
			m.previousView = m.currentView
			m.currentView = ViewAddReminder
			return true, m, m.reminderForm.Start()
		}

	case "s":
		if m.currentView == ViewDashboard && !m.signedIn() {
			return true, m, func() tea.Msg { return OpenSignInMsg{} }
		}

	case "S":
		if m.currentView == ViewDashboard && m.signedIn() {
			m.session.SignOut()
			m.engine.SignOut()
			if m.docClient != nil {
				m.docClient.SetToken("")
			}
			m.statusMessage = "signed out; showing sample reminders"
			m.tickerView.SetQuotes(m.tickerQuotes())
			return true, m, m.refreshReminders()
		}

	case "c":
		if m.currentView == ViewDashboard {
			m.previousView = m.currentView
			m.currentView = ViewChat
			return true, m, m.chatView.Focus()
		}

	case "p":
		if m.currentView == ViewDashboard {
			return true, m, m.loadProfile()
		}

	case "r":
		if m.currentView == ViewDashboard && m.refresher != nil {
			m.statusMessage = "refreshing..."
			return true, m, m.refresher.RefreshAll()
		}

	case "left", "h":
		if m.currentView == ViewDashboard {
			m.tickerView.ScrollLeft()
			return true, m, nil
		}

	case "right", "l":
		if m.currentView == ViewDashboard {
			m.tickerView.ScrollRight()
			return true, m, nil
		}

	case " ":
		if m.currentView == ViewDashboard {
			m.tickerView.TogglePause()
			return true, m, nil
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.reminderList, cmd = m.reminderList.Update(msg)
	case ViewAddReminder:
		m.reminderForm, cmd = m.reminderForm.Update(msg)
	case ViewSignIn:
		m.signinForm, cmd = m.signinForm.Update(msg)
	case ViewProfile:
		m.profileForm, cmd = m.profileForm.Update(msg)
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Farm Assistant"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("Farm Assistant [%d new]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.sessionStatus())
	tickerLine := m.tickerView.View()
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, tickerLine, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		left, right := m.layout.SplitColumns()
		reminders := theme.PanelStyle.
			Width(left - 2).
			Render(m.reminderList.View())
		advisories := lipgloss.NewStyle().
			Width(right - 2).
			Render(m.alertsView.View())
		return lipgloss.JoinHorizontal(lipgloss.Top, reminders, advisories)
	case ViewAddReminder:
		return m.reminderForm.View()
	case ViewSignIn:
		return m.signinForm.View()
	case ViewProfile:
		return m.profileForm.View()
	case ViewChat:
		return m.chatView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// sessionStatus returns the header's right-hand session summary.
func (m Model) sessionStatus() string {
	if m.session == nil {
		return "demo"
	}
	current := m.session.Current()
	if !current.SignedIn {
		return "demo · press s to sign in"
	}
	return current.UserKey
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" && m.currentView == ViewDashboard {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewAddReminder, ViewSignIn, ViewProfile:
		return "enter submit | esc cancel"
	case ViewChat:
		return "enter send | esc close"
	default:
		return "q quit | ? help | a add | d delete | c assistant | s sign in"
	}
}

// signedIn reports whether a user session is active.
func (m Model) signedIn() bool {
	return m.session != nil && m.session.Current().SignedIn
}

// applySizes propagates the layout dimensions to every sub-view.
func (m *Model) applySizes() {
	contentWidth := m.layout.ContentWidth()
	contentHeight := m.layout.ContentHeight()
	left, right := m.layout.SplitColumns()

	m.reminderList.SetSize(left-4, contentHeight)
	m.alertsView.SetSize(right, contentHeight)
	m.tickerView.SetSize(contentWidth)
	m.chatView.SetSize(contentWidth, contentHeight)
	m.reminderForm.SetSize(contentWidth, contentHeight)
	m.signinForm.SetSize(contentWidth, contentHeight)
	m.profileForm.SetSize(contentWidth, contentHeight)
	m.helpView.SetSize(contentWidth, contentHeight)
}

// shutdown stops the background work and quits.
func (m Model) shutdown() tea.Cmd {
	if m.refresher != nil {
		m.refresher.Stop()
	}
	m.engine.Close()
	return tea.Quit
}
