package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	aiservice "github.com/pdeshmukh/farm-assistant/internal/ai"
	"github.com/pdeshmukh/farm-assistant/internal/advisory"
	"github.com/pdeshmukh/farm-assistant/internal/app"
	"github.com/pdeshmukh/farm-assistant/internal/credential"
	"github.com/pdeshmukh/farm-assistant/internal/docstore"
	"github.com/pdeshmukh/farm-assistant/internal/market"
	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/reminder"
	"github.com/pdeshmukh/farm-assistant/internal/session"
	"github.com/pdeshmukh/farm-assistant/internal/store"
	appsync "github.com/pdeshmukh/farm-assistant/internal/sync"
)

// advisoryPasswordKey is the keyring entry holding the bulletin mailbox
// password.
const advisoryPasswordKey = "advisory-password"

func main() {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	dbPath := defaultDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("creating data directory: %v", err)
	}

	cache, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("opening local cache: %v", err)
	}
	defer cache.Close()

	sess := session.NewManager()
	sess.Resume()

	docClient := docstore.NewClient(cfg.Store.BaseURL, storeToken(cfg, sess))

	engineErrors := make(chan error, 8)
	engine := reminder.New(docClient, reminder.WithErrorFunc(func(err error) {
		select {
		case engineErrors <- err:
		default:
		}
	}))

	marketSvc := market.NewService(cfg.Market.QuotesURL, cache)
	advisorySrc := buildAdvisorySource(cfg, cache)

	refresher := appsync.New(
		marketSvc,
		advisorySrc,
		time.Duration(cfg.Market.RefreshSec)*time.Second,
		time.Duration(cfg.Advisory.PollSec)*time.Second,
	)

	assistant := loadAssistant(cfg, engine, cache)

	root := app.New(app.Deps{
		Engine:       engine,
		Session:      sess,
		DocClient:    docClient,
		Cache:        cache,
		Refresher:    refresher,
		Assistant:    assistant,
		EngineErrors: engineErrors,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// storeToken prefers a static token from the config file and falls back
// to the remembered session token.
func storeToken(cfg *model.AppConfig, sess *session.Manager) string {
	if cfg.Store.Token != "" {
		return cfg.Store.Token
	}
	return sess.Token()
}

// buildAdvisorySource wires the IMAP bulletin source when a mailbox is
// configured. Without one the source serves the built-in advisories.
func buildAdvisorySource(cfg *model.AppConfig, cache store.Store) *advisory.Source {
	var fetcher advisory.BulletinFetcher
	if cfg.Advisory.IMAPHost != "" && cfg.Advisory.Username != "" {
		password, err := credential.Get(advisoryPasswordKey)
		if err == nil && password != "" {
			fetcher = advisory.NewIMAPClient(
				cfg.Advisory.IMAPHost,
				cfg.Advisory.IMAPPort,
				cfg.Advisory.Username,
				password,
				cfg.Advisory.UseTLS,
			)
		}
	}
	return advisory.NewSource(fetcher, cache, cfg.Advisory.Sender)
}

// loadAssistant creates the chat assistant when an API key is available.
// Returns nil otherwise; the chat view then shows setup instructions.
func loadAssistant(
	cfg *model.AppConfig,
	engine *reminder.Engine,
	cache store.Store,
) *aiservice.Assistant {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		var err error
		apiKey, err = credential.Get("claude-api-key")
		if err != nil || apiKey == "" {
			return nil
		}
	}

	return aiservice.New(apiKey, engine, cache, cfg.AI.Model, cfg.AI.MaxTokens)
}

// defaultDBPath returns the on-disk location of the local cache,
// ~/.config/farmassist/farmassist.db.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "farmassist.db")
	}
	return filepath.Join(home, ".config", "farmassist", "farmassist.db")
}
