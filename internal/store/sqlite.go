package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pdeshmukh/farm-assistant/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertQuotes replaces the cached price for each quoted crop.
func (s *SQLiteStore) UpsertQuotes(ctx context.Context, quotes []model.CropQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO quotes (name, price, image, note, fetched_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing quote upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		fetchedAt := q.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			q.Name, q.Price, q.Image, q.Note, fetchedAt.UTC(),
		); err != nil {
			return fmt.Errorf("upserting quote %s: %w", q.Name, err)
		}
	}

	return tx.Commit()
}

// GetQuotes returns all cached quotes ordered by crop name.
func (s *SQLiteStore) GetQuotes(ctx context.Context) ([]model.CropQuote, error) {
	var quotes []model.CropQuote
	err := s.db.SelectContext(ctx, &quotes,
		"SELECT name, price, image, note, fetched_at FROM quotes ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	return quotes, nil
}

// UpsertAlerts inserts or replaces a batch of advisory alerts.
func (s *SQLiteStore) UpsertAlerts(ctx context.Context, alerts []model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO alerts (id, title, detail, region, action_label, received_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing alert upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.Title, a.Detail, a.Region, a.ActionLabel, a.ReceivedAt.UTC(),
		); err != nil {
			return fmt.Errorf("upserting alert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// GetAlerts returns the most recent alerts, newest first.
func (s *SQLiteStore) GetAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	query := `SELECT id, title, detail, region, action_label, received_at
		FROM alerts ORDER BY received_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var alerts []model.Alert
	if err := s.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	return alerts, nil
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, kind, message, read, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Kind, n.Message, boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been
// read, ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, kind, message, read, created_at FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var (
			n       model.Notification
			readInt int
		)
		if err := rows.Scan(&n.ID, &n.Kind, &n.Message, &readInt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Read = readInt != 0
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// SaveProfile stores the profile draft for a user as a JSON document.
func (s *SQLiteStore) SaveProfile(ctx context.Context, userKey string, p model.FarmerProfile) error {
	p.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (user_key, data, updated_at)
		VALUES (?, ?, ?)`,
		userKey, string(data), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving profile for %s: %w", userKey, err)
	}
	return nil
}

// GetProfile loads the profile draft for a user. Returns nil without
// error when no draft exists.
func (s *SQLiteStore) GetProfile(ctx context.Context, userKey string) (*model.FarmerProfile, error) {
	var data string
	err := s.db.GetContext(ctx, &data,
		"SELECT data FROM profiles WHERE user_key = ?", userKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile for %s: %w", userKey, err)
	}

	var p model.FarmerProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshaling profile for %s: %w", userKey, err)
	}
	return &p, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
