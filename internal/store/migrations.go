package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS quotes (
	name       TEXT PRIMARY KEY,
	price      TEXT NOT NULL DEFAULT '',
	image      TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	detail       TEXT NOT NULL DEFAULT '',
	region       TEXT NOT NULL DEFAULT '',
	action_label TEXT NOT NULL DEFAULT '',
	received_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
	user_key   TEXT PRIMARY KEY,
	data       TEXT NOT NULL DEFAULT '{}',
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_received_at ON alerts(received_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
