package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS headlines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    source TEXT,
    published TEXT,
    collected_at TEXT DEFAULT (datetime('now')),
    UNIQUE (date, url, title)
);

CREATE TABLE IF NOT EXISTS daily_summaries (
    date TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    n_items INTEGER DEFAULT 0,
    vader_mean REAL DEFAULT 0,
    head_w_neg REAL DEFAULT 0,
    head_w_unc REAL DEFAULT 0,
    head_w_pos REAL DEFAULT 0,
    generated_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT UNIQUE NOT NULL,
    generated_at TEXT DEFAULT (datetime('now')),
    headline_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_headlines_date ON headlines(date);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "track dropped headlines per run",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE run_reports ADD COLUMN dropped_count INTEGER DEFAULT 0`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
