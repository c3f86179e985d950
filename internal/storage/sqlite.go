package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 2

// Open opens the SQLite database at path, creating the file and its
// directory if needed, and migrates it to the current schema.
//
// The pool is limited to one connection so per-connection pragmas such as
// foreign_keys hold for every statement.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// SchemaVersion reports the schema version recorded in db.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

// migrate runs database migrations.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := migrateV1(db); err != nil {
			return err
		}
	}

	if version < 2 {
		if err := migrateV2(db); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the bookmark tree and seeds the reserved folders.
func migrateV1(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_id INTEGER,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			url TEXT,
			date_added TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_position ON nodes(parent_id, position);

		INSERT OR IGNORE INTO nodes (id, parent_id, position, title, url, date_added) VALUES
			(0, NULL, 0, '', NULL, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			(1, 0, 0, 'Bookmarks Bar', NULL, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			(2, 0, 1, 'Other Bookmarks', NULL, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			(3, 0, 2, 'Mobile Bookmarks', NULL, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'));

		DELETE FROM schema_version;
		INSERT INTO schema_version (version) VALUES (1);
	`
	_, err := db.Exec(schema)
	return err
}

// migrateV2 adds the namespaced key-value table used for snapshots.
func migrateV2(db *sql.DB) error {
	migration := `
		CREATE TABLE IF NOT EXISTS kv (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB NOT NULL,
			PRIMARY KEY (namespace, key)
		);
		UPDATE schema_version SET version = 2;
	`
	_, err := db.Exec(migration)
	return err
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bmr/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmr", "bookmarks.db"), nil
}
