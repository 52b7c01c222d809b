package history

import (
	"database/sql"

	"go.trai.ch/zerr"
)

// schemaVersion is the latest migration applied by migrate.
const schemaVersion = 1

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);`); err != nil {
		return zerr.Wrap(err, "failed to create migrations table")
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&current); err != nil {
		return zerr.Wrap(err, "failed to read schema version")
	}

	if current < 1 {
		if err := applyMigration1(db); err != nil {
			return zerr.With(err, "version", 1)
		}
	}
	return nil
}

func applyMigration1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return zerr.Wrap(err, "failed to begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE builds (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			input_hash TEXT NOT NULL,
			output_hash TEXT NOT NULL,
			modules INTEGER NOT NULL,
			forced INTEGER NOT NULL,
			diagnostic TEXT NOT NULL
		);`,
		"CREATE INDEX idx_builds_started_at ON builds(started_at DESC);",
		"INSERT INTO migrations (version, applied_at) VALUES (1, strftime('%s','now'));",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return zerr.Wrap(err, "failed to apply migration")
		}
	}

	return tx.Commit()
}
