package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Migration is one step of the journal schema. Tables lists the tables the
// step creates, which ValidateSchema expects once it has been applied.
type Migration struct {
	Version     int
	Description string
	Tables      []string
	Up          string
	Down        string
}

// migrations is the journal schema history, oldest first. Versions are
// consecutive from 1.
var migrations = []Migration{
	{
		Version:     1,
		Description: "words journal",
		Tables:      []string{"words"},
		Up: `
CREATE TABLE IF NOT EXISTS words (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   TEXT NOT NULL,
    app_id       TEXT NOT NULL DEFAULT '',
    committed_ns INTEGER NOT NULL,
    raw          TEXT NOT NULL,
    composed     TEXT NOT NULL DEFAULT '',
    valid        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_words_committed ON words(committed_ns);
CREATE INDEX IF NOT EXISTS idx_words_valid_raw ON words(valid, raw);
`,
		Down: `
DROP INDEX IF EXISTS idx_words_valid_raw;
DROP INDEX IF EXISTS idx_words_committed;
DROP TABLE IF EXISTS words;
`,
	},
	{
		Version:     2,
		Description: "session summaries",
		Tables:      []string{"sessions"},
		Up: `
CREATE TABLE IF NOT EXISTS sessions (
    id            TEXT PRIMARY KEY,
    app_id        TEXT NOT NULL,
    doc_id        TEXT NOT NULL,
    started_ns    INTEGER NOT NULL,
    ended_ns      INTEGER NOT NULL,
    keystrokes    INTEGER NOT NULL,
    valid_words   INTEGER NOT NULL,
    invalid_words INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_ended ON sessions(ended_ns);
`,
		Down: `
DROP INDEX IF EXISTS idx_sessions_ended;
DROP TABLE IF EXISTS sessions;
`,
	},
}

const versionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     INTEGER PRIMARY KEY,
    applied_at  INTEGER NOT NULL,
    description TEXT
)`

// ErrNothingToRollback is returned by RollbackMigration on an empty schema.
var ErrNothingToRollback = errors.New("store: no migration to roll back")

// inTx runs fn in a transaction, committing only if it succeeds.
func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// MigrateDB brings the journal schema up to the latest version. Each
// migration is applied in its own transaction together with its
// schema_migrations row.
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(versionTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations[min(current, len(migrations)):] {
		err := inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.Up); err != nil {
				return err
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
				m.Version, time.Now().UnixNano(), m.Description,
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// RollbackMigration undoes the most recent migration.
func RollbackMigration(db *sql.DB) error {
	current, err := currentVersion(db)
	if err != nil {
		return err
	}
	if current == 0 {
		return ErrNothingToRollback
	}
	if current > len(migrations) {
		return fmt.Errorf("store: schema version %d is newer than this build", current)
	}

	m := migrations[current-1]
	err = inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.Down); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", m.Version)
		return err
	})
	if err != nil {
		return fmt.Errorf("roll back migration %d: %w", m.Version, err)
	}
	return nil
}

// MigrationStatus describes which migrations have been applied.
type MigrationStatus struct {
	CurrentVersion int
	LatestVersion  int
	Pending        []Migration
	Applied        []AppliedMigration
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version     int
	AppliedAt   time.Time
	Description string
}

// GetMigrationStatus reports applied and pending migrations. A database
// that was never migrated has every migration pending.
func GetMigrationStatus(db *sql.DB) (*MigrationStatus, error) {
	status := &MigrationStatus{LatestVersion: len(migrations)}

	rows, err := db.Query("SELECT version, applied_at, description FROM schema_migrations ORDER BY version")
	if err != nil {
		status.Pending = migrations
		return status, nil
	}
	defer rows.Close()

	for rows.Next() {
		var am AppliedMigration
		var appliedNs int64
		if err := rows.Scan(&am.Version, &appliedNs, &am.Description); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		am.AppliedAt = time.Unix(0, appliedNs)
		status.Applied = append(status.Applied, am)
		status.CurrentVersion = max(status.CurrentVersion, am.Version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}

	if status.CurrentVersion < len(migrations) {
		status.Pending = migrations[status.CurrentVersion:]
	}
	return status, nil
}

// ValidateSchema checks that every table of the latest schema exists.
func ValidateSchema(db *sql.DB) error {
	required := []string{"schema_migrations"}
	for _, m := range migrations {
		required = append(required, m.Tables...)
	}

	for _, table := range required {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("store: missing table %s", table)
		}
	}
	return nil
}
