package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrClosed is returned for operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store is the SQLite word journal.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs
// migrations. ":memory:" opens a private in-memory journal.
func Open(path string) (*Store, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; an in-memory database also lives on a single connection.
	db.SetMaxOpenConns(1)

	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// DB exposes the underlying handle for migrations and diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Record inserts a committed word and returns its ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	if e.CommittedAt.IsZero() {
		e.CommittedAt = time.Now()
	}
	composed := e.Composed
	if !e.Valid {
		composed = ""
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO words (session_id, app_id, committed_ns, raw, composed, valid)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.AppID, e.CommittedAt.UnixNano(), e.Raw, composed, e.Valid,
	)
	if err != nil {
		return 0, fmt.Errorf("insert word: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// RecordBatch inserts several words in one transaction.
func (s *Store) RecordBatch(ctx context.Context, entries []Entry) error {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO words (session_id, app_id, committed_ns, raw, composed, valid)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range entries {
		at := e.CommittedAt
		if at.IsZero() {
			at = now
		}
		composed := e.Composed
		if !e.Valid {
			composed = ""
		}
		if _, err := stmt.ExecContext(ctx, e.SessionID, e.AppID, at.UnixNano(), e.Raw, composed, e.Valid); err != nil {
			return fmt.Errorf("insert word: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RecordSession stores a session summary, replacing an earlier one with
// the same ID.
func (s *Store) RecordSession(ctx context.Context, r SessionRecord) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, app_id, doc_id, started_ns, ended_ns, keystrokes, valid_words, invalid_words)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AppID, r.DocID, r.StartedAt.UnixNano(), r.EndedAt.UnixNano(), r.Keystrokes, r.ValidWords, r.InvalidWords,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Session returns a stored session summary, or nil when there is none.
func (s *Store) Session(ctx context.Context, id string) (*SessionRecord, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var r SessionRecord
	var started, ended int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, app_id, doc_id, started_ns, ended_ns, keystrokes, valid_words, invalid_words
		FROM sessions WHERE id = ?`, id,
	).Scan(&r.ID, &r.AppID, &r.DocID, &started, &ended, &r.Keystrokes, &r.ValidWords, &r.InvalidWords)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	r.StartedAt = time.Unix(0, started)
	r.EndedAt = time.Unix(0, ended)
	return &r, nil
}

// Recent returns up to limit words, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, app_id, committed_ns, raw, composed, valid
		FROM words ORDER BY committed_ns DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var committed int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.AppID, &committed, &e.Raw, &e.Composed, &e.Valid); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		e.CommittedAt = time.Unix(0, committed)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return entries, nil
}

// Stats summarises the journal, listing up to top invalid raw sequences.
func (s *Store) Stats(ctx context.Context, top int) (*Stats, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	var st Stats
	var first, last int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(valid), 0), COUNT(DISTINCT session_id),
		       COALESCE(MIN(committed_ns), 0), COALESCE(MAX(committed_ns), 0)
		FROM words`,
	).Scan(&st.Words, &st.Valid, &st.Sessions, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}
	st.Invalid = st.Words - st.Valid
	if st.Words > 0 {
		st.First = time.Unix(0, first)
		st.Last = time.Unix(0, last)
	}

	if top <= 0 {
		return &st, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT raw, COUNT(*) AS n FROM words
		WHERE valid = 0
		GROUP BY raw ORDER BY n DESC, raw ASC LIMIT ?`, top)
	if err != nil {
		return nil, fmt.Errorf("query invalid words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rc RawCount
		if err := rows.Scan(&rc.Raw, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan invalid word: %w", err)
		}
		st.TopInvalid = append(st.TopInvalid, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invalid words: %w", err)
	}
	return &st, nil
}

// Prune deletes words committed before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM words WHERE committed_ns < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune words: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
