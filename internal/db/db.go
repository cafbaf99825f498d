// Package db implements the SQLite bookmark backend.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/dm/internal/store"
)

// DataFile is the file name of the SQLite store inside the dm home directory.
const DataFile = "bookmarks.db"

// DB wraps a *sql.DB with the path it was opened from.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and initialises the schema.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("db.Open: %w", err)
	}
	d := &DB{db: sqldb, path: path}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Open createSchema: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Location returns the database file path.
func (d *DB) Location() string { return d.path }

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bookmarks (
			name       TEXT PRIMARY KEY,
			path       TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Backend
// ---------------------------------------------------------------------------

// Load reads every bookmark row into a Store.
func (d *DB) Load() (*store.Store, error) {
	rows, err := d.db.Query(`SELECT name, path FROM bookmarks`)
	if err != nil {
		return nil, fmt.Errorf("db.Load: %w", err)
	}
	defer rows.Close()

	s := store.New()
	for rows.Next() {
		var name, path string
		if err := rows.Scan(&name, &path); err != nil {
			return nil, fmt.Errorf("db.Load scan: %w", err)
		}
		s.Insert(name, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db.Load: %w", err)
	}
	return s, nil
}

// Save replaces the table contents with s in a single transaction.
func (d *DB) Save(s *store.Store) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("db.Save begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM bookmarks`); err != nil {
		return fmt.Errorf("db.Save clear: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO bookmarks (name, path, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("db.Save prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, b := range s.List() {
		if _, err := stmt.Exec(b.Name, b.Path, now); err != nil {
			return fmt.Errorf("db.Save insert %q: %w", b.Name, err)
		}
	}

	if err := setMeta(tx, metaLastSaved, now); err != nil {
		return fmt.Errorf("db.Save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db.Save commit: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row writes
// ---------------------------------------------------------------------------

// Upsert inserts or replaces a single bookmark.
func (d *DB) Upsert(name, path string) error {
	return d.inTx("db.Upsert", func(tx *sql.Tx, now string) error {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO bookmarks (name, path, updated_at) VALUES (?, ?, ?)`,
			name, path, now,
		)
		return err
	})
}

// Delete removes a single bookmark and reports whether a row was deleted.
// last_saved is only touched when something was removed.
func (d *DB) Delete(name string) (bool, error) {
	var deleted bool
	err := d.inTx("db.Delete", func(tx *sql.Tx, _ string) error {
		res, err := tx.Exec(`DELETE FROM bookmarks WHERE name = ?`, name)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		if !deleted {
			return errNothingDeleted
		}
		return nil
	})
	if errors.Is(err, errNothingDeleted) {
		return false, nil
	}
	return deleted, err
}

var errNothingDeleted = errors.New("nothing deleted")

// inTx runs fn and records last_saved in one transaction.
func (d *DB) inTx(op string, fn func(tx *sql.Tx, now string) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("%s begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := fn(tx, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := setMeta(tx, metaLastSaved, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s commit: %w", op, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

const metaLastSaved = "last_saved"

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setMeta(e execer, key, value string) error {
	if _, err := e.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// LastSaved returns when the bookmarks were last written, in RFC 3339 UTC.
// It reports false for a database that has never been written.
func (d *DB) LastSaved() (string, bool, error) {
	var val string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaLastSaved).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db.LastSaved: %w", err)
	}
	return val, true, nil
}

var _ store.Backend = (*DB)(nil)
