package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with goalgame-specific helpers. It is the single owner of
// all table storage; every other component holds a handle and goes through
// its methods.
type DB struct {
	*sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path, configures WAL mode,
// runs migrations, and verifies the seeded character row exists.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Configure connection pool for SQLite (single writer model)
	sqldb.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec(p); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	db := &DB{DB: sqldb, path: path}
	if err := db.Migrate(context.Background()); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// A store without its singleton character row has a broken seed; refusing
	// to open beats operating on undefined state.
	if _, err := db.GetCharacter(context.Background()); err != nil {
		sqldb.Close()
		if errors.Is(err, ErrNoCharacter) {
			return nil, fmt.Errorf("store at %s has no character row after migrations: %w", path, err)
		}
		return nil, fmt.Errorf("verify character: %w", err)
	}
	return db, nil
}

// Path returns the filesystem path this store was opened with.
func (db *DB) Path() string {
	return db.path
}

// Flush checkpoints the WAL so the main database file holds the full durable
// snapshot. Called by the game layer after every mutating operation; a failed
// flush is reported, not fatal, since the in-memory store stays correct and a
// later flush reconciles durable state.
func (db *DB) Flush(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(FULL)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

// Check runs a quick integrity check on the live store.
func (db *DB) Check(ctx context.Context) error {
	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
