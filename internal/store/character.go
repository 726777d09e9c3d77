package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoCharacter indicates the singleton character row is missing, which
// means the seed migration never ran or the store is broken.
var ErrNoCharacter = errors.New("character row missing")

// Character is the singleton derived-state row. total_xp always equals the
// sum of all xp_ledger amounts.
type Character struct {
	Name      string `json:"name"`
	TotalXP   int64  `json:"total_xp"`
	Level     int    `json:"level"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// LedgerEntry is one append-only XP delta.
type LedgerEntry struct {
	ID         int64  `json:"id"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
	SourceKind string `json:"source_kind"`
	SourceID   string `json:"source_id,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// GetCharacter returns the singleton character row.
func (db *DB) GetCharacter(ctx context.Context) (*Character, error) {
	var c Character
	err := db.QueryRowContext(ctx, `
		SELECT name, total_xp, level, title, created_at, updated_at
		FROM character WHERE id = 1
	`).Scan(&c.Name, &c.TotalXP, &c.Level, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCharacter
	}
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}
	return &c, nil
}

// UpdateCharacter writes the derived XP/level/title state.
func (db *DB) UpdateCharacter(ctx context.Context, totalXP int64, level int, title string) error {
	if totalXP < 0 {
		return fmt.Errorf("total xp cannot be negative")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE character
		SET total_xp = ?, level = ?, title = ?, updated_at = unixepoch('now', 'subsec') * 1000
		WHERE id = 1
	`, totalXP, level, title)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNoCharacter
	}
	return nil
}

// RenameCharacter sets the character's display name.
func (db *DB) RenameCharacter(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("character name cannot be empty")
	}
	_, err := db.ExecContext(ctx, `
		UPDATE character SET name = ?, updated_at = unixepoch('now', 'subsec') * 1000 WHERE id = 1
	`, name)
	return err
}

// AppendLedger records one signed XP delta. sourceID may be empty.
func (db *DB) AppendLedger(ctx context.Context, amount int64, reason, sourceKind, sourceID string) (int64, error) {
	var src any
	if sourceID != "" {
		src = sourceID
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO xp_ledger (amount, reason, source_kind, source_id) VALUES (?, ?, ?, ?)
	`, amount, reason, sourceKind, src)
	if err != nil {
		return 0, fmt.Errorf("append ledger: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// HasLedgerEntry reports whether a ledger row exists for the given source.
// Used to keep per-event bonuses to at most one grant.
func (db *DB) HasLedgerEntry(ctx context.Context, sourceKind, sourceID string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, `
		SELECT 1 FROM xp_ledger WHERE source_kind = ? AND source_id = ? LIMIT 1
	`, sourceKind, sourceID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LedgerTotal returns the running sum of all ledger amounts.
func (db *DB) LedgerTotal(ctx context.Context) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM xp_ledger`).Scan(&total)
	return total, err
}

// ListLedger returns the most recent ledger entries, newest first.
func (db *DB) ListLedger(ctx context.Context, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, amount, reason, source_kind, source_id, created_at
		FROM xp_ledger ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var src sql.NullString
		if err := rows.Scan(&e.ID, &e.Amount, &e.Reason, &e.SourceKind, &src, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SourceID = src.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
