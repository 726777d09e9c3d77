package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ComboDefinition requires a set of effect definitions to be simultaneously
// active within a time window. Requirements live in an explicit join table.
type ComboDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TimeWindow  int64    `json:"time_window_ms"`
	BonusXP     int64    `json:"bonus_xp"`
	RequiredIDs []string `json:"required_definition_ids"`
}

// ComboActivation is the append-only record of a claimed combo.
type ComboActivation struct {
	ID              int64   `json:"id"`
	ComboID         string  `json:"combo_id"`
	ActivatedAt     int64   `json:"activated_at"`
	ActivationsUsed []int64 `json:"activations_used"`
}

// CreateComboDefinition inserts a combo and its requirement rows in one
// transaction.
func (db *DB) CreateComboDefinition(ctx context.Context, name string, window time.Duration, bonusXP int64, requiredIDs []string) (*ComboDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("combo name cannot be empty")
	}
	if len(requiredIDs) < 2 {
		return nil, fmt.Errorf("combo requires at least two effect definitions")
	}
	id := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		INSERT INTO combo_definitions (id, name, time_window_ms, bonus_xp) VALUES (?, ?, ?, ?)
	`, id, name, window.Milliseconds(), bonusXP); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("create combo: %w", err)
	}
	for _, defID := range requiredIDs {
		if _, err := tx.Exec(`
			INSERT INTO combo_requirements (combo_id, definition_id) VALUES (?, ?)
		`, id, defID); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("add combo requirement %s: %w", defID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return db.GetComboDefinition(ctx, id)
}

// GetComboDefinition resolves a combo by id or case-insensitive name,
// including its required definition ids. Returns nil if absent.
func (db *DB) GetComboDefinition(ctx context.Context, ref string) (*ComboDefinition, error) {
	var c ComboDefinition
	err := db.QueryRowContext(ctx, `
		SELECT id, name, time_window_ms, bonus_xp FROM combo_definitions
		WHERE id = ? OR lower(name) = lower(?)
	`, ref, ref).Scan(&c.ID, &c.Name, &c.TimeWindow, &c.BonusXP)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get combo: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT definition_id FROM combo_requirements WHERE combo_id = ? ORDER BY definition_id
	`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var defID string
		if err := rows.Scan(&defID); err != nil {
			return nil, err
		}
		c.RequiredIDs = append(c.RequiredIDs, defID)
	}
	return &c, rows.Err()
}

// ListComboDefinitions returns all combos with their requirements.
func (db *DB) ListComboDefinitions(ctx context.Context) ([]ComboDefinition, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM combo_definitions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var combos []ComboDefinition
	for _, id := range ids {
		c, err := db.GetComboDefinition(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			combos = append(combos, *c)
		}
	}
	return combos, nil
}

// InsertComboActivation appends a claim record.
func (db *DB) InsertComboActivation(ctx context.Context, comboID string, activatedAt int64, activationIDs []int64) (*ComboActivation, error) {
	used, err := json.Marshal(activationIDs)
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO combo_activations (combo_id, activated_at, activations_used) VALUES (?, ?, ?)
	`, comboID, activatedAt, string(used))
	if err != nil {
		return nil, fmt.Errorf("insert combo activation: %w", err)
	}
	id, _ := res.LastInsertId()
	return &ComboActivation{
		ID: id, ComboID: comboID, ActivatedAt: activatedAt, ActivationsUsed: activationIDs,
	}, nil
}

// LastComboActivation returns the most recent claim for a combo, or nil.
func (db *DB) LastComboActivation(ctx context.Context, comboID string) (*ComboActivation, error) {
	var a ComboActivation
	var usedJSON string
	err := db.QueryRowContext(ctx, `
		SELECT id, combo_id, activated_at, activations_used
		FROM combo_activations WHERE combo_id = ?
		ORDER BY activated_at DESC, id DESC LIMIT 1
	`, comboID).Scan(&a.ID, &a.ComboID, &a.ActivatedAt, &usedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last combo activation: %w", err)
	}
	if err := json.Unmarshal([]byte(usedJSON), &a.ActivationsUsed); err != nil {
		a.ActivationsUsed = []int64{}
	}
	return &a, nil
}

// HasComboActivationBetween reports whether the combo was claimed in
// [startMs, endMs). Used for the one-claim-per-calendar-day rule.
func (db *DB) HasComboActivationBetween(ctx context.Context, comboID string, startMs, endMs int64) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, `
		SELECT 1 FROM combo_activations
		WHERE combo_id = ? AND activated_at >= ? AND activated_at < ? LIMIT 1
	`, comboID, startMs, endMs).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
