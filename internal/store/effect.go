package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EffectKind distinguishes buffs from debuffs.
type EffectKind string

const (
	KindBuff   EffectKind = "buff"
	KindDebuff EffectKind = "debuff"
)

// ParseEffectKind validates a user-supplied kind string.
func ParseEffectKind(s string) (EffectKind, error) {
	switch EffectKind(s) {
	case KindBuff, KindDebuff:
		return EffectKind(s), nil
	default:
		return "", fmt.Errorf("unknown effect kind %q: use buff or debuff", s)
	}
}

// EffectDefinition is a buff or debuff template.
type EffectDefinition struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      EffectKind `json:"kind"`
	Duration  int64      `json:"duration_ms"`
	Effects   StatBlock  `json:"stat_effects"`
	CreatedAt int64      `json:"created_at"`
}

// EffectActivation is one timed instance of a definition.
type EffectActivation struct {
	ID           int64  `json:"id"`
	DefinitionID string `json:"definition_id"`
	ActivatedAt  int64  `json:"activated_at"`
	ExpiresAt    int64  `json:"expires_at"`
	Active       bool   `json:"active"`
}

// ActiveEffect joins an activation with its definition for aggregation.
type ActiveEffect struct {
	Activation EffectActivation `json:"activation"`
	Definition EffectDefinition `json:"definition"`
}

// CreateEffectDefinition inserts a new template with a generated id.
func (db *DB) CreateEffectDefinition(ctx context.Context, name string, kind EffectKind, duration time.Duration, effects StatBlock) (*EffectDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("effect name cannot be empty")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("effect duration must be positive")
	}
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, `
		INSERT INTO effect_definitions (id, name, kind, duration_ms, stat_effects)
		VALUES (?, ?, ?, ?, ?)
	`, id, name, string(kind), duration.Milliseconds(), encodeStatBlock(effects))
	if err != nil {
		return nil, fmt.Errorf("create effect definition: %w", err)
	}
	return db.GetEffectDefinition(ctx, id)
}

// GetEffectDefinition returns a definition by id, or nil if absent.
func (db *DB) GetEffectDefinition(ctx context.Context, id string) (*EffectDefinition, error) {
	return db.scanDefinition(db.QueryRowContext(ctx, `
		SELECT id, name, kind, duration_ms, stat_effects, created_at
		FROM effect_definitions WHERE id = ?
	`, id))
}

// FindEffectDefinition resolves a definition by id or case-insensitive name.
func (db *DB) FindEffectDefinition(ctx context.Context, ref string) (*EffectDefinition, error) {
	def, err := db.GetEffectDefinition(ctx, ref)
	if err != nil || def != nil {
		return def, err
	}
	return db.scanDefinition(db.QueryRowContext(ctx, `
		SELECT id, name, kind, duration_ms, stat_effects, created_at
		FROM effect_definitions WHERE lower(name) = lower(?)
	`, ref))
}

func (db *DB) scanDefinition(row *sql.Row) (*EffectDefinition, error) {
	var d EffectDefinition
	var kind, effectsJSON string
	err := row.Scan(&d.ID, &d.Name, &kind, &d.Duration, &effectsJSON, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan effect definition: %w", err)
	}
	d.Kind = EffectKind(kind)
	d.Effects = decodeStatBlock(effectsJSON)
	return &d, nil
}

// ListEffectDefinitions returns all templates, buffs first then by name.
func (db *DB) ListEffectDefinitions(ctx context.Context) ([]EffectDefinition, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, kind, duration_ms, stat_effects, created_at
		FROM effect_definitions ORDER BY kind, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []EffectDefinition
	for rows.Next() {
		var d EffectDefinition
		var kind, effectsJSON string
		if err := rows.Scan(&d.ID, &d.Name, &kind, &d.Duration, &effectsJSON, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Kind = EffectKind(kind)
		d.Effects = decodeStatBlock(effectsJSON)
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// DeleteEffectDefinition removes a template; its activation log cascades.
func (db *DB) DeleteEffectDefinition(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM effect_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete effect definition: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("effect definition %q not found", id)
	}
	return nil
}

// InsertActivation records a new active instance of a definition.
func (db *DB) InsertActivation(ctx context.Context, definitionID string, activatedAt, expiresAt int64) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO effect_activations (definition_id, activated_at, expires_at, active)
		VALUES (?, ?, ?, 1)
	`, definitionID, activatedAt, expiresAt)
	if err != nil {
		return 0, fmt.Errorf("insert activation: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// DeactivateActivation flips active off unconditionally (manual early removal).
func (db *DB) DeactivateActivation(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `UPDATE effect_activations SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("activation %d not found", id)
	}
	return nil
}

// SweepExpired flips active off on every row whose expiry has passed.
// Returns the number of rows swept.
func (db *DB) SweepExpired(ctx context.Context, nowMs int64) (int64, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE effect_activations SET active = 0 WHERE active = 1 AND expires_at <= ?
	`, nowMs)
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ActiveEffects returns unexpired active activations joined with their
// definitions, newest first.
func (db *DB) ActiveEffects(ctx context.Context, nowMs int64) ([]ActiveEffect, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.definition_id, a.activated_at, a.expires_at, a.active,
		       d.id, d.name, d.kind, d.duration_ms, d.stat_effects, d.created_at
		FROM effect_activations a
		JOIN effect_definitions d ON a.definition_id = d.id
		WHERE a.active = 1 AND a.expires_at > ?
		ORDER BY a.activated_at DESC, a.id DESC
	`, nowMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var effects []ActiveEffect
	for rows.Next() {
		var e ActiveEffect
		var kind, effectsJSON string
		if err := rows.Scan(
			&e.Activation.ID, &e.Activation.DefinitionID, &e.Activation.ActivatedAt,
			&e.Activation.ExpiresAt, &e.Activation.Active,
			&e.Definition.ID, &e.Definition.Name, &kind, &e.Definition.Duration,
			&effectsJSON, &e.Definition.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Definition.Kind = EffectKind(kind)
		e.Definition.Effects = decodeStatBlock(effectsJSON)
		effects = append(effects, e)
	}
	return effects, rows.Err()
}

// ListActivationTimes returns activation timestamps for a definition since
// the given cutoff, used by the streak tracker.
func (db *DB) ListActivationTimes(ctx context.Context, definitionID string, sinceMs int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT activated_at FROM effect_activations
		WHERE definition_id = ? AND activated_at >= ?
		ORDER BY activated_at DESC
	`, definitionID, sinceMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []int64
	for rows.Next() {
		var t int64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// Expiry is a scheduled expiry timestamp exposed read-only so an external
// scheduler can fire reminders.
type Expiry struct {
	ActivationID int64  `json:"activation_id"`
	Name         string `json:"name"`
	ExpiresAt    int64  `json:"expires_at"`
}

// UpcomingExpiries returns active effects expiring in (now, now+within], soonest first.
func (db *DB) UpcomingExpiries(ctx context.Context, nowMs, withinMs int64) ([]Expiry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.id, d.name, a.expires_at
		FROM effect_activations a
		JOIN effect_definitions d ON a.definition_id = d.id
		WHERE a.active = 1 AND a.expires_at > ? AND a.expires_at <= ?
		ORDER BY a.expires_at ASC
	`, nowMs, nowMs+withinMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expiries []Expiry
	for rows.Next() {
		var e Expiry
		if err := rows.Scan(&e.ActivationID, &e.Name, &e.ExpiresAt); err != nil {
			return nil, err
		}
		expiries = append(expiries, e)
	}
	return expiries, rows.Err()
}
