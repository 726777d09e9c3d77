package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RequirementKind says how an achievement's progress value is maintained:
// count sources accumulate events, threshold sources track a state value.
type RequirementKind string

const (
	RequirementCount     RequirementKind = "count"
	RequirementThreshold RequirementKind = "threshold"
)

// AchievementDefinition is a static, seeded achievement template.
type AchievementDefinition struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	RequirementKind  RequirementKind `json:"requirement_kind"`
	Source           string          `json:"requirement_source"`
	RequirementValue int64           `json:"requirement_value"`
	XPReward         int64           `json:"xp_reward"`
}

// AchievementView is a definition with its current progress and unlock state.
type AchievementView struct {
	AchievementDefinition
	CurrentValue int64  `json:"current_value"`
	Unlocked     bool   `json:"unlocked"`
	UnlockedAt   *int64 `json:"unlocked_at,omitempty"`
}

// CreateAchievementDefinition inserts a new template with a generated id.
func (db *DB) CreateAchievementDefinition(ctx context.Context, name string, kind RequirementKind, source string, value, xpReward int64) (*AchievementDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("achievement name cannot be empty")
	}
	if value <= 0 {
		return nil, fmt.Errorf("requirement value must be positive")
	}
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, `
		INSERT INTO achievement_definitions (id, name, requirement_kind, requirement_source, requirement_value, xp_reward)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, name, string(kind), source, value, xpReward)
	if err != nil {
		return nil, fmt.Errorf("create achievement: %w", err)
	}
	return &AchievementDefinition{
		ID: id, Name: name, RequirementKind: kind,
		Source: source, RequirementValue: value, XPReward: xpReward,
	}, nil
}

// ListLockedBySource returns not-yet-unlocked definitions of one kind whose
// requirement source matches.
func (db *DB) ListLockedBySource(ctx context.Context, source string, kind RequirementKind) ([]AchievementDefinition, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT d.id, d.name, d.requirement_kind, d.requirement_source, d.requirement_value, d.xp_reward
		FROM achievement_definitions d
		LEFT JOIN achievement_unlocks u ON u.definition_id = d.id
		WHERE d.requirement_source = ? AND d.requirement_kind = ? AND u.definition_id IS NULL
		ORDER BY d.requirement_value
	`, source, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAchievementDefinitions(rows)
}

func scanAchievementDefinitions(rows *sql.Rows) ([]AchievementDefinition, error) {
	var defs []AchievementDefinition
	for rows.Next() {
		var d AchievementDefinition
		var kind string
		if err := rows.Scan(&d.ID, &d.Name, &kind, &d.Source, &d.RequirementValue, &d.XPReward); err != nil {
			return nil, err
		}
		d.RequirementKind = RequirementKind(kind)
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// AddProgress adds amount to a definition's counter, creating the row at 0
// if absent. Returns the new value.
func (db *DB) AddProgress(ctx context.Context, definitionID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("progress amount cannot be negative")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO achievement_progress (definition_id, current_value) VALUES (?, ?)
		ON CONFLICT(definition_id) DO UPDATE SET current_value = current_value + excluded.current_value
	`, definitionID, amount)
	if err != nil {
		return 0, fmt.Errorf("add progress: %w", err)
	}
	return db.getProgress(ctx, definitionID)
}

// SetProgress sets a definition's counter to a state value. The stored value
// never decreases while the achievement is locked.
func (db *DB) SetProgress(ctx context.Context, definitionID string, value int64) (int64, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO achievement_progress (definition_id, current_value) VALUES (?, ?)
		ON CONFLICT(definition_id) DO UPDATE SET current_value = max(current_value, excluded.current_value)
	`, definitionID, value)
	if err != nil {
		return 0, fmt.Errorf("set progress: %w", err)
	}
	return db.getProgress(ctx, definitionID)
}

func (db *DB) getProgress(ctx context.Context, definitionID string) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, `
		SELECT current_value FROM achievement_progress WHERE definition_id = ?
	`, definitionID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

// InsertUnlock records an unlock if absent. Returns whether this call
// performed the unlock. The existence check and insert are one statement,
// so a second call can never report true again.
func (db *DB) InsertUnlock(ctx context.Context, definitionID string, unlockedAt int64) (bool, error) {
	res, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO achievement_unlocks (definition_id, unlocked_at) VALUES (?, ?)
	`, definitionID, unlockedAt)
	if err != nil {
		return false, fmt.Errorf("insert unlock: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListAchievements returns every definition with progress and unlock state,
// unlocked last.
func (db *DB) ListAchievements(ctx context.Context) ([]AchievementView, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT d.id, d.name, d.requirement_kind, d.requirement_source, d.requirement_value, d.xp_reward,
		       COALESCE(p.current_value, 0), u.unlocked_at
		FROM achievement_definitions d
		LEFT JOIN achievement_progress p ON p.definition_id = d.id
		LEFT JOIN achievement_unlocks u ON u.definition_id = d.id
		ORDER BY u.unlocked_at IS NOT NULL, d.requirement_source, d.requirement_value
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []AchievementView
	for rows.Next() {
		var v AchievementView
		var kind string
		var unlockedAt sql.NullInt64
		if err := rows.Scan(&v.ID, &v.Name, &kind, &v.Source, &v.RequirementValue, &v.XPReward,
			&v.CurrentValue, &unlockedAt); err != nil {
			return nil, err
		}
		v.RequirementKind = RequirementKind(kind)
		if unlockedAt.Valid {
			v.Unlocked = true
			v.UnlockedAt = &unlockedAt.Int64
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
