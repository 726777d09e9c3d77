package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Migration is one schema/data step. Statements run inside a single
// transaction together with the ledger insert, so a migration is either fully
// applied and recorded, or not applied at all.
type Migration struct {
	Key        string
	Statements []string
}

// migrations is the fixed, ordered list. New migrations are appended at the
// end and never reordered or edited once shipped.
var migrations = []Migration{
	{
		Key: "0001_character",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS character (
				id         INTEGER PRIMARY KEY CHECK (id = 1),
				name       TEXT    NOT NULL,
				total_xp   INTEGER NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
				level      INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
				title      TEXT    NOT NULL DEFAULT 'Novice',
				created_at INTEGER NOT NULL DEFAULT (unixepoch('now', 'subsec') * 1000),
				updated_at INTEGER NOT NULL DEFAULT (unixepoch('now', 'subsec') * 1000)
			)`,
			`CREATE TABLE IF NOT EXISTS xp_ledger (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				amount      INTEGER NOT NULL,
				reason      TEXT    NOT NULL,
				source_kind TEXT    NOT NULL,
				source_id   TEXT,
				created_at  INTEGER NOT NULL DEFAULT (unixepoch('now', 'subsec') * 1000)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_xp_ledger_source ON xp_ledger(source_kind, source_id)`,
			`INSERT OR IGNORE INTO character (id, name) VALUES (1, 'Adventurer')`,
		},
	},
	{
		Key: "0002_effects",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS effect_definitions (
				id           TEXT    PRIMARY KEY,
				name         TEXT    NOT NULL UNIQUE,
				kind         TEXT    NOT NULL CHECK (kind IN ('buff', 'debuff')),
				duration_ms  INTEGER NOT NULL CHECK (duration_ms > 0),
				stat_effects TEXT    NOT NULL DEFAULT '{}',
				created_at   INTEGER NOT NULL DEFAULT (unixepoch('now', 'subsec') * 1000)
			)`,
			`CREATE TABLE IF NOT EXISTS effect_activations (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				definition_id TEXT    NOT NULL REFERENCES effect_definitions(id) ON DELETE CASCADE,
				activated_at  INTEGER NOT NULL,
				expires_at    INTEGER NOT NULL,
				active        INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE INDEX IF NOT EXISTS idx_activations_active ON effect_activations(active, expires_at)`,
			`CREATE INDEX IF NOT EXISTS idx_activations_definition ON effect_activations(definition_id, activated_at DESC)`,
			`INSERT OR IGNORE INTO effect_definitions (id, name, kind, duration_ms, stat_effects) VALUES
				('buff-deep-work',   'Deep Work',   'buff',   14400000, '{"focus":3,"intellect":2}'),
				('buff-exercise',    'Exercise',    'buff',   28800000, '{"strength":3,"vitality":2}'),
				('debuff-all-nighter', 'All-Nighter', 'debuff', 57600000, '{"focus":-3,"vitality":-2}')`,
		},
	},
	{
		Key: "0003_achievements",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS achievement_definitions (
				id                TEXT    PRIMARY KEY,
				name              TEXT    NOT NULL UNIQUE,
				requirement_kind  TEXT    NOT NULL CHECK (requirement_kind IN ('count', 'threshold')),
				requirement_source TEXT   NOT NULL,
				requirement_value INTEGER NOT NULL CHECK (requirement_value > 0),
				xp_reward         INTEGER NOT NULL DEFAULT 0 CHECK (xp_reward >= 0)
			)`,
			`CREATE TABLE IF NOT EXISTS achievement_progress (
				definition_id TEXT    PRIMARY KEY REFERENCES achievement_definitions(id) ON DELETE CASCADE,
				current_value INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS achievement_unlocks (
				definition_id TEXT    PRIMARY KEY REFERENCES achievement_definitions(id) ON DELETE CASCADE,
				unlocked_at   INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_achievements_source ON achievement_definitions(requirement_source)`,
			`INSERT OR IGNORE INTO achievement_definitions (id, name, requirement_kind, requirement_source, requirement_value, xp_reward) VALUES
				('ach-first-buff',    'First Steps',     'count',     'buffs_activated', 1,   25),
				('ach-ten-buffs',     'Habit Forming',   'count',     'buffs_activated', 10,  100),
				('ach-hundred-buffs', 'Disciplined',     'count',     'buffs_activated', 100, 500),
				('ach-first-combo',   'Synergy',         'count',     'combos_claimed',  1,   50),
				('ach-level-five',    'Getting Serious', 'threshold', 'character_level', 5,   100),
				('ach-level-ten',     'Veteran',         'threshold', 'character_level', 10,  250)`,
		},
	},
	{
		Key: "0004_combos",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS combo_definitions (
				id             TEXT    PRIMARY KEY,
				name           TEXT    NOT NULL UNIQUE,
				time_window_ms INTEGER NOT NULL CHECK (time_window_ms > 0),
				bonus_xp       INTEGER NOT NULL DEFAULT 0 CHECK (bonus_xp >= 0)
			)`,
			`CREATE TABLE IF NOT EXISTS combo_requirements (
				combo_id      TEXT NOT NULL REFERENCES combo_definitions(id) ON DELETE CASCADE,
				definition_id TEXT NOT NULL REFERENCES effect_definitions(id) ON DELETE CASCADE,
				PRIMARY KEY (combo_id, definition_id)
			)`,
			`CREATE TABLE IF NOT EXISTS combo_activations (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				combo_id         TEXT    NOT NULL REFERENCES combo_definitions(id) ON DELETE CASCADE,
				activated_at     INTEGER NOT NULL,
				activations_used TEXT    NOT NULL DEFAULT '[]'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_combo_activations ON combo_activations(combo_id, activated_at DESC)`,
			`INSERT OR IGNORE INTO combo_definitions (id, name, time_window_ms, bonus_xp) VALUES
				('combo-mind-and-body', 'Mind and Body', 86400000, 75)`,
			`INSERT OR IGNORE INTO combo_requirements (combo_id, definition_id) VALUES
				('combo-mind-and-body', 'buff-deep-work'),
				('combo-mind-and-body', 'buff-exercise')`,
		},
	},
}

// Migrate applies the ordered migration list, skipping keys already recorded
// in schema_migrations. It stops at the first failure so the store never runs
// in a half-migrated state.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			key        TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, m := range migrations {
		applied, err := db.migrationApplied(ctx, m.Key)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.Key, err)
		}
		if applied {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.Key, err)
		}
		for _, stmt := range m.Statements {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("exec migration %s: %w", m.Key, err)
			}
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (key, applied_at) VALUES (?, ?)`,
			m.Key, time.Now().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Key, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Key, err)
		}

		db.mirrorMigrationKey(m.Key)
	}
	return nil
}

// AppliedMigrations returns the recorded migration keys in apply order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key FROM schema_migrations ORDER BY applied_at, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (db *DB) migrationApplied(ctx context.Context, key string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE key = ?`, key).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// mirrorMigrationKey appends the key to a sidecar ledger file next to the
// database, so the set of applied migrations survives a corrupted main store.
// Best-effort: a mirror failure never blocks the migration itself.
func (db *DB) mirrorMigrationKey(key string) {
	path := db.migrationLedgerPath()
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Warn("cannot mirror migration key", "key", key, "err", err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, key); err != nil {
		slog.Warn("cannot mirror migration key", "key", key, "err", err)
	}
}

func (db *DB) migrationLedgerPath() string {
	if db.path == "" || db.path == ":memory:" {
		return ""
	}
	return db.path + ".migrations"
}
