package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// snapshotTables lists every table carried by a snapshot, parents before
// children so an import can insert in order with foreign keys intact.
var snapshotTables = []string{
	"schema_migrations",
	"character",
	"xp_ledger",
	"effect_definitions",
	"effect_activations",
	"achievement_definitions",
	"achievement_progress",
	"achievement_unlocks",
	"combo_definitions",
	"combo_requirements",
	"combo_activations",
}

// Export serializes the full store into a standalone SQLite database blob
// via VACUUM INTO. Import(Export()) round-trips every table's row set.
func (db *DB) Export(ctx context.Context) ([]byte, error) {
	tmp := filepath.Join(os.TempDir(), "goalgame-export-"+uuid.NewString()+".db")
	defer os.Remove(tmp)

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Import atomically replaces the live store contents with the snapshot and
// persists the result. The blob is integrity-checked first; a snapshot
// produced by a newer schema version is rejected. A snapshot from an older
// version is accepted and migrated forward after the copy.
func (db *DB) Import(ctx context.Context, data []byte) error {
	tmp := filepath.Join(os.TempDir(), "goalgame-import-"+uuid.NewString()+".db")
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	defer os.Remove(tmp)

	if err := validateSnapshot(ctx, tmp); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `ATTACH DATABASE ? AS snapshot`, tmp); err != nil {
		return fmt.Errorf("attach snapshot: %w", err)
	}
	defer db.ExecContext(ctx, `DETACH DATABASE snapshot`)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	if _, err := tx.Exec(`PRAGMA defer_foreign_keys=ON`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("defer foreign keys: %w", err)
	}

	// Clear children before parents, then copy parents before children.
	for i := len(snapshotTables) - 1; i >= 0; i-- {
		if _, err := tx.Exec(`DELETE FROM ` + snapshotTables[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear %s: %w", snapshotTables[i], err)
		}
	}
	for _, table := range snapshotTables {
		exists, err := snapshotHasTable(tx, table)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inspect snapshot: %w", err)
		}
		if !exists {
			continue // older snapshot; the table appears in a later migration
		}
		if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s SELECT * FROM snapshot.%s`, table, table)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("copy %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	// Bring an older snapshot forward to the current schema.
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate imported snapshot: %w", err)
	}
	if _, err := db.GetCharacter(ctx); err != nil {
		return fmt.Errorf("imported snapshot has no character row: %w", err)
	}
	return db.Flush(ctx)
}

// validateSnapshot opens the blob read-only and checks integrity and schema
// version before any live data is touched.
func validateSnapshot(ctx context.Context, path string) error {
	snap, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer snap.Close()

	var result string
	if err := snap.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("snapshot integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("snapshot is corrupt: %s", result)
	}

	rows, err := snap.QueryContext(ctx, `SELECT key FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("snapshot has no migration ledger: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		known[m.Key] = true
	}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		if !known[key] {
			return fmt.Errorf("snapshot was written by a newer version (unknown migration %q)", key)
		}
	}
	return rows.Err()
}

func snapshotHasTable(tx *sql.Tx, name string) (bool, error) {
	var found int
	err := tx.QueryRow(`SELECT 1 FROM snapshot.sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
