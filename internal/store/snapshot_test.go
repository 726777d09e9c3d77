package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, src.RenameCharacter(ctx, "Hero"))
	require.NoError(t, src.UpdateCharacter(ctx, 170, 2, "Novice"))
	_, err := src.AppendLedger(ctx, 170, "quest", "manual", "")
	require.NoError(t, err)
	now := time.Now().UnixMilli()
	_, err = src.InsertActivation(ctx, "buff-deep-work", now, now+60_000)
	require.NoError(t, err)

	data, err := src.Export(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	dst := NewTestDB(t)
	// Give the destination divergent state that the import must replace.
	_, err = dst.AppendLedger(ctx, 999, "stale", "manual", "")
	require.NoError(t, err)

	require.NoError(t, dst.Import(ctx, data))

	ch, err := dst.GetCharacter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hero", ch.Name)
	assert.Equal(t, int64(170), ch.TotalXP)

	total, err := dst.LedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(170), total)

	effects, err := dst.ActiveEffects(ctx, now)
	require.NoError(t, err)
	assert.Len(t, effects, 1)
}

func TestImport_RejectsGarbage(t *testing.T) {
	db := NewTestDB(t)
	err := db.Import(context.Background(), []byte("not a sqlite database at all"))
	assert.Error(t, err)
}

func TestImport_RejectsNewerSchema(t *testing.T) {
	src := NewTestDB(t)
	ctx := context.Background()

	// Simulate a snapshot written by a future version.
	_, err := src.ExecContext(ctx, `
		INSERT INTO schema_migrations (key, applied_at) VALUES ('9999_future', ?)
	`, time.Now().UnixMilli())
	require.NoError(t, err)

	data, err := src.Export(ctx)
	require.NoError(t, err)

	dst := NewTestDB(t)
	err = dst.Import(ctx, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer version")
}

func TestImport_PreservesLiveDataOnValidationFailure(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.AppendLedger(ctx, 50, "keep me", "manual", "")
	require.NoError(t, err)

	require.Error(t, db.Import(ctx, []byte("garbage")))

	total, err := db.LedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
}
