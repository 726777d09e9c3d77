package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db := NewTestDB(t)
	assert.NotNil(t, db)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	before, err := db.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// Running again is a no-op.
	require.NoError(t, db.Migrate(ctx))
	after, err := db.AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMigrate_SeedsCharacter(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	ch, err := db.GetCharacter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Adventurer", ch.Name)
	assert.Equal(t, int64(0), ch.TotalXP)
	assert.Equal(t, 1, ch.Level)
	assert.Equal(t, "Novice", ch.Title)
}

func TestMigrate_SeedsContent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	defs, err := db.ListEffectDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 3)

	achievements, err := db.ListAchievements(ctx)
	require.NoError(t, err)
	assert.Len(t, achievements, 6)

	combo, err := db.GetComboDefinition(ctx, "combo-mind-and-body")
	require.NoError(t, err)
	require.NotNil(t, combo)
	assert.ElementsMatch(t, []string{"buff-deep-work", "buff-exercise"}, combo.RequiredIDs)
}

func TestCharacter_Update(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpdateCharacter(ctx, 150, 2, "Novice"))
	ch, err := db.GetCharacter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(150), ch.TotalXP)
	assert.Equal(t, 2, ch.Level)
}

func TestCharacter_RejectsNegativeXP(t *testing.T) {
	db := NewTestDB(t)
	err := db.UpdateCharacter(context.Background(), -1, 1, "Novice")
	assert.Error(t, err)
}

func TestCharacter_Rename(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RenameCharacter(ctx, "Hero"))
	ch, err := db.GetCharacter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hero", ch.Name)

	assert.Error(t, db.RenameCharacter(ctx, ""))
}

func TestLedger_AppendAndTotal(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.AppendLedger(ctx, 100, "quest", "manual", "")
	require.NoError(t, err)
	_, err = db.AppendLedger(ctx, -30, "penalty", "manual", "")
	require.NoError(t, err)

	total, err := db.LedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(70), total)

	entries, err := db.ListLedger(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-30), entries[0].Amount) // newest first
}

func TestLedger_HasEntryBySource(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.AppendLedger(ctx, 25, "bonus", "streak_bonus", "42")
	require.NoError(t, err)

	found, err := db.HasLedgerEntry(ctx, "streak_bonus", "42")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = db.HasLedgerEntry(ctx, "streak_bonus", "43")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEffectDefinition_CreateAndFind(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	def, err := db.CreateEffectDefinition(ctx, "Meditation", KindBuff, 30*time.Minute, StatBlock{Focus: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, def.ID)
	assert.Equal(t, int64(30*60*1000), def.Duration)

	// Resolve by id and by case-insensitive name.
	byID, err := db.FindEffectDefinition(ctx, def.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	byName, err := db.FindEffectDefinition(ctx, "meditation")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, def.ID, byName.ID)

	missing, err := db.FindEffectDefinition(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEffectDefinition_Validation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.CreateEffectDefinition(ctx, "", KindBuff, time.Hour, StatBlock{})
	assert.Error(t, err)

	_, err = db.CreateEffectDefinition(ctx, "Bad", KindBuff, 0, StatBlock{})
	assert.Error(t, err)
}

func TestEffectDefinition_DeleteCascades(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	def, err := db.CreateEffectDefinition(ctx, "Temp", KindBuff, time.Hour, StatBlock{})
	require.NoError(t, err)
	now := time.Now().UnixMilli()
	_, err = db.InsertActivation(ctx, def.ID, now, now+1000)
	require.NoError(t, err)

	require.NoError(t, db.DeleteEffectDefinition(ctx, def.ID))

	effects, err := db.ActiveEffects(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, effects)

	assert.Error(t, db.DeleteEffectDefinition(ctx, def.ID)) // already gone
}

func TestActivation_SweepAndActive(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	live, err := db.InsertActivation(ctx, "buff-deep-work", now, now+60_000)
	require.NoError(t, err)
	_, err = db.InsertActivation(ctx, "buff-exercise", now-120_000, now-60_000)
	require.NoError(t, err)

	n, err := db.SweepExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Sweeping again finds nothing.
	n, err = db.SweepExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	effects, err := db.ActiveEffects(ctx, now)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, live, effects[0].Activation.ID)
	assert.Equal(t, "Deep Work", effects[0].Definition.Name)
}

func TestActivation_Deactivate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	id, err := db.InsertActivation(ctx, "buff-deep-work", now, now+60_000)
	require.NoError(t, err)
	require.NoError(t, db.DeactivateActivation(ctx, id))

	effects, err := db.ActiveEffects(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, effects)

	assert.Error(t, db.DeactivateActivation(ctx, 9999))
}

func TestUpcomingExpiries(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	_, err := db.InsertActivation(ctx, "buff-deep-work", now, now+30_000)
	require.NoError(t, err)
	_, err = db.InsertActivation(ctx, "buff-exercise", now, now+300_000)
	require.NoError(t, err)

	soon, err := db.UpcomingExpiries(ctx, now, 60_000)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, "Deep Work", soon[0].Name)
}

func TestStatBlock_DecodeMalformed(t *testing.T) {
	// A corrupted stat_effects column degrades to an empty block instead of
	// failing the read.
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		UPDATE effect_definitions SET stat_effects = 'not json' WHERE id = 'buff-deep-work'
	`)
	require.NoError(t, err)

	def, err := db.GetEffectDefinition(ctx, "buff-deep-work")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.True(t, def.Effects.IsZero())
}

func TestAchievement_ProgressAndUnlockOnce(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	v, err := db.AddProgress(ctx, "ach-ten-buffs", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	v, err = db.AddProgress(ctx, "ach-ten-buffs", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	done, err := db.InsertUnlock(ctx, "ach-ten-buffs", time.Now().UnixMilli())
	require.NoError(t, err)
	assert.True(t, done)

	// Second unlock attempt reports false.
	done, err = db.InsertUnlock(ctx, "ach-ten-buffs", time.Now().UnixMilli())
	require.NoError(t, err)
	assert.False(t, done)
}

func TestAchievement_SetProgressNeverDecreases(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	v, err := db.SetProgress(ctx, "ach-level-five", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = db.SetProgress(ctx, "ach-level-five", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestAchievement_ListLockedBySource(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	locked, err := db.ListLockedBySource(ctx, "buffs_activated", RequirementCount)
	require.NoError(t, err)
	require.Len(t, locked, 3)
	// Ordered by requirement value so small goals unlock first.
	assert.Equal(t, "ach-first-buff", locked[0].ID)

	_, err = db.InsertUnlock(ctx, "ach-first-buff", time.Now().UnixMilli())
	require.NoError(t, err)

	locked, err = db.ListLockedBySource(ctx, "buffs_activated", RequirementCount)
	require.NoError(t, err)
	assert.Len(t, locked, 2)
}

func TestCombo_CreateRequiresTwo(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.CreateComboDefinition(ctx, "Solo", time.Hour, 10, []string{"buff-deep-work"})
	assert.Error(t, err)

	combo, err := db.CreateComboDefinition(ctx, "Full Day", 12*time.Hour, 50,
		[]string{"buff-deep-work", "buff-exercise"})
	require.NoError(t, err)
	assert.Len(t, combo.RequiredIDs, 2)
}

func TestCombo_ActivationWindow(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	rec, err := db.InsertComboActivation(ctx, "combo-mind-and-body", now, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, rec.ActivationsUsed)

	last, err := db.LastComboActivation(ctx, "combo-mind-and-body")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, rec.ID, last.ID)

	claimed, err := db.HasComboActivationBetween(ctx, "combo-mind-and-body", now-1000, now+1000)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = db.HasComboActivationBetween(ctx, "combo-mind-and-body", now+1000, now+2000)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSummary(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	s, err := db.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.EffectDefs)
	assert.Equal(t, 6, s.Achievements)
	assert.Equal(t, 1, s.Combos)
	assert.Equal(t, 4, s.MigrationsRun)
}
