package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	src, err := ParseSource("buffs_activated")
	require.NoError(t, err)
	assert.Equal(t, SourceBuffsActivated, src)

	_, err = ParseSource("bogus")
	assert.Error(t, err)
}

func TestIncrement_UnlocksExactlyOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	unlocked, err := svc.Increment(ctx, SourceBuffsActivated, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ach-first-buff"}, unlocked)

	for i := 2; i <= 9; i++ {
		unlocked, err = svc.Increment(ctx, SourceBuffsActivated, 1)
		require.NoError(t, err)
		assert.Empty(t, unlocked, "increment %d", i)
	}

	unlocked, err = svc.Increment(ctx, SourceBuffsActivated, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ach-ten-buffs"}, unlocked)

	// Past the requirement, nothing re-fires and nothing is re-paid.
	unlocked, err = svc.Increment(ctx, SourceBuffsActivated, 1)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	total, err := svc.DB().LedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25+100), total) // each reward exactly once
}

func TestIncrement_LargeStepUnlocksAllPassed(t *testing.T) {
	svc := newTestService(t)

	unlocked, err := svc.Increment(context.Background(), SourceBuffsActivated, 15)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ach-first-buff", "ach-ten-buffs"}, unlocked)
}

func TestIncrement_RejectsNonPositive(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Increment(context.Background(), SourceBuffsActivated, 0)
	assert.Error(t, err)
}

func TestCheckThreshold_SetsStateValue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	unlocked, err := svc.CheckThreshold(ctx, SourceCharacterLevel, 3)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	unlocked, err = svc.CheckThreshold(ctx, SourceCharacterLevel, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ach-level-five"}, unlocked)

	// A lower reading later never regresses progress or re-unlocks.
	unlocked, err = svc.CheckThreshold(ctx, SourceCharacterLevel, 2)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestDefineAchievement_UserCounter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	def, err := svc.DefineAchievement(ctx, "Walker", "count", SourceStepsCompleted, 3, 30)
	require.NoError(t, err)

	unlocked, err := svc.Increment(ctx, SourceStepsCompleted, 2)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	unlocked, err = svc.Increment(ctx, SourceStepsCompleted, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{def.ID}, unlocked)
}

func TestCheckThreshold_RewardCascadesIntoStateCounters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// A 1200 XP reward pushes the character past level 5, so the seeded
	// level achievement must unlock inside the same call, not on the next
	// unrelated mutation.
	_, err := svc.DefineAchievement(ctx, "Big Milestone", "threshold", SourceStepsCompleted, 100, 1200)
	require.NoError(t, err)

	_, err = svc.CheckThreshold(ctx, SourceStepsCompleted, 100)
	require.NoError(t, err)

	ch, err := svc.Character(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, ch.Level)

	views, err := svc.Achievements(ctx)
	require.NoError(t, err)
	unlockedByID := make(map[string]bool)
	for _, v := range views {
		unlockedByID[v.ID] = v.Unlocked
	}
	assert.True(t, unlockedByID["ach-level-five"])
}

func TestAchievements_ListShowsProgress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Increment(ctx, SourceBuffsActivated, 3)
	require.NoError(t, err)

	views, err := svc.Achievements(ctx)
	require.NoError(t, err)

	byID := make(map[string]int64)
	unlockedByID := make(map[string]bool)
	for _, v := range views {
		byID[v.ID] = v.CurrentValue
		unlockedByID[v.ID] = v.Unlocked
	}
	assert.True(t, unlockedByID["ach-first-buff"])
	assert.Equal(t, int64(3), byID["ach-ten-buffs"])
	assert.False(t, unlockedByID["ach-ten-buffs"])
}
