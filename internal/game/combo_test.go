package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComboStatus_PartialProgress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	setClock(svc, time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))

	_, err := svc.Activate(ctx, "Deep Work")
	require.NoError(t, err)

	status, err := svc.ComboStatus(ctx, "Mind and Body")
	require.NoError(t, err)
	assert.Equal(t, 50, status.Progress)
	assert.False(t, status.IsReady)
	assert.ElementsMatch(t, []string{"Deep Work", "Exercise"}, status.RequiredNames)
}

func TestComboStatus_FullProgressIsReady(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	setClock(svc, time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))

	_, err := svc.Activate(ctx, "Deep Work")
	require.NoError(t, err)
	_, err = svc.Activate(ctx, "Exercise")
	require.NoError(t, err)

	status, err := svc.ComboStatus(ctx, "Mind and Body")
	require.NoError(t, err)
	assert.Equal(t, 100, status.Progress)
	assert.True(t, status.IsReady)
}

func TestComboStatus_ExpiredEffectDoesNotCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	setClock(svc, base)

	_, err := svc.Activate(ctx, "Deep Work") // 4h duration
	require.NoError(t, err)
	_, err = svc.Activate(ctx, "Exercise") // 8h duration
	require.NoError(t, err)

	// Deep Work has expired by now; only Exercise still counts.
	setClock(svc, base.Add(6*time.Hour))
	status, err := svc.ComboStatus(ctx, "Mind and Body")
	require.NoError(t, err)
	assert.Equal(t, 50, status.Progress)
	assert.False(t, status.IsReady)
}

func TestClaimCombo_PaysBonusOncePerDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	setClock(svc, time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))

	_, err := svc.Activate(ctx, "Deep Work")
	require.NoError(t, err)
	_, err = svc.Activate(ctx, "Exercise")
	require.NoError(t, err)

	rec, err := svc.ClaimCombo(ctx, "Mind and Body")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, rec.ActivationsUsed, 2)

	// Still 100% active, but already claimed today: the re-validated claim
	// is a no-op.
	rec, err = svc.ClaimCombo(ctx, "Mind and Body")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// The first claim unlocked the seeded combo achievement.
	views, err := svc.Achievements(ctx)
	require.NoError(t, err)
	for _, v := range views {
		if v.ID == "ach-first-combo" {
			assert.True(t, v.Unlocked)
		}
	}

	ch, err := svc.Character(ctx)
	require.NoError(t, err)
	total, err := svc.DB().LedgerTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, ch.TotalXP, total)
}

func TestClaimCombo_NotReadyIsNoop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.ClaimCombo(ctx, "Mind and Body")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestClaimCombo_ReadyAgainNextDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 23, 0, 0, 0, time.Local)
	setClock(svc, base)

	_, err := svc.Activate(ctx, "Deep Work")
	require.NoError(t, err)
	_, err = svc.Activate(ctx, "Exercise") // 8h, crosses midnight
	require.NoError(t, err)

	rec, err := svc.ClaimCombo(ctx, "Mind and Body")
	require.NoError(t, err)
	require.NotNil(t, rec)

	// Two hours later it is a new local day; Deep Work (4h) is still active,
	// so the combo can be claimed again.
	setClock(svc, base.Add(2*time.Hour))
	rec, err = svc.ClaimCombo(ctx, "Mind and Body")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestDefineCombo_ResolvesRefsByName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	combo, err := svc.DefineCombo(ctx, "Night Shift", 6*time.Hour, 40,
		[]string{"Deep Work", "All-Nighter"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"buff-deep-work", "debuff-all-nighter"}, combo.RequiredIDs)

	_, err = svc.DefineCombo(ctx, "Broken", time.Hour, 10, []string{"Deep Work", "No Such"})
	assert.Error(t, err)
}
