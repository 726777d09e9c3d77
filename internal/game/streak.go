package game

import (
	"context"
	"fmt"
	"time"
)

// streakLookbackDays bounds the activation-date scan. Streak-dependent
// bonuses cap well below this window.
const streakLookbackDays = 30

// CurrentStreak returns the count of consecutive local calendar days on which
// the definition (resolved by id or name) has at least one activation. A
// streak renewed yesterday but not yet today still counts until the day
// fully elapses.
func (s *Service) CurrentStreak(ctx context.Context, ref string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.db.FindEffectDefinition(ctx, ref)
	if err != nil {
		return 0, err
	}
	if def == nil {
		return 0, fmt.Errorf("effect %q not found", ref)
	}
	return s.currentStreak(ctx, def.ID, s.now())
}

// currentStreak walks backward one day at a time from today (or yesterday)
// through the distinct set of activation days, stopping at the first gap.
// Caller holds the lock.
func (s *Service) currentStreak(ctx context.Context, definitionID string, now time.Time) (int, error) {
	since := now.AddDate(0, 0, -streakLookbackDays)
	times, err := s.db.ListActivationTimes(ctx, definitionID, since.UnixMilli())
	if err != nil {
		return 0, err
	}

	days := make(map[string]bool, len(times))
	for _, ms := range times {
		days[dayKey(ms)] = true
	}

	cur := now.Local()
	if !days[cur.Format(localDay)] {
		cur = cur.AddDate(0, 0, -1)
		if !days[cur.Format(localDay)] {
			return 0, nil
		}
	}

	streak := 0
	for days[cur.Format(localDay)] {
		streak++
		cur = cur.AddDate(0, 0, -1)
	}
	return streak, nil
}
