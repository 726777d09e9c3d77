package game

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/masonjarrr/goal-game/internal/store"
)

const (
	// buffActivationXP is the fixed reward paid for activating a buff
	// (debuffs earn nothing).
	buffActivationXP = 10

	// streakBonusXP is paid once per activation that lands on every 7th
	// consecutive day.
	streakBonusXP   = 25
	streakBonusDays = 7

	// statBaseline is the starting value of every stat before effect deltas.
	statBaseline = 10
)

// ActivateResult reports a new effect activation.
type ActivateResult struct {
	ActivationID   int64            `json:"activation_id"`
	Definition     string           `json:"definition"`
	Kind           store.EffectKind `json:"kind"`
	ExpiresAt      int64            `json:"expires_at"`
	Streak         int              `json:"streak"`
	XPAwarded      int64            `json:"xp_awarded"`
	UnlockedIDs    []string         `json:"unlocked_ids,omitempty"`
	StreakBonusHit bool             `json:"streak_bonus_hit,omitempty"`
}

// Activate creates a timed instance of an effect definition (resolved by id
// or name). Buff activations earn the fixed XP reward and feed the
// buffs_activated counter; every 7th consecutive activation day pays a
// one-time streak bonus tied to this activation.
func (s *Service) Activate(ctx context.Context, ref string) (*ActivateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.db.FindEffectDefinition(ctx, ref)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("effect %q not found", ref)
	}

	now := s.now()
	nowMs := now.UnixMilli()
	id, err := s.db.InsertActivation(ctx, def.ID, nowMs, nowMs+def.Duration)
	if err != nil {
		return nil, err
	}

	res := &ActivateResult{
		ActivationID: id,
		Definition:   def.Name,
		Kind:         def.Kind,
		ExpiresAt:    nowMs + def.Duration,
	}
	activationKey := strconv.FormatInt(id, 10)

	if def.Kind == store.KindBuff {
		if err := s.grant(ctx, buffActivationXP, "Activated "+def.Name, "activation", activationKey); err != nil {
			return nil, err
		}
		res.XPAwarded += buffActivationXP

		unlocked, err := s.increment(ctx, SourceBuffsActivated, 1)
		if err != nil {
			return nil, err
		}
		res.UnlockedIDs = unlocked
	}

	streak, err := s.currentStreak(ctx, def.ID, now)
	if err != nil {
		return nil, err
	}
	res.Streak = streak

	// The bonus is keyed to the definition and local day, so further
	// activations on the same day never re-grant it.
	if streak > 0 && streak%streakBonusDays == 0 {
		bonusKey := def.ID + ":" + dayKey(nowMs)
		paid, err := s.db.HasLedgerEntry(ctx, "streak_bonus", bonusKey)
		if err != nil {
			return nil, err
		}
		if !paid {
			reason := fmt.Sprintf("%d-day streak: %s", streak, def.Name)
			if err := s.grant(ctx, streakBonusXP, reason, "streak_bonus", bonusKey); err != nil {
				return nil, err
			}
			res.XPAwarded += streakBonusXP
			res.StreakBonusHit = true
		}
	}

	if err := s.syncStateCounters(ctx); err != nil {
		return nil, err
	}
	s.flush(ctx)
	return res, nil
}

// Deactivate flips an activation off unconditionally (manual early removal).
func (s *Service) Deactivate(ctx context.Context, activationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeactivateActivation(ctx, activationID); err != nil {
		return err
	}
	s.flush(ctx)
	return nil
}

// SweepExpired deactivates every activation whose expiry has passed. Invoked
// lazily before active-effect reads and by the periodic sweep timer.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep(ctx)
}

func (s *Service) sweep(ctx context.Context) (int64, error) {
	n, err := s.db.SweepExpired(ctx, s.nowMs())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.flush(ctx)
	}
	return n, nil
}

// ActiveEffects sweeps lazily, then returns currently-active effects joined
// with their definitions, newest first.
func (s *Service) ActiveEffects(ctx context.Context) ([]store.ActiveEffect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}
	return s.db.ActiveEffects(ctx, s.nowMs())
}

// AggregateStats derives the current stat vector: a fixed baseline per stat,
// plus every active effect's signed deltas, plus any extra bonus sources
// (equipment, skills, penalties) supplied by the caller, clamped to a
// non-negative floor. Pure: re-derivable at any time, never persisted.
func AggregateStats(effects []store.ActiveEffect, extras ...store.StatBlock) store.StatBlock {
	v := store.StatBlock{
		Strength:  statBaseline,
		Intellect: statBaseline,
		Vitality:  statBaseline,
		Focus:     statBaseline,
		Charisma:  statBaseline,
	}
	for _, e := range effects {
		v = v.Add(e.Definition.Effects)
	}
	for _, extra := range extras {
		v = v.Add(extra)
	}
	return v.Clamp()
}

// UpcomingExpiries exposes scheduled expiry timestamps read-only so an
// external scheduler can fire reminders; nothing here sends notifications.
func (s *Service) UpcomingExpiries(ctx context.Context, within time.Duration) ([]store.Expiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}
	return s.db.UpcomingExpiries(ctx, s.nowMs(), within.Milliseconds())
}
