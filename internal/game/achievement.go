package game

import (
	"context"
	"fmt"

	"github.com/masonjarrr/goal-game/internal/store"
)

// Source names a known progress counter. Modeled as a closed set rather than
// free text so a typo fails at parse time, not silently at runtime.
type Source string

const (
	SourceStepsCompleted Source = "steps_completed"
	SourceBuffsActivated Source = "buffs_activated"
	SourceCombosClaimed  Source = "combos_claimed"
	SourceCharacterLevel Source = "character_level"
	SourceTotalXP        Source = "total_xp"
)

var knownSources = map[Source]bool{
	SourceStepsCompleted: true,
	SourceBuffsActivated: true,
	SourceCombosClaimed:  true,
	SourceCharacterLevel: true,
	SourceTotalXP:        true,
}

// ParseSource validates a user-supplied source name.
func ParseSource(s string) (Source, error) {
	if !knownSources[Source(s)] {
		return "", fmt.Errorf("unknown progress source %q", s)
	}
	return Source(s), nil
}

// Increment adds amount to every locked count-kind achievement on the source
// and unlocks (paying the reward exactly once) each one whose requirement is
// now met. Returns the newly unlocked ids.
func (s *Service) Increment(ctx context.Context, source Source, amount int64) ([]string, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("increment amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unlocked, err := s.increment(ctx, source, amount)
	if err != nil {
		return nil, err
	}
	if err := s.syncStateCounters(ctx); err != nil {
		return nil, err
	}
	s.flush(ctx)
	return unlocked, nil
}

// CheckThreshold is the state-valued counterpart of Increment: it sets (not
// adds to) the progress of locked threshold-kind achievements on the source.
// Unlock rewards can move the character's level or total XP, so the state
// counters are re-checked before the flush.
func (s *Service) CheckThreshold(ctx context.Context, source Source, value int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlocked, err := s.checkThreshold(ctx, source, value)
	if err != nil {
		return nil, err
	}
	if err := s.syncStateCounters(ctx); err != nil {
		return nil, err
	}
	s.flush(ctx)
	return unlocked, nil
}

// Achievements returns every definition with progress and unlock state.
func (s *Service) Achievements(ctx context.Context) ([]store.AchievementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListAchievements(ctx)
}

func (s *Service) increment(ctx context.Context, source Source, amount int64) ([]string, error) {
	defs, err := s.db.ListLockedBySource(ctx, string(source), store.RequirementCount)
	if err != nil {
		return nil, err
	}
	var unlocked []string
	for _, def := range defs {
		newValue, err := s.db.AddProgress(ctx, def.ID, amount)
		if err != nil {
			return nil, err
		}
		if newValue >= def.RequirementValue {
			done, err := s.unlockAndReward(ctx, def)
			if err != nil {
				return nil, err
			}
			if done {
				unlocked = append(unlocked, def.ID)
			}
		}
	}
	return unlocked, nil
}

func (s *Service) checkThreshold(ctx context.Context, source Source, value int64) ([]string, error) {
	defs, err := s.db.ListLockedBySource(ctx, string(source), store.RequirementThreshold)
	if err != nil {
		return nil, err
	}
	var unlocked []string
	for _, def := range defs {
		newValue, err := s.db.SetProgress(ctx, def.ID, value)
		if err != nil {
			return nil, err
		}
		if newValue >= def.RequirementValue {
			done, err := s.unlockAndReward(ctx, def)
			if err != nil {
				return nil, err
			}
			if done {
				unlocked = append(unlocked, def.ID)
			}
		}
	}
	return unlocked, nil
}

// unlockAndReward records the unlock and then pays the reward, in that
// order: an interruption between the two leaves an unpaid unlock, which is
// recoverable, rather than a paid double-award, which is not.
func (s *Service) unlockAndReward(ctx context.Context, def store.AchievementDefinition) (bool, error) {
	done, err := s.db.InsertUnlock(ctx, def.ID, s.nowMs())
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	if def.XPReward > 0 {
		if err := s.grant(ctx, def.XPReward, "Achievement: "+def.Name, "achievement", def.ID); err != nil {
			return true, err
		}
	}
	return true, nil
}

// syncStateCounters folds the character's state-valued sources (level, total
// XP) into the achievement engine, looping because an unlock reward can push
// the state over the next threshold. Each unlock fires at most once, so the
// loop terminates.
func (s *Service) syncStateCounters(ctx context.Context) error {
	for {
		ch, err := s.db.GetCharacter(ctx)
		if err != nil {
			return err
		}
		byLevel, err := s.checkThreshold(ctx, SourceCharacterLevel, int64(ch.Level))
		if err != nil {
			return err
		}
		byXP, err := s.checkThreshold(ctx, SourceTotalXP, ch.TotalXP)
		if err != nil {
			return err
		}
		if len(byLevel)+len(byXP) == 0 {
			return nil
		}
	}
}
