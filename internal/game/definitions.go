package game

import (
	"context"
	"fmt"
	"time"

	"github.com/masonjarrr/goal-game/internal/store"
)

// DefineEffect creates a new buff or debuff template.
func (s *Service) DefineEffect(ctx context.Context, name string, kind store.EffectKind, duration time.Duration, effects store.StatBlock) (*store.EffectDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.db.CreateEffectDefinition(ctx, name, kind, duration, effects)
	if err != nil {
		return nil, err
	}
	s.flush(ctx)
	return def, nil
}

// Effects lists all effect templates.
func (s *Service) Effects(ctx context.Context) ([]store.EffectDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListEffectDefinitions(ctx)
}

// DeleteEffect removes a template (resolved by id or name); its activation
// log cascades with it.
func (s *Service) DeleteEffect(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.db.FindEffectDefinition(ctx, ref)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("effect %q not found", ref)
	}
	if err := s.db.DeleteEffectDefinition(ctx, def.ID); err != nil {
		return err
	}
	s.flush(ctx)
	return nil
}

// DefineAchievement creates a new achievement over a known progress source.
func (s *Service) DefineAchievement(ctx context.Context, name string, kind store.RequirementKind, source Source, value, xpReward int64) (*store.AchievementDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.db.CreateAchievementDefinition(ctx, name, kind, string(source), value, xpReward)
	if err != nil {
		return nil, err
	}
	s.flush(ctx)
	return def, nil
}

// DefineCombo creates a combo over existing effect definitions, each
// resolved by id or name.
func (s *Service) DefineCombo(ctx context.Context, name string, window time.Duration, bonusXP int64, requiredRefs []string) (*store.ComboDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(requiredRefs))
	for _, ref := range requiredRefs {
		def, err := s.db.FindEffectDefinition(ctx, ref)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, fmt.Errorf("effect %q not found", ref)
		}
		ids = append(ids, def.ID)
	}

	combo, err := s.db.CreateComboDefinition(ctx, name, window, bonusXP, ids)
	if err != nil {
		return nil, err
	}
	s.flush(ctx)
	return combo, nil
}
