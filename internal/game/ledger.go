package game

import (
	"context"
	"fmt"

	"github.com/masonjarrr/goal-game/internal/store"
)

// LevelResult reports the character state after an XP grant or deduction.
type LevelResult struct {
	NewTotal  int64  `json:"new_total"`
	LeveledUp bool   `json:"leveled_up"`
	NewLevel  int    `json:"new_level"`
	NewTitle  string `json:"new_title"`
}

// Grant adds XP, recomputes level and title, and appends one ledger entry.
// State-valued achievement sources (level, total XP) are re-checked in the
// same durable unit.
func (s *Service) Grant(ctx context.Context, amount int64, reason, sourceKind, sourceID string) (LevelResult, error) {
	if amount < 0 {
		return LevelResult{}, fmt.Errorf("grant amount cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	startLevel, err := s.characterLevel(ctx)
	if err != nil {
		return LevelResult{}, err
	}
	if err := s.grant(ctx, amount, reason, sourceKind, sourceID); err != nil {
		return LevelResult{}, err
	}
	if err := s.syncStateCounters(ctx); err != nil {
		return LevelResult{}, err
	}
	s.flush(ctx)
	return s.levelResult(ctx, startLevel)
}

// Deduct is the signed inverse of Grant; total XP never drops below zero and
// the ledger records the clamped delta so the running-sum invariant holds.
func (s *Service) Deduct(ctx context.Context, amount int64, reason, sourceKind, sourceID string) (LevelResult, error) {
	if amount < 0 {
		return LevelResult{}, fmt.Errorf("deduct amount cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	startLevel, err := s.characterLevel(ctx)
	if err != nil {
		return LevelResult{}, err
	}

	ch, err := s.db.GetCharacter(ctx)
	if err != nil {
		return LevelResult{}, err
	}
	applied := amount
	if applied > ch.TotalXP {
		applied = ch.TotalXP
	}
	newTotal := ch.TotalXP - applied
	newLevel := LevelForXP(newTotal)
	if err := s.db.UpdateCharacter(ctx, newTotal, newLevel, TitleForLevel(newLevel)); err != nil {
		return LevelResult{}, err
	}
	if _, err := s.db.AppendLedger(ctx, -applied, reason, sourceKind, sourceID); err != nil {
		return LevelResult{}, err
	}
	if err := s.syncStateCounters(ctx); err != nil {
		return LevelResult{}, err
	}
	s.flush(ctx)
	return s.levelResult(ctx, startLevel)
}

// Character returns the singleton character row. Reads take the writer lock
// too, so a caller never observes the middle of a mutating call.
func (s *Service) Character(ctx context.Context) (*store.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.GetCharacter(ctx)
}

// Rename sets the character's display name.
func (s *Service) Rename(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.RenameCharacter(ctx, name); err != nil {
		return err
	}
	s.flush(ctx)
	return nil
}

// History returns recent ledger entries, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListLedger(ctx, limit)
}

// grant applies one XP delta. Caller holds the lock and is responsible for
// the flush; used internally by activations, streak bonuses, achievement
// rewards, and combo bonuses.
func (s *Service) grant(ctx context.Context, amount int64, reason, sourceKind, sourceID string) error {
	ch, err := s.db.GetCharacter(ctx)
	if err != nil {
		return err
	}
	newTotal := ch.TotalXP + amount
	newLevel := LevelForXP(newTotal)
	if err := s.db.UpdateCharacter(ctx, newTotal, newLevel, TitleForLevel(newLevel)); err != nil {
		return err
	}
	_, err = s.db.AppendLedger(ctx, amount, reason, sourceKind, sourceID)
	return err
}

func (s *Service) characterLevel(ctx context.Context) (int, error) {
	ch, err := s.db.GetCharacter(ctx)
	if err != nil {
		return 0, err
	}
	return ch.Level, nil
}

func (s *Service) levelResult(ctx context.Context, startLevel int) (LevelResult, error) {
	ch, err := s.db.GetCharacter(ctx)
	if err != nil {
		return LevelResult{}, err
	}
	return LevelResult{
		NewTotal:  ch.TotalXP,
		LeveledUp: ch.Level > startLevel,
		NewLevel:  ch.Level,
		NewTitle:  ch.Title,
	}, nil
}
