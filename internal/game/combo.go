package game

import (
	"context"
	"fmt"

	"github.com/masonjarrr/goal-game/internal/store"
)

// ComboStatus describes how close a combo is to being claimable.
type ComboStatus struct {
	ComboID       string   `json:"combo_id"`
	Name          string   `json:"name"`
	RequiredNames []string `json:"required_names"`
	ActiveIDs     []string `json:"active_ids"`
	Progress      int      `json:"progress"`
	IsReady       bool     `json:"is_ready"`
	LastActivated *int64   `json:"last_activated,omitempty"`
}

// ComboStatus reports which required definitions currently have an active
// effect activated within the combo's time window, and whether the combo can
// be claimed today.
func (s *Service) ComboStatus(ctx context.Context, ref string) (*ComboStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, _, _, err := s.comboStatus(ctx, ref)
	return status, err
}

// ClaimCombo re-validates readiness inside the same durable unit, then
// records the claim, pays the bonus, and feeds the combos_claimed counter.
// Returns nil (a no-op) when the combo is not ready, including when it was
// already claimed today, so a stale is_ready snapshot can never double-pay.
func (s *Service) ClaimCombo(ctx context.Context, ref string) (*store.ComboActivation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, used, def, err := s.comboStatus(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !status.IsReady {
		return nil, nil
	}

	rec, err := s.db.InsertComboActivation(ctx, def.ID, s.nowMs(), used)
	if err != nil {
		return nil, err
	}
	if def.BonusXP > 0 {
		if err := s.grant(ctx, def.BonusXP, "Combo: "+def.Name, "combo", def.ID); err != nil {
			return nil, err
		}
	}
	if _, err := s.increment(ctx, SourceCombosClaimed, 1); err != nil {
		return nil, err
	}
	if err := s.syncStateCounters(ctx); err != nil {
		return nil, err
	}
	s.flush(ctx)
	return rec, nil
}

// Combos lists every combo definition with its requirements.
func (s *Service) Combos(ctx context.Context) ([]store.ComboDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.ListComboDefinitions(ctx)
}

// comboStatus computes the status and the activation ids that would satisfy
// a claim. Caller holds the lock.
func (s *Service) comboStatus(ctx context.Context, ref string) (*ComboStatus, []int64, *store.ComboDefinition, error) {
	def, err := s.db.GetComboDefinition(ctx, ref)
	if err != nil {
		return nil, nil, nil, err
	}
	if def == nil {
		return nil, nil, nil, fmt.Errorf("combo %q not found", ref)
	}

	now := s.now()
	nowMs := now.UnixMilli()
	if _, err := s.sweep(ctx); err != nil {
		return nil, nil, nil, err
	}
	effects, err := s.db.ActiveEffects(ctx, nowMs)
	if err != nil {
		return nil, nil, nil, err
	}

	// Newest qualifying activation per definition; effects arrive newest first.
	windowStart := nowMs - def.TimeWindow
	activationByDef := make(map[string]int64)
	for _, e := range effects {
		if e.Activation.ActivatedAt < windowStart {
			continue
		}
		if _, seen := activationByDef[e.Activation.DefinitionID]; !seen {
			activationByDef[e.Activation.DefinitionID] = e.Activation.ID
		}
	}

	status := &ComboStatus{ComboID: def.ID, Name: def.Name}
	var used []int64
	for _, reqID := range def.RequiredIDs {
		reqDef, err := s.db.GetEffectDefinition(ctx, reqID)
		if err != nil {
			return nil, nil, nil, err
		}
		if reqDef != nil {
			status.RequiredNames = append(status.RequiredNames, reqDef.Name)
		}
		if id, ok := activationByDef[reqID]; ok {
			status.ActiveIDs = append(status.ActiveIDs, reqID)
			used = append(used, id)
		}
	}
	status.Progress = len(status.ActiveIDs) * 100 / len(def.RequiredIDs)

	dayStart, dayEnd := dayBounds(now)
	claimedToday, err := s.db.HasComboActivationBetween(ctx, def.ID, dayStart, dayEnd)
	if err != nil {
		return nil, nil, nil, err
	}
	status.IsReady = len(status.ActiveIDs) == len(def.RequiredIDs) && !claimedToday

	last, err := s.db.LastComboActivation(ctx, def.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if last != nil {
		status.LastActivated = &last.ActivatedAt
	}
	return status, used, def, nil
}
