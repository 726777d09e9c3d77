package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/masonjarrr/goal-game/internal/game"
	"github.com/masonjarrr/goal-game/internal/store"
)

var allTools = []Tool{
	{
		Name:        "character_status",
		Description: "Current character state: name, level, title, total XP, active effects, and the derived stat vector.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "activate_effect",
		Description: "Activate a buff or debuff by id or name. Buffs earn XP and renew the effect's streak.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"effect": map[string]any{"type": "string", "description": "Effect definition id or name"},
			},
			"required": []string{"effect"},
		},
	},
	{
		Name:        "deactivate_effect",
		Description: "Manually end an active effect before it expires.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"activation_id": map[string]any{"type": "integer", "description": "Activation id from character_status"},
			},
			"required": []string{"activation_id"},
		},
	},
	{
		Name:        "streak",
		Description: "Consecutive-day activation streak for one effect definition.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"effect": map[string]any{"type": "string", "description": "Effect definition id or name"},
			},
			"required": []string{"effect"},
		},
	},
	{
		Name:        "record_progress",
		Description: "Add progress to an achievement counter (e.g. steps_completed). Returns any newly unlocked achievements.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"source": map[string]any{"type": "string", "description": "Progress counter name"},
				"amount": map[string]any{"type": "integer", "description": "Amount to add (default 1)"},
			},
			"required": []string{"source"},
		},
	},
	{
		Name:        "combo_status",
		Description: "Readiness of a combo: which required effects are active within the window, progress %, and whether it can be claimed today.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"combo": map[string]any{"type": "string", "description": "Combo id or name"},
			},
			"required": []string{"combo"},
		},
	},
	{
		Name:        "claim_combo",
		Description: "Claim a ready combo for its XP bonus. At most one claim per combo per day; a no-op when not ready.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"combo": map[string]any{"type": "string", "description": "Combo id or name"},
			},
			"required": []string{"combo"},
		},
	},
	{
		Name:        "upcoming_expiries",
		Description: "Read-only expiry timestamps of active effects, for an external reminder scheduler. Nothing is sent from here.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"within_minutes": map[string]any{"type": "integer", "description": "Look-ahead window (default 60)"},
			},
		},
	},
}

// dispatch routes a tool call to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "character_status":
		return s.handleCharacterStatus(ctx)
	case "activate_effect":
		return s.handleActivateEffect(ctx, args)
	case "deactivate_effect":
		return s.handleDeactivateEffect(ctx, args)
	case "streak":
		return s.handleStreak(ctx, args)
	case "record_progress":
		return s.handleRecordProgress(ctx, args)
	case "combo_status":
		return s.handleComboStatus(ctx, args)
	case "claim_combo":
		return s.handleClaimCombo(ctx, args)
	case "upcoming_expiries":
		return s.handleUpcomingExpiries(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) handleCharacterStatus(ctx context.Context) (any, error) {
	ch, err := s.svc.Character(ctx)
	if err != nil {
		return nil, err
	}
	effects, err := s.svc.ActiveEffects(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"character":      ch,
		"active_effects": effects,
		"stats":          game.AggregateStats(effects),
	}, nil
}

func (s *Server) handleActivateEffect(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Effect string `json:"effect"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Effect == "" {
		return nil, fmt.Errorf("effect is required")
	}
	return s.svc.Activate(ctx, p.Effect)
}

func (s *Server) handleDeactivateEffect(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		ActivationID int64 `json:"activation_id"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.ActivationID == 0 {
		return nil, fmt.Errorf("activation_id is required")
	}
	if err := s.svc.Deactivate(ctx, p.ActivationID); err != nil {
		return nil, err
	}
	return map[string]any{"deactivated": p.ActivationID}, nil
}

func (s *Server) handleStreak(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Effect string `json:"effect"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Effect == "" {
		return nil, fmt.Errorf("effect is required")
	}
	streak, err := s.svc.CurrentStreak(ctx, p.Effect)
	if err != nil {
		return nil, err
	}
	return map[string]any{"effect": p.Effect, "streak": streak}, nil
}

func (s *Server) handleRecordProgress(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Source string `json:"source"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	source, err := game.ParseSource(p.Source)
	if err != nil {
		return nil, err
	}
	if p.Amount <= 0 {
		p.Amount = 1
	}
	unlocked, err := s.svc.Increment(ctx, source, p.Amount)
	if err != nil {
		return nil, err
	}
	if unlocked == nil {
		unlocked = []string{}
	}
	return map[string]any{"source": p.Source, "unlocked": unlocked}, nil
}

func (s *Server) handleComboStatus(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Combo string `json:"combo"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Combo == "" {
		return nil, fmt.Errorf("combo is required")
	}
	return s.svc.ComboStatus(ctx, p.Combo)
}

func (s *Server) handleClaimCombo(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Combo string `json:"combo"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Combo == "" {
		return nil, fmt.Errorf("combo is required")
	}
	rec, err := s.svc.ClaimCombo(ctx, p.Combo)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return map[string]any{"claimed": false}, nil
	}
	return map[string]any{"claimed": true, "activation": rec}, nil
}

func (s *Server) handleUpcomingExpiries(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		WithinMinutes int `json:"within_minutes"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.WithinMinutes <= 0 {
		p.WithinMinutes = 60
	}
	expiries, err := s.svc.UpcomingExpiries(ctx, time.Duration(p.WithinMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	if expiries == nil {
		expiries = []store.Expiry{}
	}
	return map[string]any{"expiries": expiries, "count": len(expiries)}, nil
}
