package store

import "context"

// Summary holds table counts for the stats command.
type Summary struct {
	LedgerEntries int `json:"ledger_entries"`
	EffectDefs    int `json:"effect_definitions"`
	Activations   int `json:"effect_activations"`
	Achievements  int `json:"achievement_definitions"`
	Unlocks       int `json:"achievement_unlocks"`
	Combos        int `json:"combo_definitions"`
	ComboClaims   int `json:"combo_activations"`
	MigrationsRun int `json:"migrations_run"`
}

// GetSummary returns store-wide counts.
func (db *DB) GetSummary(ctx context.Context) (Summary, error) {
	var s Summary
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM xp_ledger),
			(SELECT COUNT(*) FROM effect_definitions),
			(SELECT COUNT(*) FROM effect_activations),
			(SELECT COUNT(*) FROM achievement_definitions),
			(SELECT COUNT(*) FROM achievement_unlocks),
			(SELECT COUNT(*) FROM combo_definitions),
			(SELECT COUNT(*) FROM combo_activations),
			(SELECT COUNT(*) FROM schema_migrations)
	`).Scan(&s.LedgerEntries, &s.EffectDefs, &s.Activations, &s.Achievements,
		&s.Unlocks, &s.Combos, &s.ComboClaims, &s.MigrationsRun)
	return s, err
}
