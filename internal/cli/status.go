package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/masonjarrr/goal-game/internal/game"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show character state, stats, and active effects",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		ctx := context.Background()
		ch, err := svc.Character(ctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		effects, err := svc.ActiveEffects(ctx)
		if err != nil {
			return fmt.Errorf("active effects: %w", err)
		}

		next := game.XPForLevel(ch.Level + 1)
		fmt.Printf("%s — Level %d %s\n", ch.Name, ch.Level, ch.Title)
		if ch.Level < game.MaxLevel {
			fmt.Printf("XP: %d / %d to next level\n", ch.TotalXP, next)
		} else {
			fmt.Printf("XP: %d (max level)\n", ch.TotalXP)
		}

		stats := game.AggregateStats(effects)
		fmt.Printf("\nStats: STR %d  INT %d  VIT %d  FOC %d  CHA %d\n",
			stats.Strength, stats.Intellect, stats.Vitality, stats.Focus, stats.Charisma)

		if len(effects) == 0 {
			fmt.Println("\nNo active effects.")
			return nil
		}
		fmt.Printf("\nActive effects:\n")
		for _, e := range effects {
			remaining := time.Until(time.UnixMilli(e.Activation.ExpiresAt)).Round(time.Minute)
			fmt.Printf("  [%d] %s (%s) — %s left\n",
				e.Activation.ID, e.Definition.Name, e.Definition.Kind, remaining)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
