package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/masonjarrr/goal-game/internal/store"
	"github.com/spf13/cobra"
)

var defineStats store.StatBlock

var defineCmd = &cobra.Command{
	Use:   "define <name> <buff|debuff> <duration>",
	Short: "Create a buff or debuff template",
	Long: `Create a buff or debuff template with a duration and per-stat deltas.

Example:
  goalgame define "Deep Work" buff 4h --focus 3 --intellect 2
  goalgame define "Junk Food" debuff 6h --vitality -2`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		kind, err := store.ParseEffectKind(args[1])
		if err != nil {
			return err
		}
		duration, err := time.ParseDuration(args[2])
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", args[2], err)
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		def, err := svc.DefineEffect(context.Background(), name, kind, duration, defineStats)
		if err != nil {
			return fmt.Errorf("define effect: %w", err)
		}
		fmt.Printf("Defined %s %q (id %s, duration %s)\n", def.Kind, def.Name, def.ID, duration)
		return nil
	},
}

func init() {
	defineCmd.Flags().IntVar(&defineStats.Strength, "strength", 0, "Strength delta")
	defineCmd.Flags().IntVar(&defineStats.Intellect, "intellect", 0, "Intellect delta")
	defineCmd.Flags().IntVar(&defineStats.Vitality, "vitality", 0, "Vitality delta")
	defineCmd.Flags().IntVar(&defineStats.Focus, "focus", 0, "Focus delta")
	defineCmd.Flags().IntVar(&defineStats.Charisma, "charisma", 0, "Charisma delta")
	rootCmd.AddCommand(defineCmd)
}
