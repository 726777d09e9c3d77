package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/masonjarrr/goal-game/internal/game"
	"github.com/masonjarrr/goal-game/internal/store"
	"github.com/spf13/cobra"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements with progress and unlock state",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		views, err := svc.Achievements(context.Background())
		if err != nil {
			return fmt.Errorf("achievements: %w", err)
		}
		if len(views) == 0 {
			fmt.Println("No achievements defined.")
			return nil
		}
		for _, v := range views {
			mark := " "
			if v.Unlocked {
				mark = "x"
			}
			fmt.Printf("[%s] %-20s %d/%d (%s, +%d XP)\n",
				mark, v.Name, v.CurrentValue, v.RequirementValue, v.Source, v.XPReward)
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <source> [amount]",
	Short: "Record progress on an achievement counter",
	Long: `Record progress on a named counter, e.g. steps completed toward a goal.

Example:
  goalgame progress steps_completed
  goalgame progress steps_completed 5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := game.ParseSource(args[0])
		if err != nil {
			return err
		}
		amount := int64(1)
		if len(args) == 2 {
			amount, err = strconv.ParseInt(args[1], 10, 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive number: %q", args[1])
			}
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		unlocked, err := svc.Increment(context.Background(), source, amount)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %d on %s\n", amount, source)
		for _, id := range unlocked {
			fmt.Printf("Achievement unlocked: %s\n", id)
		}
		return nil
	},
}

var (
	achKind   string
	achReward int64
)

var defineAchievementCmd = &cobra.Command{
	Use:   "define-achievement <name> <source> <value>",
	Short: "Create an achievement over a progress counter",
	Long: `Create an achievement that unlocks when a counter reaches a value.

Count achievements accumulate recorded events; threshold achievements
track a state value like character_level or total_xp.

Example:
  goalgame define-achievement "Marathon" steps_completed 1000 --reward 200
  goalgame define-achievement "Halfway" character_level 50 --kind threshold --reward 500`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := game.ParseSource(args[1])
		if err != nil {
			return err
		}
		value, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || value <= 0 {
			return fmt.Errorf("value must be a positive number: %q", args[2])
		}
		kind := store.RequirementKind(achKind)
		if kind != store.RequirementCount && kind != store.RequirementThreshold {
			return fmt.Errorf("kind must be count or threshold: %q", achKind)
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		def, err := svc.DefineAchievement(context.Background(), args[0], kind, source, value, achReward)
		if err != nil {
			return fmt.Errorf("define achievement: %w", err)
		}
		fmt.Printf("Defined achievement %q (id %s): %s %s reaches %d, +%d XP\n",
			def.Name, def.ID, def.RequirementKind, def.Source, def.RequirementValue, def.XPReward)
		return nil
	},
}

func init() {
	defineAchievementCmd.Flags().StringVar(&achKind, "kind", "count", "Requirement kind: count or threshold")
	defineAchievementCmd.Flags().Int64Var(&achReward, "reward", 0, "XP paid on unlock")
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(defineAchievementCmd)
}
