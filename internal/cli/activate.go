package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate <effect>",
	Short: "Activate a buff or debuff by id or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		res, err := svc.Activate(context.Background(), args[0])
		if err != nil {
			return err
		}

		expires := time.UnixMilli(res.ExpiresAt).Format(time.Kitchen)
		fmt.Printf("Activated %s (%s), expires %s\n", res.Definition, res.Kind, expires)
		if res.XPAwarded > 0 {
			fmt.Printf("  +%d XP\n", res.XPAwarded)
		}
		if res.Streak > 1 {
			fmt.Printf("  Streak: %d days", res.Streak)
			if res.StreakBonusHit {
				fmt.Printf(" — streak bonus!")
			}
			fmt.Println()
		}
		for _, id := range res.UnlockedIDs {
			fmt.Printf("  Achievement unlocked: %s\n", id)
		}
		return nil
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <activation-id>",
	Short: "End an active effect early",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("activation id must be a number: %q", args[0])
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		if err := svc.Deactivate(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Deactivated %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)
}
