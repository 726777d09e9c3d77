package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/masonjarrr/goal-game/internal/game"
	"github.com/spf13/cobra"
)

var (
	grantReason string
	grantDeduct bool
)

var grantCmd = &cobra.Command{
	Use:   "grant <amount>",
	Short: "Manually grant (or deduct) XP",
	Long: `Manually grant XP, e.g. for work done outside tracked effects.

Example:
  goalgame grant 50 --reason "Finished the report"
  goalgame grant 20 --deduct --reason "Skipped workout"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || amount < 0 {
			return fmt.Errorf("amount must be a non-negative number: %q", args[0])
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		ctx := context.Background()
		reason := grantReason
		if reason == "" {
			reason = "Manual adjustment"
		}

		var res game.LevelResult
		verb := "Granted"
		if grantDeduct {
			res, err = svc.Deduct(ctx, amount, reason, "manual", "")
			verb = "Deducted"
		} else {
			res, err = svc.Grant(ctx, amount, reason, "manual", "")
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s %d XP (total %d)\n", verb, amount, res.NewTotal)
		if res.LeveledUp {
			fmt.Printf("Level up! Now level %d %s\n", res.NewLevel, res.NewTitle)
		}
		return nil
	},
}

func init() {
	grantCmd.Flags().StringVar(&grantReason, "reason", "", "Reason recorded in the XP ledger")
	grantCmd.Flags().BoolVar(&grantDeduct, "deduct", false, "Deduct instead of grant")
	rootCmd.AddCommand(grantCmd)
}
