package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var combosCmd = &cobra.Command{
	Use:   "combos [combo]",
	Short: "List combos, or show one combo's readiness",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		ctx := context.Background()
		if len(args) == 1 {
			status, err := svc.ComboStatus(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s — %d%%\n", status.Name, status.Progress)
			fmt.Printf("Requires: %s\n", strings.Join(status.RequiredNames, ", "))
			if status.IsReady {
				fmt.Printf("Ready to claim: goalgame claim %q\n", status.Name)
			} else if status.LastActivated != nil {
				fmt.Printf("Last claimed: %s\n", time.UnixMilli(*status.LastActivated).Format("2006-01-02 15:04"))
			}
			return nil
		}

		combos, err := svc.Combos(ctx)
		if err != nil {
			return fmt.Errorf("combos: %w", err)
		}
		if len(combos) == 0 {
			fmt.Println("No combos defined.")
			return nil
		}
		for _, c := range combos {
			window := time.Duration(c.TimeWindow) * time.Millisecond
			fmt.Printf("%s (%s) — %d effects within %s, +%d XP\n",
				c.Name, c.ID, len(c.RequiredIDs), window, c.BonusXP)
		}
		return nil
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim <combo>",
	Short: "Claim a ready combo for its XP bonus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		rec, err := svc.ClaimCombo(context.Background(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Println("Combo is not ready (or already claimed today).")
			return nil
		}
		fmt.Printf("Combo claimed with %d active effects.\n", len(rec.ActivationsUsed))
		return nil
	},
}

var comboBonusXP int64

var defineComboCmd = &cobra.Command{
	Use:   "define-combo <name> <window> <effect> <effect>...",
	Short: "Create a combo over existing effects",
	Long: `Create a combo that pays a bonus when all the named effects are active
within the time window.

Example:
  goalgame define-combo "Full Stack Day" 12h "Deep Work" Exercise --bonus 75`,
	Args: cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("parse window %q: %w", args[1], err)
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		combo, err := svc.DefineCombo(context.Background(), args[0], window, comboBonusXP, args[2:])
		if err != nil {
			return fmt.Errorf("define combo: %w", err)
		}
		fmt.Printf("Defined combo %q (id %s): %d effects within %s, +%d XP\n",
			combo.Name, combo.ID, len(combo.RequiredIDs), window, combo.BonusXP)
		return nil
	},
}

func init() {
	defineComboCmd.Flags().Int64Var(&comboBonusXP, "bonus", 50, "Bonus XP paid per claim")
	rootCmd.AddCommand(combosCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(defineComboCmd)
}
