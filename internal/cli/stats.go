package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show game database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, dbPath, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		summary, err := db.GetSummary(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		fmt.Printf("Storage:        %s\n", dbPath)
		fmt.Printf("Ledger entries: %d\n", summary.LedgerEntries)
		fmt.Printf("Effects:        %d templates, %d activations\n", summary.EffectDefs, summary.Activations)
		fmt.Printf("Achievements:   %d unlocked of %d\n", summary.Unlocks, summary.Achievements)
		fmt.Printf("Combos:         %d defined, %d claimed\n", summary.Combos, summary.ComboClaims)
		fmt.Printf("Migrations:     %d applied\n", summary.MigrationsRun)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
