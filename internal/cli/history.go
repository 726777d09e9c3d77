package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent XP ledger entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		entries, err := svc.History(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No XP recorded yet.")
			return nil
		}
		for _, e := range entries {
			when := time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04")
			fmt.Printf("%s  %+5d XP  %s\n", when, e.Amount, e.Reason)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}
