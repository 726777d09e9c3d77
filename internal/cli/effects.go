package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List all buff and debuff templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		defs, err := svc.Effects(context.Background())
		if err != nil {
			return fmt.Errorf("effects: %w", err)
		}
		if len(defs) == 0 {
			fmt.Println("No effect templates. Use 'goalgame define' to create one.")
			return nil
		}
		for _, d := range defs {
			duration := time.Duration(d.Duration) * time.Millisecond
			fmt.Printf("%-8s %s (%s) — %s\n", d.Kind, d.Name, d.ID, duration)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <effect>",
	Short: "Delete an effect template and its activation log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		if err := svc.DeleteEffect(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed effect %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(effectsCmd)
	rootCmd.AddCommand(removeCmd)
}
