package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak <effect>",
	Short: "Show the consecutive-day streak for an effect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		streak, err := svc.CurrentStreak(context.Background(), args[0])
		if err != nil {
			return err
		}
		switch streak {
		case 0:
			fmt.Printf("%s: no current streak\n", args[0])
		case 1:
			fmt.Printf("%s: 1 day\n", args[0])
		default:
			fmt.Printf("%s: %d days\n", args[0], streak)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streakCmd)
}
