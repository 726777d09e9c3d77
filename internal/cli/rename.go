package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename your character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		if err := svc.Rename(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Character renamed to %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
