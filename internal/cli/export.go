package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a snapshot of the game database to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		data, err := db.Export(context.Background())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0600); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Printf("Exported %d bytes to %s\n", len(data), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the game database with a snapshot file",
	Long: `Replaces all game data with the contents of a previously exported
snapshot. The snapshot is validated before any live data is touched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Import(context.Background(), data); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Printf("Imported snapshot from %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
