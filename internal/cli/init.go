package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a project-local game in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(".goalgame", 0755); err != nil {
			return fmt.Errorf("create .goalgame: %w", err)
		}

		gitignore := `# goalgame database (binary, not diff-friendly)
game.db
game-*.db
game.db.migrations
# Snapshot exports are gitignore-exempt so you can commit them
!game-export.db
`
		if err := os.WriteFile(".goalgame/.gitignore", []byte(gitignore), 0644); err != nil {
			return fmt.Errorf("write .gitignore: %w", err)
		}

		// Open once to validate: migrations run and the character is seeded
		db, dbPath, err := openDB()
		if err != nil {
			return err
		}
		db.Close()

		fmt.Printf("Initialized goalgame in .goalgame/\n")
		fmt.Printf("Database: %s\n\n", dbPath)
		fmt.Printf("Try:\n")
		fmt.Printf("  goalgame status\n")
		fmt.Printf("  goalgame activate \"Deep Work\"\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
