package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/masonjarrr/goal-game/internal/locate"
	"github.com/masonjarrr/goal-game/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check goalgame installation health",
	RunE: func(cmd *cobra.Command, args []string) error {
		allOK := true

		check := func(label string, ok bool, detail string) {
			if ok {
				fmt.Printf("[OK] %s\n", label)
			} else {
				fmt.Printf("[FAIL] %s: %s\n", label, detail)
				allOK = false
			}
		}

		// 1. Storage path
		dbPath, err := locate.FindProjectDB(contextFlag)
		check("Storage path: "+dbPath, err == nil, fmt.Sprintf("%v", err))

		// 2. Database writable
		db, dbErr := store.Open(dbPath)
		check("Database writable", dbErr == nil, fmt.Sprintf("%v", dbErr))
		if dbErr != nil {
			printDoctorResult(allOK)
			return nil
		}
		defer db.Close()

		ctx := context.Background()

		// 3. WAL mode
		var journalMode string
		_ = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		check("WAL mode enabled", journalMode == "wal", "journal_mode="+journalMode)

		// 4. Integrity
		intErr := db.Check(ctx)
		check("Integrity check", intErr == nil, fmt.Sprintf("%v", intErr))

		// 5. Migration ledger
		keys, migErr := db.AppliedMigrations(ctx)
		check(fmt.Sprintf("Migration ledger (%d applied)", len(keys)), migErr == nil, fmt.Sprintf("%v", migErr))

		// 6. Sidecar ledger agrees with the database
		sideOK, sideDetail := checkSidecarLedger(db.Path(), keys)
		check("Sidecar migration ledger", sideOK, sideDetail)

		fmt.Println()
		printDoctorResult(allOK)

		if allOK {
			fmt.Println("\nTo expose the game to an agent over stdio:")
			fmt.Println("  goalgame serve")
		}

		if !allOK {
			os.Exit(1)
		}
		return nil
	},
}

// checkSidecarLedger verifies that every key the database recorded also
// appears in the sidecar file. The sidecar may be missing entirely (an old
// install, or a copied database); that is reported but not a failure.
func checkSidecarLedger(dbPath string, applied []string) (bool, string) {
	data, err := os.ReadFile(dbPath + ".migrations")
	if os.IsNotExist(err) {
		return true, ""
	}
	if err != nil {
		return false, fmt.Sprintf("%v", err)
	}
	have := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			have[line] = true
		}
	}
	for _, key := range applied {
		if !have[key] {
			return false, fmt.Sprintf("key %s missing from sidecar", key)
		}
	}
	return true, ""
}

func printDoctorResult(allOK bool) {
	if allOK {
		fmt.Println("All checks passed. goalgame is ready.")
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
