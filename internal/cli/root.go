package cli

import (
	"fmt"
	"os"

	"github.com/masonjarrr/goal-game/internal/config"
	"github.com/masonjarrr/goal-game/internal/game"
	"github.com/masonjarrr/goal-game/internal/locate"
	"github.com/masonjarrr/goal-game/internal/store"
	"github.com/spf13/cobra"
)

var (
	contextFlag string
	cfgFile     string
	cfg         config.Config
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "goalgame",
	Short: "Gamified life tracking in a local SQLite database",
	Long: `goalgame turns habits and tasks into an RPG character: activating buffs
earns XP, consecutive days build streaks, and achievements and combos pay
bonuses. All state lives in a local SQLite database.

Run 'goalgame init' in a project directory to create a local game, or use
the default game under ~/.goalgame. Run 'goalgame status' to see your
character.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&contextFlag, "context", "", "Named game context (e.g. 'work', 'personal')")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.goalgame/config.toml)")
}

func initConfig() {
	path := cfgFile
	if path == "" {
		p, _ := locate.ConfigPath()
		path = p
	}
	var err error
	cfg, err = config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load error: %v\n", err)
		cfg = config.Default()
	}
}

// openDB opens the store for the current context.
func openDB() (*store.DB, string, error) {
	dbPath, err := locate.FindProjectDB(contextFlag)
	if err != nil {
		return nil, "", fmt.Errorf("find db: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open db %s: %w", dbPath, err)
	}
	return db, dbPath, nil
}

// openService opens the store and wraps it in the game engine.
func openService() (*game.Service, string, error) {
	db, dbPath, err := openDB()
	if err != nil {
		return nil, "", err
	}
	return game.NewService(db), dbPath, nil
}
