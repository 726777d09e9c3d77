package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/masonjarrr/goal-game/internal/rpc"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON-RPC server (stdio transport)",
	Long:  `Start the goalgame stdio server. Usually auto-spawned by your AI client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, dbPath, err := openService()
		if err != nil {
			return err
		}
		defer svc.DB().Close()

		sched, err := svc.StartSweeper(cfg.SweepInterval())
		if err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
		defer func() { _ = sched.Shutdown() }()

		slog.Info("goalgame server starting", "db", dbPath)
		fmt.Fprintf(os.Stderr, "goalgame server ready (db: %s)\n", dbPath)

		server := rpc.NewServer(svc, cfg.Server.Name, cfg.Server.Version)
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
