// Command todo runs the to-do list API and its maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-list/internal/config"
	"github.com/iliyamo/todo-list/internal/database"
	"github.com/iliyamo/todo-list/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:          "todo",
	Short:        "Multi-tenant to-do list API",
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// bootstrap loads configuration, initialises logging and opens the
// database.  The caller closes the returned handle.
func bootstrap(ctx context.Context) (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		return config.Config{}, nil, err
	}
	logger.Init(cfg.LogLevel, !cfg.IsProd())
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, db, nil
}
