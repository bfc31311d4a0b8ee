package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-list/internal/database"
	"github.com/iliyamo/todo-list/internal/metrics"
	"github.com/iliyamo/todo-list/internal/queue"
	"github.com/iliyamo/todo-list/internal/server"
	"github.com/iliyamo/todo-list/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.AutoMigrate {
			if err := database.MigrateUp(db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
		}

		m := metrics.New()
		m.WatchDB(db, cfg.DBName)

		var events service.EventPublisher = queue.Nop{}
		if cfg.AMQPURL != "" {
			events = queue.NewPublisher(cfg.AMQPURL, m.ObserveEvent)
		} else {
			log.Warn().Msg("RABBITMQ_URL not set; task events are disabled")
		}

		rt, err := server.NewRouter(cfg, db, events, m, log.Logger)
		if err != nil {
			return err
		}
		for _, r := range rt.Routes() {
			log.Debug().Str("method", r.Method).Str("path", r.Pattern).Msg("route")
		}

		e := server.New(server.Deps{
			Router:      rt,
			DB:          db,
			Metrics:     m,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      log.Logger,
		})

		errCh := make(chan error, 1)
		go func() {
			addr := ":" + cfg.Port
			log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
