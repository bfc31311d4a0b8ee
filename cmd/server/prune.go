package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/repository"
)

var pruneSchedule string

var pruneCmd = &cobra.Command{
	Use:   "prune-tokens",
	Short: "Delete expired refresh tokens",
	Long: `Delete expired refresh tokens once, or repeatedly when --schedule
is given a standard cron expression, e.g. "0 3 * * *".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		jwtSvc, err := auth.NewJWTService(cfg.JWTSecret, 0)
		if err != nil {
			return err
		}
		svc := auth.NewRefreshTokenService(repository.NewTokenRepo(db), jwtSvc)

		if pruneSchedule == "" {
			return prune(ctx, svc)
		}

		c := cron.New()
		if _, err := c.AddFunc(pruneSchedule, func() {
			if err := prune(ctx, svc); err != nil {
				log.Error().Err(err).Msg("prune refresh tokens")
			}
		}); err != nil {
			return err
		}
		c.Start()
		log.Info().Str("schedule", pruneSchedule).Msg("token pruning scheduled")
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

func prune(ctx context.Context, svc *auth.RefreshTokenService) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	n, err := svc.PruneExpired(ctx)
	if err != nil {
		return err
	}
	log.Info().Int64("deleted", n).Msg("expired refresh tokens pruned")
	return nil
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringVar(&pruneSchedule, "schedule", "", "cron expression; empty runs once")
}
