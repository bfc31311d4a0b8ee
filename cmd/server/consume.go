package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-list/internal/config"
	"github.com/iliyamo/todo-list/internal/logger"
	"github.com/iliyamo/todo-list/internal/queue"
)

var activityDir string

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append task activity events from RabbitMQ to the activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg.LogLevel, !cfg.IsProd())
		if cfg.AMQPURL == "" {
			return errors.New("RABBITMQ_URL or AMQP_URL must be set")
		}
		c := queue.NewConsumer(cfg.AMQPURL, activityDir, log.Logger)
		if err := c.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
	consumeCmd.Flags().StringVar(&activityDir, "dir", "logs", "directory of the activity log")
}
