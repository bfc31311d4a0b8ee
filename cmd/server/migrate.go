package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-list/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.MigrateUp(db); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var downSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.MigrateDown(db, downSteps); err != nil {
			return err
		}
		log.Info().Int("steps", downSteps).Msg("migrations rolled back")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back (0 = all)")
}
