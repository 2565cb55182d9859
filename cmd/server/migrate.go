package main

import (
	"parttime-match/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = lg.Sync() }()

		if err := app.RunMigrations(cmd.Context(), cfg, lg); err != nil {
			lg.Error("migration failed", zap.Error(err))
			return err
		}
		lg.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
