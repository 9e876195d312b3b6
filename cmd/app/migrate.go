package main

import (
	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			database, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
				return err
			}
			logger.Info("Migrations completed", "path", cfg.MigrationsPath)
			return nil
		},
	}
}
