package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/server"
	"github.com/spf13/cobra"

	_ "github.com/dar44/reserva-municipal-sub001/docs"
)

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the email worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger.Info("Starting Reservas Municipales")

			database, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()
			logger.Info("Database connected")

			if !skipMigrations {
				if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
					return err
				}
				logger.Info("Migrations completed")
			}

			a, err := newApp(cfg, database)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go a.email.Start(ctx)

			srv := server.New(cfg, a.handlers(), a.email)

			serverErrChan := make(chan error, 1)
			go func() {
				logger.Infof("Server starting on port %s", cfg.Port)
				if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErrChan <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case sig := <-sigChan:
				logger.Infof("Received signal: %v", sig)
			case err := <-serverErrChan:
				logger.Errorf("Server error: %v", err)
			}

			logger.Info("Shutting down gracefully...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("Error during server shutdown: %v", err)
			}

			logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}
