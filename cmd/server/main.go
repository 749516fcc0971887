package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/logger"
	"rental-backend/internal/metrics"
	"rental-backend/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rental-backend",
		Short: "Property rental API",
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, logger and the database shared by every command.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.DBDriver))

	return cfg, log, db, nil
}

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if !skipMigrate {
				if err := database.Migrate(db, log); err != nil {
					return err
				}
			}

			metrics.Register(prometheus.DefaultRegisterer)

			app := server.New(server.Deps{
				Config:   cfg,
				DB:       db,
				Logger:   log,
				Gatherer: prometheus.DefaultGatherer,
			})

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				log.Info("shutting down")
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.Error("shutdown failed", zap.Error(err))
				}
			}()

			log.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
			return app.Listen(":" + cfg.HTTPPort)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on start")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := database.Migrate(db, log); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
