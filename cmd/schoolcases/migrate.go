package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/schoolcases/internal/db"
	"github.com/gyeh/schoolcases/internal/exitcode"
	"github.com/gyeh/schoolcases/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the school directory table",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if cfg.SchoolsDSN == "" {
		log.Error().Msg("--schools-dsn or SCHOOLS_DSN is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.SchoolsDSN, false)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.ReferenceError)
	}

	log.Info().Msg("all migrations applied successfully")
	return nil
}
