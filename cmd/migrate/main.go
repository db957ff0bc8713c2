package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/config"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	action := flag.String("action", "up", "Migration action: up, down, version, force")
	steps := flag.Int("steps", 1, "Migrations to roll back (down) or version to record (force)")
	flag.Parse()

	_ = godotenv.Load()

	logger := config.NewLogger(os.Getenv("ENV"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is required")
	}

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	db, err := database.OpenSQL(context.Background(), dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db, connConfig.Database, database.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	logger = logger.With(slog.String("database", connConfig.Database), slog.String("action", *action))

	switch *action {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}

	case "down":
		if err := migrator.Down(*steps); err != nil {
			return err
		}

	case "version":
		// reported below

	case "force":
		if err := migrator.Force(*steps); err != nil {
			return err
		}

	default:
		return fmt.Errorf("invalid action: %s (use: up, down, version, force)", *action)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		logger.Warn("schema is dirty, fix the failed migration and run -action force",
			slog.Uint64("version", uint64(version)))
		return nil
	}

	logger.Info("schema current", slog.Uint64("version", uint64(version)))
	return nil
}
