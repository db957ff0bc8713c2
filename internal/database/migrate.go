package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded template schema
type Migrator struct {
	m *migrate.Migrate
}

type MigratorOption func(*migrate.Migrate)

// WithLogger routes golang-migrate progress output to logger at debug level
func WithLogger(logger *slog.Logger) MigratorOption {
	return func(m *migrate.Migrate) {
		m.Log = migrateLogger{logger: logger}
	}
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool {
	return false
}

// NewMigrator binds the embedded migrations to db. dbName is recorded by the
// postgres driver for its advisory lock.
func NewMigrator(db *sql.DB, dbName string, opts ...MigratorOption) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: dbName})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	for _, opt := range opts {
		opt(m)
	}

	return &Migrator{m: m}, nil
}

// Up applies pending migrations. Being already current is not an error
func (m *Migrator) Up() error {
	if err := ignoreNoChange(m.m.Up()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Down rolls back n migrations, one when n <= 0
func (m *Migrator) Down(n int) error {
	n = max(n, 1)
	if err := ignoreNoChange(m.m.Steps(-n)); err != nil {
		return fmt.Errorf("roll back %d migration(s): %w", n, err)
	}
	return nil
}

// Version reports the applied schema version. A database with no migrations
// reports version 0.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything. Used to clear
// a dirty state after a failed migration has been fixed by hand.
func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force schema version %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
