package mongo

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// MigrationDSN builds the golang-migrate connection string: the configured
// URI with the database name as its path. An empty database keeps the URI's
// own path so the migrator targets the same database as the client.
func MigrationDSN(uri, database string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("invalid mongo uri scheme: %q", u.Scheme)
	}
	if database != "" {
		u.Path = "/" + strings.TrimPrefix(database, "/")
	}
	return u.String(), nil
}

// RunMigrations applies all pending migrations from sourceURL
func RunMigrations(uri, database, sourceURL string) error {
	dsn, err := MigrationDSN(uri, database)
	if err != nil {
		return err
	}

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Msg("Database migration: success")
	return nil
}

// RollbackMigrations reverts the last steps migrations
func RollbackMigrations(uri, database, sourceURL string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("invalid rollback steps: %d", steps)
	}

	dsn, err := MigrationDSN(uri, database)
	if err != nil {
		return err
	}

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database migration: nothing to roll back")
			return nil
		}
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	log.Info().Int("steps", steps).Msg("Database migration: rolled back")
	return nil
}
