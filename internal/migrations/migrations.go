package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationFiles holds the versioned schema for series, watermarks and instances.
//
//go:embed *.sql
var MigrationFiles embed.FS

// Latest returns the highest schema version shipped in MigrationFiles.
func Latest() (uint, error) {
	entries, err := fs.ReadDir(MigrationFiles, ".")
	if err != nil {
		return 0, fmt.Errorf("read migration files: %w", err)
	}

	var latest uint
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok || !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("migration %s: bad version prefix: %w", e.Name(), err)
		}
		if uint(v) > latest {
			latest = uint(v)
		}
	}
	return latest, nil
}

// RunMigrations brings the schema up to Latest. With autoMigrate off it only
// reports how far behind the database is.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		if err := forcePrevious(m, version); err != nil {
			return err
		}
	}

	latest, err := Latest()
	if err != nil {
		return err
	}

	if !autoMigrate {
		if version < latest {
			slog.Warn("[Migrations] Schema is behind and auto-migration is disabled",
				"current_version", version,
				"latest_version", latest,
			)
		}
		return nil
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Migrations] Schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("[Migrations] Applied", "from_version", version, "to_version", latest)
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// forcePrevious rolls a dirty version back one step so Up re-applies the
// interrupted file. Every migration uses IF NOT EXISTS.
func forcePrevious(m *migrate.Migrate, dirtyVersion uint) error {
	previous := int(dirtyVersion) - 1
	if previous < 1 {
		previous = database.NilVersion
	}

	slog.Warn("[Migrations] Dirty schema version, forcing previous version",
		"dirty_version", dirtyVersion,
		"forced_to", previous,
	)
	if err := m.Force(previous); err != nil {
		return fmt.Errorf("failed to recover dirty migration %d: %w", dirtyVersion, err)
	}
	return nil
}
