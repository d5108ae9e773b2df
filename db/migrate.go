package db

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dialect = "postgres"

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// MigrateUp applies all pending migrations and returns how many ran.
func MigrateUp(db *sql.DB) (int, error) {
	n, err := migrate.Exec(db, dialect, migrationSource(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return n, nil
}

// MigrateDown rolls back at most steps migrations.
func MigrateDown(db *sql.DB, steps int) (int, error) {
	n, err := migrate.ExecMax(db, dialect, migrationSource(), migrate.Down, steps)
	if err != nil {
		return n, fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return n, nil
}

type MigrationStatus struct {
	ID      string
	Applied bool
}

// Status lists every embedded migration and whether it has been applied.
func Status(db *sql.DB) ([]MigrationStatus, error) {
	migrations, err := migrationSource().FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	records, err := migrate.GetMigrationRecords(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration records: %w", err)
	}

	applied := make(map[string]bool, len(records))
	for _, r := range records {
		applied[r.Id] = true
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		statuses = append(statuses, MigrationStatus{ID: m.Id, Applied: applied[m.Id]})
	}
	return statuses, nil
}
