package migration

import (
	"database/sql"
	"fmt"
	"sort"
)

// RunMigrations applies every embedded migration that has not run yet.
// Applied versions are tracked in the schema_migrations table.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migration: nil database handle")
	}

	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	); err != nil {
		return fmt.Errorf("migration: create schema_migrations: %w", err)
	}

	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("migration: read embedded migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := migrationApplied(db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := applyMigration(db, name); err != nil {
			return err
		}
	}
	return nil
}

func migrationApplied(db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE version = $1`, version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("migration: check %s: %w", version, err)
	}
	return count > 0, nil
}

func applyMigration(db *sql.DB, version string) error {
	contents, err := embeddedMigrations.ReadFile(migrationsDir + "/" + version)
	if err != nil {
		return fmt.Errorf("migration: read %s: %w", version, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration: begin %s: %w", version, err)
	}
	if _, err := tx.Exec(string(contents)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration: apply %s: %w", version, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration: record %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration: commit %s: %w", version, err)
	}
	return nil
}
