package migration

import (
	"fmt"
	"io/fs"
	"sort"
	"time"

	"gorm.io/gorm"
)

// RunMigrations applies all embedded *.up.sql files in lexical order,
// tracking applied versions in schema_migrations. Each migration runs in its
// own transaction.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migration: database handle is required")
	}

	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		return fmt.Errorf("migration: ensure schema_migrations: %w", err)
	}

	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("migration: read embedded migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var count int64
		if err := db.Raw(
			`SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, name,
		).Scan(&count).Error; err != nil {
			return fmt.Errorf("migration: check %s: %w", name, err)
		}
		if count > 0 {
			continue
		}
		if err := apply(db, name); err != nil {
			return err
		}
	}
	return nil
}

func apply(db *gorm.DB, version string) error {
	script, err := embeddedMigrations.ReadFile(migrationsDir + "/" + version)
	if err != nil {
		return fmt.Errorf("migration: read %s: %w", version, err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(script)).Error; err != nil {
			return fmt.Errorf("migration: apply %s: %w", version, err)
		}
		if err := tx.Exec(
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			version, time.Now().UTC(),
		).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", version, err)
		}
		return nil
	})
}
