package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationScripts embed.FS

// MigrateUp brings the schema to the latest version, running every *.up.sql
// script in version order.
func MigrateUp(db *sql.DB) error {
	return runMigrations(db, ".up.sql", false)
}

// MigrateDown unwinds the schema, running *.down.sql scripts newest first.
func MigrateDown(db *sql.DB) error {
	return runMigrations(db, ".down.sql", true)
}

func runMigrations(db *sql.DB, suffix string, newestFirst bool) error {
	names, err := fs.Glob(migrationScripts, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("storage: list migrations: %w", err)
	}
	sort.Strings(names)
	if newestFirst {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}

	for _, name := range names {
		script, err := migrationScripts.ReadFile(name)
		if err != nil {
			return fmt.Errorf("storage: read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(script)); err != nil {
			return fmt.Errorf("storage: run migration %s: %w", name, err)
		}
	}
	return nil
}
