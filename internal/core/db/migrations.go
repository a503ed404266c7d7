package db

import (
	"fmt"
)

// runMigrations applies database migrations for existing databases
func (db *DB) runMigrations() error {
	// Migration 1: Add favicon column to tabs
	if err := db.migration001AddFavicon(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}

	// Migration 2: Index saved sessions by name
	if err := db.migration002NameIndex(); err != nil {
		return fmt.Errorf("migration 002: %w", err)
	}

	return nil
}

// migration001AddFavicon adds the favicon column to databases created before it existed
func (db *DB) migration001AddFavicon() error {
	hasFavicon, err := db.hasColumn("tabs", "favicon")
	if err != nil {
		return err
	}

	if !hasFavicon {
		_, err = db.conn.Exec(`ALTER TABLE tabs ADD COLUMN favicon TEXT NOT NULL DEFAULT '';`)
		if err != nil {
			return fmt.Errorf("add favicon column: %w", err)
		}
	}

	return nil
}

// migration002NameIndex creates a partial index over saved sessions
func (db *DB) migration002NameIndex() error {
	_, err := db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_saved ON sessions(name) WHERE name != '';`)
	if err != nil {
		return fmt.Errorf("create saved index: %w", err)
	}
	return nil
}

func (db *DB) hasColumn(table, column string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
