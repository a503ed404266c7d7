package db

import (
	"context"
	"fmt"
)

// HasImport reports whether a file with this content hash was imported before
func (db *DB) HasImport(ctx context.Context, fileHash string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM import_log WHERE file_hash = ?)", fileHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check import log: %w", err)
	}
	return exists, nil
}

// RecordImport remembers an imported file so it is skipped next time
func (db *DB) RecordImport(ctx context.Context, filePath, fileHash string, sessions int) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO import_log (file_path, file_hash, sessions_imported)
		VALUES (?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			file_path = excluded.file_path,
			sessions_imported = excluded.sessions_imported,
			imported_at = CURRENT_TIMESTAMP
	`, filePath, fileHash, sessions)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}
