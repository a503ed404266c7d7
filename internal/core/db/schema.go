package db

func (db *DB) initSchema() error {
	schema := `
	-- Sessions table; position is the order of the stored collection
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		date_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_position ON sessions(position);
	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date_ms);

	-- Windows table
	CREATE TABLE IF NOT EXISTS windows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		window_id INTEGER,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_windows_session_id ON windows(session_id);

	-- Tabs table
	CREATE TABLE IF NOT EXISTS tabs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		window_row INTEGER NOT NULL,
		position INTEGER NOT NULL,
		tab_id INTEGER,
		url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		pinned BOOLEAN NOT NULL DEFAULT 0,
		FOREIGN KEY (window_row) REFERENCES windows(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tabs_window_row ON tabs(window_row);
	CREATE INDEX IF NOT EXISTS idx_tabs_url ON tabs(url);

	-- Page preview thumbnails, keyed by URL
	CREATE TABLE IF NOT EXISTS previews (
		url TEXT PRIMARY KEY,
		image BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Import tracking, one row per imported export file
	CREATE TABLE IF NOT EXISTS import_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL,
		file_hash TEXT NOT NULL UNIQUE,
		sessions_imported INTEGER NOT NULL DEFAULT 0,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- FTS5 index over tab titles and URLs; rowid is tabs.id.
	-- Maintained by SaveSessions, which rewrites it with the collection.
	CREATE VIRTUAL TABLE IF NOT EXISTS tabs_fts USING fts5(
		title,
		url,
		tokenize='unicode61'
	);
	`

	_, err := db.conn.Exec(schema)
	return err
}
