package store

// migrate creates the schema idempotently and best-effort-upgrades legacy
// databases with columns added after their first release. A failure to add
// a column that already exists is expected and ignored.
func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS captures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			frame_number INTEGER NOT NULL,
			timestamp_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_timestamp_ms ON captures(timestamp_ms)`,
		`CREATE TABLE IF NOT EXISTS captured_windows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			capture_id INTEGER NOT NULL REFERENCES captures(id) ON DELETE CASCADE,
			window_name TEXT,
			app_name TEXT,
			text TEXT,
			confidence REAL,
			ocr_json TEXT,
			image_base64 TEXT,
			image_path TEXT,
			browser_url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_captured_windows_capture_id ON captured_windows(capture_id)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL DEFAULT (CAST((julianday('now') - 2440587.5) * 86400000 AS INTEGER))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at_ms ON chat_messages(created_at_ms)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	// Legacy upgrades: ALTER TABLE ADD COLUMN fails if the column already
	// exists (SQLite has no IF NOT EXISTS form for this); that failure is
	// the expected steady state once a database is current, so it's
	// swallowed rather than surfaced.
	legacyAlters := []string{
		`ALTER TABLE captured_windows ADD COLUMN ocr_json TEXT`,
		`ALTER TABLE captured_windows ADD COLUMN image_path TEXT`,
		`ALTER TABLE captured_windows ADD COLUMN archive_url TEXT`,
	}
	for _, stmt := range legacyAlters {
		s.db.Exec(stmt) //nolint:errcheck
	}

	return nil
}
