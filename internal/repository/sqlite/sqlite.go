// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works, and lets tests spin up
// ":memory:" databases with zero setup.
//
// SCHEMA SHAPE:
// Channels and dms share one `conversations` table (a `kind` column tells
// them apart) and therefore one id space; membership and ownership are join
// tables with composite primary keys, which makes the "no duplicate member"
// invariant a database constraint rather than an application promise. All
// messages live in a single table whose AUTOINCREMENT id doubles as the
// system-wide monotonic message id.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only creates the pool — Ping forces a real connection so a
	// bad path or permission problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in progress — important for a
	// web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite for backwards compatibility.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New().
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// AUTOINCREMENT (as opposed to plain INTEGER PRIMARY KEY) guarantees SQLite
// never reuses a rowid after a delete — which is exactly the "ids are never
// reused within a process lifetime" rule for users, conversations and
// messages.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			email           TEXT NOT NULL UNIQUE,
			password_hash   TEXT NOT NULL,
			name_first      TEXT NOT NULL,
			name_last       TEXT NOT NULL,
			handle          TEXT NOT NULL UNIQUE,
			is_global_owner INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id      TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS conversations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL,
			name       TEXT NOT NULL,
			is_public  INTEGER NOT NULL DEFAULT 0,
			creator_id INTEGER NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS members (
			conversation_id INTEGER NOT NULL REFERENCES conversations(id),
			user_id         INTEGER NOT NULL REFERENCES users(id),
			PRIMARY KEY (conversation_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS owners (
			conversation_id INTEGER NOT NULL REFERENCES conversations(id),
			user_id         INTEGER NOT NULL REFERENCES users(id),
			PRIMARY KEY (conversation_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS messages (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id INTEGER NOT NULL REFERENCES conversations(id),
			sender_id       INTEGER NOT NULL,
			body            TEXT NOT NULL,
			time_sent       INTEGER NOT NULL,
			is_pinned       INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(conversation_id, id);

		CREATE TABLE IF NOT EXISTS reacts (
			message_id INTEGER NOT NULL REFERENCES messages(id),
			react_id   INTEGER NOT NULL,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			PRIMARY KEY (message_id, react_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Clear wipes every table and resets the id sequences. Used only by the
// administrative clear operation, which exists for test isolation — the
// no-id-reuse guarantee holds between wipes.
func (db *DB) Clear(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		DELETE FROM reacts;
		DELETE FROM messages;
		DELETE FROM owners;
		DELETE FROM members;
		DELETE FROM conversations;
		DELETE FROM sessions;
		DELETE FROM users;
	`)
	if err != nil {
		return fmt.Errorf("sqlite: clearing database: %w", err)
	}

	// sqlite_sequence only materializes after the first AUTOINCREMENT insert,
	// so this is a separate statement that tolerates a never-written database.
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sqlite_sequence`); err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil
		}
		return fmt.Errorf("sqlite: resetting sequences: %w", err)
	}
	return nil
}
