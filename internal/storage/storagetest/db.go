// Package storagetest provides an in-memory SQLite database mirroring the
// MySQL schema, so store logic gets exercised against real SQL in tests.
package storagetest

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login TEXT NOT NULL UNIQUE,
		hashed_password TEXT,
		username TEXT NOT NULL DEFAULT '',
		icon_id INTEGER,
		is_verified BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		icon_id INTEGER,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE memberships (
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, project_id)
	)`,
	`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'assigned',
		indicator TEXT NOT NULL DEFAULT 'green',
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		owner_id INTEGER NOT NULL REFERENCES users(id),
		performer_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
		parent_task_id INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		deadline DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_change DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE password_reset_codes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
}

// Open returns a fresh in-memory database with the full schema applied.
// The single-connection limit keeps every statement on the same in-memory
// instance.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	return db
}

// SeedUser inserts a user row and returns its id.
func SeedUser(t *testing.T, db *sql.DB, login string, admin bool) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO users (login, hashed_password, username, is_verified, is_admin) VALUES (?, ?, ?, TRUE, ?)`,
		login, "x", login, admin)
	if err != nil {
		t.Fatalf("seed user %s: %v", login, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedProject inserts a project row owned by ownerID and returns its id.
func SeedProject(t *testing.T, db *sql.DB, name string, ownerID int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO projects (name, owner_id, created_at) VALUES (?, ?, ?)`,
		name, ownerID, time.Now().UTC())
	if err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return id
}
