// Package testutil provides an in-memory SQLite database carrying the
// same tables as the MySQL migrations, for repository and service tests.
package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE users (
    id          TEXT     NOT NULL PRIMARY KEY,
    username    TEXT     NOT NULL UNIQUE,
    email       TEXT     NOT NULL UNIQUE,
    password    TEXT     NOT NULL,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);
CREATE TABLE tasks (
    id          INTEGER  PRIMARY KEY AUTOINCREMENT,
    title       TEXT     NOT NULL,
    description TEXT     NULL,
    user_id     TEXT     NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    is_done     INTEGER  NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);
CREATE INDEX idx_tasks_is_done ON tasks (is_done);
CREATE INDEX idx_tasks_user_done_updated ON tasks (user_id, is_done, updated_at);
CREATE TABLE refresh_tokens (
    id          INTEGER  PRIMARY KEY AUTOINCREMENT,
    user_id     TEXT     NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    token_hash  TEXT     NOT NULL UNIQUE,
    expires_at  INTEGER  NOT NULL,
    created_at  DATETIME NOT NULL
);
CREATE INDEX idx_refresh_tokens_expires ON refresh_tokens (expires_at);
`

var seq atomic.Int64

// NewDB opens a fresh, isolated in-memory database with foreign keys
// enforced and the schema applied.  It is closed when the test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:todo_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection keeps the in-memory database alive and serialises writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
