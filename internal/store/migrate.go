package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on every Open; statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		request_id    TEXT    NOT NULL,
		origin        TEXT    NOT NULL DEFAULT '',
		action        TEXT    NOT NULL,
		user_id       TEXT    NOT NULL DEFAULT '',
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT    NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS request_events_created_at ON request_events (created_at)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence   INTEGER NOT NULL UNIQUE,
		attempt_id TEXT    NOT NULL UNIQUE,
		user_id    TEXT    NOT NULL,
		course_id  TEXT    NOT NULL,
		topic_id   TEXT    NOT NULL,
		total      INTEGER NOT NULL,
		attempted  INTEGER NOT NULL,
		correct    INTEGER NOT NULL,
		answers    TEXT    NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_attempts_topic ON quiz_attempts (user_id, course_id, topic_id)`,
	`CREATE TABLE IF NOT EXISTS pending_completions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT    NOT NULL,
		course_id   TEXT    NOT NULL,
		topic_id    TEXT    NOT NULL,
		attempts    INTEGER NOT NULL DEFAULT 1,
		last_error  TEXT    NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL,
		resolved_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS pending_completions_user ON pending_completions (user_id, resolved_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
