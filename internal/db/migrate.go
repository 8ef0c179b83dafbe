package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the whole
// list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS actions (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		tags              TEXT NOT NULL DEFAULT '[]',
		intent            TEXT NOT NULL DEFAULT '',
		topic             TEXT NOT NULL DEFAULT '',
		location          TEXT NOT NULL DEFAULT '',
		cta_type          TEXT NOT NULL DEFAULT 'learn_more',
		impact            INTEGER NOT NULL DEFAULT 3 CHECK(impact BETWEEN 1 AND 5),
		urgency           INTEGER NOT NULL DEFAULT 3 CHECK(urgency BETWEEN 1 AND 5),
		time_commitment   TEXT NOT NULL DEFAULT '',
		organization_name TEXT NOT NULL DEFAULT '',
		link              TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_actions_topic ON actions(topic COLLATE NOCASE)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_intent ON actions(intent COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS action_events (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		action_id       TEXT NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
		kind            TEXT NOT NULL CHECK(kind IN ('start','complete')),
		impact_reported INTEGER,
		feedback        TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_action_events_user ON action_events(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_action_events_action ON action_events(action_id)`,

	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id                  TEXT PRIMARY KEY,
		preferred_intents        TEXT NOT NULL DEFAULT '[]',
		preferred_topics         TEXT NOT NULL DEFAULT '[]',
		preferred_locations      TEXT NOT NULL DEFAULT '[]',
		total_actions_viewed     INTEGER NOT NULL DEFAULT 0,
		actions_completed        INTEGER NOT NULL DEFAULT 0,
		actions_saved            INTEGER NOT NULL DEFAULT 0,
		total_time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		last_engagement_at       TEXT,
		ratings                  TEXT NOT NULL DEFAULT '{}',
		updated_at               TEXT NOT NULL
	)`,
}
