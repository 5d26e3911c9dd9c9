// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

/*
database_schema.go - Database Schema Management

Tables:
  - users: Accounts with their configured target language
  - raw_content_events: Ephemeral interaction ticks reported by integrations,
    consumed by the batch translator
  - content_labels: One shared label per distinct content item, enriched
    asynchronously (queued -> processing -> completed | failed)
  - user_content_label_policies: Per-user allow/block rules per content key
  - language_activities: Finalized or in-progress time records that earn
    experience
  - experience_ledger: Append-only running-total experience snapshots
  - pending_work: (user, content key) pairs with unprocessed events

Schema Strategy (Pre-Release):
All columns are defined in the initial CREATE TABLE statement. Single source
of truth, no migrations to run at startup. Post-release, versioned migrations
would be introduced to evolve the schema without losing data.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			target_language_code TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Raw interaction ticks. Rows are deleted once folded into a
		// session, discarded as too-short noise, or removed by
		// language-mismatch cleanup.
		`CREATE TABLE IF NOT EXISTS raw_content_events (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			content_key TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			is_waiting_on_labeling BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// One label per distinct content item system-wide.
		`CREATE TABLE IF NOT EXISTS content_labels (
			id UUID PRIMARY KEY,
			content_key TEXT NOT NULL UNIQUE,
			stage TEXT NOT NULL,
			content_source TEXT NOT NULL,
			content_url TEXT,
			content_media_type TEXT,
			title TEXT,
			author_name TEXT,
			description TEXT,
			thumbnail_url TEXT,
			full_duration_ms BIGINT,
			content_language_code TEXT,
			language_evidence TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			processed_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS user_content_label_policies (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			content_key TEXT NOT NULL,
			policy_kind TEXT NOT NULL,
			content_source TEXT NOT NULL,
			content_url TEXT,
			label TEXT,
			note TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, content_key)
		)`,

		`CREATE TABLE IF NOT EXISTS language_activities (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			user_target_language_code TEXT NOT NULL,
			content_key TEXT,
			language_code TEXT NOT NULL,
			state TEXT NOT NULL,
			title TEXT NOT NULL,
			duration_seconds BIGINT NOT NULL DEFAULT 0,
			occurred_at TIMESTAMP NOT NULL,
			is_manually_tracked BOOLEAN NOT NULL DEFAULT false,
			awarded_experience BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Append-only. Each row carries the running total and derived level
		// state so readers never re-derive from history.
		`CREATE TABLE IF NOT EXISTS experience_ledger (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			language_activity_id UUID,
			delta_experience BIGINT NOT NULL,
			total_experience BIGINT NOT NULL,
			new_level INTEGER NOT NULL,
			remainder_towards_next_level BIGINT NOT NULL,
			next_level_cost BIGINT NOT NULL,
			reason TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Work queue drained by the batch translator. Upserted on every
		// event write, deleted when a group is fully consumed.
		`CREATE TABLE IF NOT EXISTS pending_work (
			user_id UUID NOT NULL,
			content_key TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, content_key)
		)`,
	}
}

// createIndexes creates indexes for frequently filtered columns and the
// composite access paths the translator and reconciler use.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_user_content ON raw_content_events (user_id, content_key, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_content_key ON raw_content_events (content_key)`,
		`CREATE INDEX IF NOT EXISTS idx_labels_stage ON content_labels (stage)`,
		`CREATE INDEX IF NOT EXISTS idx_policies_user ON user_content_label_policies (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user ON language_activities (user_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_state ON language_activities (user_id, content_key, state)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON experience_ledger (user_id, created_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
