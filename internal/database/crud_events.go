// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// InsertRawEvent inserts a raw content event. Duplicate ids are silently
// ignored so integration retries stay idempotent. This runs once per tick,
// so the statement goes through the prepared cache.
func (db *DB) InsertRawEvent(ctx context.Context, event *models.RawContentEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO raw_content_events (
		id, user_id, content_key, activity_type, occurred_at, is_waiting_on_labeling, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING`

	stmt, err := db.prepared(ctx, query)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx,
		event.ID, event.UserID, string(event.ContentKey), string(event.ActivityType),
		event.OccurredAt, event.IsWaitingOnLabeling, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert raw event: %w", err)
	}
	return nil
}

// ListEventsForGroup returns the events for one (user, content key) group in
// occurrence order, capped at limit.
func (db *DB) ListEventsForGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey, limit int) ([]models.RawContentEvent, error) {
	query := `SELECT id, user_id, content_key, activity_type, occurred_at, is_waiting_on_labeling, created_at
		FROM raw_content_events
		WHERE user_id = ? AND content_key = ?
		ORDER BY occurred_at ASC, created_at ASC
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, string(key), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeQuietly(rows)

	var events []models.RawContentEvent
	for rows.Next() {
		var e models.RawContentEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.ContentKey, &e.ActivityType,
			&e.OccurredAt, &e.IsWaitingOnLabeling, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEvents removes the given events by id.
func (db *DB) DeleteEvents(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`DELETE FROM raw_content_events WHERE id IN (%s)`, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

// DeleteEventsForGroup removes every event for one (user, content key) pair.
// Used by language-mismatch cleanup and policy-driven purges.
func (db *DB) DeleteEventsForGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey) (int64, error) {
	query := `DELETE FROM raw_content_events WHERE user_id = ? AND content_key = ?`

	res, err := db.conn.ExecContext(ctx, query, userID, string(key))
	if err != nil {
		return 0, fmt.Errorf("failed to delete events for group: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SetEventsWaiting sets the waiting-on-labeling flag for every event in a
// (user, content key) group.
func (db *DB) SetEventsWaiting(ctx context.Context, userID uuid.UUID, key models.ContentKey, waiting bool) error {
	query := `UPDATE raw_content_events SET is_waiting_on_labeling = ?
		WHERE user_id = ? AND content_key = ?`

	if _, err := db.conn.ExecContext(ctx, query, waiting, userID, string(key)); err != nil {
		return fmt.Errorf("failed to update waiting flag: %w", err)
	}
	return nil
}

// UsersWithEventsForContent returns the distinct users that currently have
// raw events for a content key. Used by label-completion reconciliation.
func (db *DB) UsersWithEventsForContent(ctx context.Context, key models.ContentKey) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM raw_content_events WHERE content_key = ?`

	rows, err := db.conn.QueryContext(ctx, query, string(key))
	if err != nil {
		return nil, fmt.Errorf("failed to query users for content: %w", err)
	}
	defer closeQuietly(rows)

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
