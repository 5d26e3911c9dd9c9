// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// UpsertPendingWork marks a (user, content key) pair as having unprocessed
// events. Called on every event persist; repeat calls only bump the
// timestamp. Like InsertRawEvent this is per-tick work, so the statement is
// prepared once and cached.
func (db *DB) UpsertPendingWork(ctx context.Context, userID uuid.UUID, key models.ContentKey) error {
	query := `INSERT INTO pending_work (user_id, content_key, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, content_key) DO UPDATE SET updated_at = excluded.updated_at`

	stmt, err := db.prepared(ctx, query)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, userID, string(key), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert pending work: %w", err)
	}
	return nil
}

// ListPendingWork returns pending work items oldest first, capped at limit.
// Oldest-first keeps a busy key from starving quiet ones.
func (db *DB) ListPendingWork(ctx context.Context, limit int) ([]models.PendingWork, error) {
	query := `SELECT user_id, content_key, updated_at FROM pending_work
		ORDER BY updated_at ASC
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending work: %w", err)
	}
	defer closeQuietly(rows)

	var items []models.PendingWork
	for rows.Next() {
		var w models.PendingWork
		if err := rows.Scan(&w.UserID, &w.ContentKey, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending work: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// DeletePendingWork removes a work item once its event group has been fully
// consumed.
func (db *DB) DeletePendingWork(ctx context.Context, userID uuid.UUID, key models.ContentKey) error {
	query := `DELETE FROM pending_work WHERE user_id = ? AND content_key = ?`

	if _, err := db.conn.ExecContext(ctx, query, userID, string(key)); err != nil {
		return fmt.Errorf("failed to delete pending work: %w", err)
	}
	return nil
}
