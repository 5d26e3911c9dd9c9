// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

const activityColumns = `id, user_id, user_target_language_code, content_key, language_code,
	state, title, duration_seconds, occurred_at, is_manually_tracked,
	awarded_experience, created_at, updated_at`

func scanActivity(row interface{ Scan(...interface{}) error }) (*models.LanguageActivity, error) {
	a := &models.LanguageActivity{}
	var key *string
	err := row.Scan(&a.ID, &a.UserID, &a.UserTargetLanguageCode, &key, &a.LanguageCode,
		&a.State, &a.Title, &a.DurationSeconds, &a.OccurredAt, &a.IsManuallyTracked,
		&a.AwardedExperience, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if key != nil {
		ck := models.ContentKey(*key)
		a.ContentKey = &ck
	}
	return a, nil
}

// InsertActivity inserts a language activity in any state.
func (db *DB) InsertActivity(ctx context.Context, a *models.LanguageActivity) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `INSERT INTO language_activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var key *string
	if a.ContentKey != nil {
		s := string(*a.ContentKey)
		key = &s
	}

	if _, err := db.conn.ExecContext(ctx, query,
		a.ID, a.UserID, a.UserTargetLanguageCode, key, a.LanguageCode,
		string(a.State), a.Title, a.DurationSeconds, a.OccurredAt, a.IsManuallyTracked,
		a.AwardedExperience, a.CreatedAt, a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// GetActivity fetches an activity by id. Returns ErrNotFound if absent.
func (db *DB) GetActivity(ctx context.Context, id uuid.UUID) (*models.LanguageActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM language_activities WHERE id = ?`

	a, err := scanActivity(db.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	return a, nil
}

// GetInProgressActivity fetches the single in-progress activity for a
// (user, content key) pair, or ErrNotFound.
func (db *DB) GetInProgressActivity(ctx context.Context, userID uuid.UUID, key models.ContentKey) (*models.LanguageActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM language_activities
		WHERE user_id = ? AND content_key = ? AND state = ?`

	a, err := scanActivity(db.conn.QueryRowContext(ctx, query, userID, string(key), string(models.ActivityInProgress)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query in-progress activity: %w", err)
	}
	return a, nil
}

// UpdateActivityProgress refreshes the duration and timestamp of an
// in-progress activity as its trailing session grows.
func (db *DB) UpdateActivityProgress(ctx context.Context, id uuid.UUID, durationSeconds int64) error {
	query := `UPDATE language_activities SET duration_seconds = ?, updated_at = ?
		WHERE id = ? AND state = ?`

	res, err := db.conn.ExecContext(ctx, query,
		durationSeconds, time.Now().UTC(), id, string(models.ActivityInProgress))
	if err != nil {
		return fmt.Errorf("failed to update activity progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteActivity promotes an in-progress activity to completed with its
// final duration and the experience awarded for it. The state guard makes
// the promotion idempotent: a second call finds no in-progress row.
func (db *DB) CompleteActivity(ctx context.Context, id uuid.UUID, durationSeconds, awardedExperience int64) error {
	query := `UPDATE language_activities SET state = ?, duration_seconds = ?,
		awarded_experience = ?, updated_at = ?
		WHERE id = ? AND state = ?`

	res, err := db.conn.ExecContext(ctx, query,
		string(models.ActivityCompleted), durationSeconds, awardedExperience,
		time.Now().UTC(), id, string(models.ActivityInProgress))
	if err != nil {
		return fmt.Errorf("failed to complete activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteActivity removes an activity by id.
func (db *DB) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM language_activities WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActivities returns a user's activities newest first with paging.
func (db *DB) ListActivities(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LanguageActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM language_activities
		WHERE user_id = ?
		ORDER BY occurred_at DESC
		LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer closeQuietly(rows)

	var activities []models.LanguageActivity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// LatestActivityTime returns the most recent occurred_at across a user's
// activities, or ErrNotFound when the user has none. Used by the
// inactivity-nudge sweep.
func (db *DB) LatestActivityTime(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	query := `SELECT MAX(occurred_at) FROM language_activities WHERE user_id = ?`

	var latest sql.NullTime
	if err := db.conn.QueryRowContext(ctx, query, userID).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest activity time: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, ErrNotFound
	}
	return latest.Time, nil
}

// ListUsersInactiveSince returns user ids whose most recent activity is older
// than the cutoff, including users with no activities at all.
func (db *DB) ListUsersInactiveSince(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `SELECT u.id FROM users u
		LEFT JOIN language_activities a ON a.user_id = u.id
		GROUP BY u.id
		HAVING MAX(a.occurred_at) IS NULL OR MAX(a.occurred_at) < ?`

	rows, err := db.conn.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive users: %w", err)
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
