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

// GetContentLabel fetches the label for a content key. Returns ErrNotFound
// when no label exists yet.
func (db *DB) GetContentLabel(ctx context.Context, key models.ContentKey) (*models.ContentLabel, error) {
	query := `SELECT id, content_key, stage, content_source, content_url, content_media_type,
		title, author_name, description, thumbnail_url, full_duration_ms,
		content_language_code, language_evidence, attempts, last_error,
		created_at, updated_at, processed_at
		FROM content_labels WHERE content_key = ?`

	label := &models.ContentLabel{}
	err := db.conn.QueryRowContext(ctx, query, string(key)).Scan(
		&label.ID, &label.ContentKey, &label.Stage, &label.ContentSource,
		&label.ContentURL, &label.ContentMediaType, &label.Title, &label.AuthorName,
		&label.Description, &label.ThumbnailURL, &label.FullDurationMS,
		&label.ContentLanguageCode, &label.LanguageEvidence, &label.Attempts,
		&label.LastError, &label.CreatedAt, &label.UpdatedAt, &label.ProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query content label: %w", err)
	}
	return label, nil
}

// CreateContentLabelIfAbsent inserts a queued label for a never-seen content
// key. Returns the stored label and whether this call created it. Concurrent
// first-events race safely: ON CONFLICT DO NOTHING makes exactly one writer
// win and everyone reads the winner's row.
func (db *DB) CreateContentLabelIfAbsent(ctx context.Context, key models.ContentKey, source models.ContentSource) (*models.ContentLabel, bool, error) {
	id := uuid.New()
	now := time.Now().UTC()

	query := `INSERT INTO content_labels (id, content_key, stage, content_source, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (content_key) DO NOTHING`

	res, err := db.conn.ExecContext(ctx, query,
		id, string(key), string(models.LabelQueued), string(source), now, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert content label: %w", err)
	}

	inserted, _ := res.RowsAffected()
	label, err := db.GetContentLabel(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return label, inserted > 0, nil
}

// MarkLabelProcessing advances a queued label to the processing stage.
// Returns ErrNotFound if the label is not currently queued, which makes
// redelivered queue messages for an already-handled label a no-op.
func (db *DB) MarkLabelProcessing(ctx context.Context, key models.ContentKey) error {
	query := `UPDATE content_labels SET stage = ?, updated_at = ?
		WHERE content_key = ? AND stage = ?`

	res, err := db.conn.ExecContext(ctx, query,
		string(models.LabelProcessing), time.Now().UTC(), string(key), string(models.LabelQueued))
	if err != nil {
		return fmt.Errorf("failed to mark label processing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteContentLabel applies an enrichment patch and advances the label to
// completed. Nil patch fields leave existing columns untouched.
func (db *DB) CompleteContentLabel(ctx context.Context, key models.ContentKey, patch *models.LabelPatch) error {
	now := time.Now().UTC()

	query := `UPDATE content_labels SET
		stage = ?,
		content_url = COALESCE(?, content_url),
		content_media_type = COALESCE(?, content_media_type),
		title = COALESCE(?, title),
		author_name = COALESCE(?, author_name),
		description = COALESCE(?, description),
		thumbnail_url = COALESCE(?, thumbnail_url),
		full_duration_ms = COALESCE(?, full_duration_ms),
		content_language_code = COALESCE(?, content_language_code),
		language_evidence = COALESCE(?, language_evidence),
		last_error = NULL,
		updated_at = ?,
		processed_at = ?
		WHERE content_key = ?`

	var mediaType *string
	if patch.ContentMediaType != nil {
		s := string(*patch.ContentMediaType)
		mediaType = &s
	}

	res, err := db.conn.ExecContext(ctx, query,
		string(models.LabelCompleted),
		patch.ContentURL, mediaType, patch.Title, patch.AuthorName,
		patch.Description, patch.ThumbnailURL, patch.FullDurationMS,
		patch.ContentLanguageCode, patch.LanguageEvidence,
		now, now, string(key))
	if err != nil {
		return fmt.Errorf("failed to complete content label: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FailContentLabel records a processing failure: stage becomes failed, the
// attempt counter increments, and the error message is stored for operators.
func (db *DB) FailContentLabel(ctx context.Context, key models.ContentKey, procErr error) error {
	msg := procErr.Error()
	query := `UPDATE content_labels SET stage = ?, attempts = attempts + 1,
		last_error = ?, updated_at = ?
		WHERE content_key = ?`

	res, err := db.conn.ExecContext(ctx, query,
		string(models.LabelFailed), msg, time.Now().UTC(), string(key))
	if err != nil {
		return fmt.Errorf("failed to mark label failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RequeueContentLabel moves a failed label back to queued for an explicit
// retry. Returns ErrNotFound if the label is not currently failed.
func (db *DB) RequeueContentLabel(ctx context.Context, key models.ContentKey) error {
	query := `UPDATE content_labels SET stage = ?, last_error = NULL, updated_at = ?
		WHERE content_key = ? AND stage = ?`

	res, err := db.conn.ExecContext(ctx, query,
		string(models.LabelQueued), time.Now().UTC(), string(key), string(models.LabelFailed))
	if err != nil {
		return fmt.Errorf("failed to requeue label: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
