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

// UpsertPolicy creates or replaces the policy for a (user, content key)
// pair. Writing a policy replaces any existing one for the same pair, so a
// user flipping block to allow is a single call.
func (db *DB) UpsertPolicy(ctx context.Context, policy *models.UserContentLabelPolicy) error {
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO user_content_label_policies (
		id, user_id, content_key, policy_kind, content_source, content_url, label, note, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, content_key) DO UPDATE SET
		policy_kind = excluded.policy_kind,
		content_source = excluded.content_source,
		content_url = excluded.content_url,
		label = excluded.label,
		note = excluded.note,
		created_at = excluded.created_at`

	if _, err := db.conn.ExecContext(ctx, query,
		policy.ID, policy.UserID, string(policy.ContentKey), string(policy.PolicyKind),
		string(policy.ContentSource), policy.ContentURL, policy.Label, policy.Note,
		policy.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert policy: %w", err)
	}
	return nil
}

// GetPolicy fetches the policy for a (user, content key) pair. Returns
// ErrNotFound when no policy exists.
func (db *DB) GetPolicy(ctx context.Context, userID uuid.UUID, key models.ContentKey) (*models.UserContentLabelPolicy, error) {
	query := `SELECT id, user_id, content_key, policy_kind, content_source, content_url, label, note, created_at
		FROM user_content_label_policies
		WHERE user_id = ? AND content_key = ?`

	p := &models.UserContentLabelPolicy{}
	err := db.conn.QueryRowContext(ctx, query, userID, string(key)).Scan(
		&p.ID, &p.UserID, &p.ContentKey, &p.PolicyKind, &p.ContentSource,
		&p.ContentURL, &p.Label, &p.Note, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query policy: %w", err)
	}
	return p, nil
}

// ListPolicies returns all policies for a user, newest first.
func (db *DB) ListPolicies(ctx context.Context, userID uuid.UUID) ([]models.UserContentLabelPolicy, error) {
	query := `SELECT id, user_id, content_key, policy_kind, content_source, content_url, label, note, created_at
		FROM user_content_label_policies
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer closeQuietly(rows)

	var policies []models.UserContentLabelPolicy
	for rows.Next() {
		var p models.UserContentLabelPolicy
		if err := rows.Scan(&p.ID, &p.UserID, &p.ContentKey, &p.PolicyKind, &p.ContentSource,
			&p.ContentURL, &p.Label, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// DeletePolicy removes the policy for a (user, content key) pair.
func (db *DB) DeletePolicy(ctx context.Context, userID uuid.UUID, key models.ContentKey) error {
	query := `DELETE FROM user_content_label_policies WHERE user_id = ? AND content_key = ?`

	res, err := db.conn.ExecContext(ctx, query, userID, string(key))
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
