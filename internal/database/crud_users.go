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

// CreateUser inserts a new user account.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (id, username, target_language_code, created_at)
		VALUES (?, ?, ?, ?)`

	if _, err := db.conn.ExecContext(ctx, query,
		user.ID, user.Username, user.TargetLanguageCode, user.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser fetches a user by id. Returns ErrNotFound when the user does not exist.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, target_language_code, created_at
		FROM users WHERE id = ?`

	user := &models.User{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.TargetLanguageCode, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// UpdateUserTargetLanguage changes the user's target language. Future events
// are interpreted against the new target; already-finalized activities keep
// the target they were recorded under.
func (db *DB) UpdateUserTargetLanguage(ctx context.Context, id uuid.UUID, languageCode string) error {
	query := `UPDATE users SET target_language_code = ? WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query, languageCode, id)
	if err != nil {
		return fmt.Errorf("failed to update user target language: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
