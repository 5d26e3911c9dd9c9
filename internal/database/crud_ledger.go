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

// InsertLedgerEntry appends an experience ledger row.
func (db *DB) InsertLedgerEntry(ctx context.Context, entry *models.ExperienceLedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO experience_ledger (
		id, user_id, language_activity_id, delta_experience, total_experience,
		new_level, remainder_towards_next_level, next_level_cost, reason, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := db.conn.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.LanguageActivityID, entry.DeltaExperience,
		entry.TotalExperience, entry.NewLevel, entry.RemainderTowardsNextLevel,
		entry.NextLevelCost, entry.Reason, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// GetLatestLedgerEntry returns a user's most recent ledger row, which carries
// the authoritative running total and level state. Returns ErrNotFound for a
// user who has never earned experience.
func (db *DB) GetLatestLedgerEntry(ctx context.Context, userID uuid.UUID) (*models.ExperienceLedgerEntry, error) {
	query := `SELECT id, user_id, language_activity_id, delta_experience, total_experience,
		new_level, remainder_towards_next_level, next_level_cost, reason, created_at
		FROM experience_ledger
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	entry := &models.ExperienceLedgerEntry{}
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(
		&entry.ID, &entry.UserID, &entry.LanguageActivityID, &entry.DeltaExperience,
		&entry.TotalExperience, &entry.NewLevel, &entry.RemainderTowardsNextLevel,
		&entry.NextLevelCost, &entry.Reason, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ledger entry: %w", err)
	}
	return entry, nil
}

// ListLedgerEntries returns a user's ledger rows newest first with paging.
func (db *DB) ListLedgerEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ExperienceLedgerEntry, error) {
	query := `SELECT id, user_id, language_activity_id, delta_experience, total_experience,
		new_level, remainder_towards_next_level, next_level_cost, reason, created_at
		FROM experience_ledger
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer closeQuietly(rows)

	var entries []models.ExperienceLedgerEntry
	for rows.Next() {
		var e models.ExperienceLedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.LanguageActivityID, &e.DeltaExperience,
			&e.TotalExperience, &e.NewLevel, &e.RemainderTowardsNextLevel,
			&e.NextLevelCost, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
