// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityState is the lifecycle state of a LanguageActivity.
type ActivityState string

// Activity states. An in-progress activity is the session accumulator for
// automated sources; it is promoted to completed (and XP awarded exactly
// once, at promotion) when the underlying session closes.
const (
	ActivityInProgress ActivityState = "in-progress"
	ActivityCompleted  ActivityState = "completed"
)

// LanguageActivity is a finalized (or still-accumulating) record of time
// spent engaging with language-relevant content. It is the unit that earns
// experience.
//
// Invariant: for automated (non-manual) sources there is at most one
// in-progress activity per (UserID, ContentKey) at any time.
type LanguageActivity struct {
	ID                     uuid.UUID     `json:"id"`
	UserID                 uuid.UUID     `json:"user_id"`
	UserTargetLanguageCode string        `json:"user_target_language_code"`
	ContentKey             *ContentKey   `json:"content_key,omitempty"` // nil for manual entries
	LanguageCode           string        `json:"language_code"`
	State                  ActivityState `json:"state"`
	Title                  string        `json:"title"`
	DurationSeconds        int64         `json:"duration_seconds"`
	OccurredAt             time.Time     `json:"occurred_at"`
	IsManuallyTracked      bool          `json:"is_manually_tracked"`
	AwardedExperience      *int64        `json:"awarded_experience,omitempty"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// ExperienceLedgerEntry is a running-total snapshot written whenever
// experience is awarded or reversed. Downstream readers (UI, integration
// API) only need the latest row; level state never has to be re-derived
// from full history.
type ExperienceLedgerEntry struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	LanguageActivityID *uuid.UUID `json:"language_activity_id,omitempty"`

	DeltaExperience int64 `json:"delta_experience"`
	TotalExperience int64 `json:"total_experience"`

	NewLevel                  int    `json:"new_level"`
	RemainderTowardsNextLevel int64  `json:"remainder_towards_next_level"`
	NextLevelCost             int64  `json:"next_level_cost"`
	Reason                    string `json:"reason"` // "activity", "reversal"

	CreatedAt time.Time `json:"created_at"`
}

// User is the minimal account shape the pipeline needs: identity plus the
// configured target language. A user without a target language is a broken
// account as far as this pipeline is concerned; recording fails hard.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	TargetLanguageCode string    `json:"target_language_code"`
	CreatedAt          time.Time `json:"created_at"`
}

// PendingWork is one unit of unprocessed-event work: a (user, content key)
// pair with at least one raw event waiting to be folded. It replaces a
// per-user dirty flag with an explicit queue the batch translator drains,
// so precision is not lost under concurrent writers.
type PendingWork struct {
	UserID     uuid.UUID  `json:"user_id"`
	ContentKey ContentKey `json:"content_key"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
