// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Request types for the HTTP API. Validation tags are enforced with the
// shared validator before any handler logic runs.

package api

import "time"

// RecordEventRequest is the body of POST /api/v1/events.
type RecordEventRequest struct {
	UserID       string     `json:"user_id" validate:"required,uuid"`
	ContentKey   string     `json:"content_key" validate:"required,content_key"`
	ActivityType string     `json:"activity_type" validate:"required,oneof=start heartbeat pause end"`
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
}

// CreateManualActivityRequest is the body of POST /api/v1/activities.
// Manual entries skip the event pipeline entirely: they are born completed
// and earn experience immediately.
type CreateManualActivityRequest struct {
	UserID          string     `json:"user_id" validate:"required,uuid"`
	Title           string     `json:"title" validate:"required,min=1,max=500"`
	LanguageCode    string     `json:"language_code" validate:"required,language_code"`
	DurationSeconds int64      `json:"duration_seconds" validate:"required,gt=0,lte=86400"`
	OccurredAt      *time.Time `json:"occurred_at,omitempty"`
}

// UpsertPolicyRequest is the body of POST /api/v1/policies.
type UpsertPolicyRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	ContentKey string `json:"content_key" validate:"required,content_key"`
	PolicyKind string `json:"policy_kind" validate:"required,oneof=allow block"`
	Label      string `json:"label,omitempty" validate:"omitempty,max=200"`
	Note       string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Username           string `json:"username" validate:"required,min=1,max=100"`
	TargetLanguageCode string `json:"target_language_code" validate:"required,language_code"`
}

// UpdateTargetLanguageRequest is the body of PUT /api/v1/users/{id}/target-language.
type UpdateTargetLanguageRequest struct {
	TargetLanguageCode string `json:"target_language_code" validate:"required,language_code"`
}
