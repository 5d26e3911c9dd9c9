// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package recorder is the event intake path. Every interaction tick flows
// through here: policy check, lazy label creation, then persistence into
// the raw event table and the pending-work queue. Recording never blocks on
// label enrichment.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/metrics"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Drop reasons reported in Result.
const (
	DropBlockedByPolicy   = "blocked_by_policy"
	DropNotTargetLanguage = "not_target_language"
)

// Store is the subset of database operations the recorder needs.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetPolicy(ctx context.Context, userID uuid.UUID, key models.ContentKey) (*models.UserContentLabelPolicy, error)
	InsertRawEvent(ctx context.Context, event *models.RawContentEvent) error
	UpsertPendingWork(ctx context.Context, userID uuid.UUID, key models.ContentKey) error
}

// LabelProvider resolves (and lazily creates) content labels.
type LabelProvider interface {
	GetOrCreateLabel(ctx context.Context, key models.ContentKey) (*models.ContentLabel, error)
}

// Event is one interaction tick submitted by a source integration.
type Event struct {
	UserID       uuid.UUID
	ContentKey   models.ContentKey
	ActivityType models.ActivityType
	OccurredAt   time.Time
}

// Result reports what happened to a submitted event. Dropped events are a
// normal outcome, not an error: the integration did its job, the content
// just does not count for this user.
type Result struct {
	Saved             bool   `json:"saved"`
	WaitingOnLabeling bool   `json:"waiting_on_labeling"`
	DropReason        string `json:"drop_reason,omitempty"`
}

// Recorder persists interaction ticks.
type Recorder struct {
	store  Store
	labels LabelProvider
}

// New creates a recorder.
func New(store Store, labels LabelProvider) *Recorder {
	return &Recorder{store: store, labels: labels}
}

// Record runs the intake path for one event:
//
//  1. The user must exist; a user without a target language is rejected
//     upstream at account level.
//  2. A block policy for the key suppresses the event entirely.
//  3. The content label is fetched, created queued on first sight.
//  4. A completed label that does not match the user's target drops the
//     event immediately. An unresolved label persists the event flagged as
//     waiting; reconciliation releases or purges it when the label lands.
//  5. Persisted events always upsert the pending-work row so the translator
//     knows the group is dirty.
func (r *Recorder) Record(ctx context.Context, ev *Event) (*Result, error) {
	source, err := ev.ContentKey.Source()
	if err != nil {
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if !ev.ActivityType.Valid() {
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("unknown activity type %q", ev.ActivityType)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	user, err := r.store.GetUser(ctx, ev.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.EventsRejected.WithLabelValues("unknown_user").Inc()
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	policy, err := r.store.GetPolicy(ctx, ev.UserID, ev.ContentKey)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if policy != nil && policy.PolicyKind == models.PolicyBlock {
		metrics.EventsRejected.WithLabelValues("blocked_policy").Inc()
		return &Result{DropReason: DropBlockedByPolicy}, nil
	}

	label, err := r.labels.GetOrCreateLabel(ctx, ev.ContentKey)
	if err != nil {
		return nil, fmt.Errorf("resolve label: %w", err)
	}

	waiting := false
	switch {
	case label.LanguageReady():
		if !label.MatchesLanguage(user.TargetLanguageCode) {
			logging.Debug().Str("content_key", string(ev.ContentKey)).
				Str("target", user.TargetLanguageCode).
				Msg("Dropping event for mismatched content language")
			return &Result{DropReason: DropNotTargetLanguage}, nil
		}
	case label.Stage == models.LabelCompleted:
		// Completed without a usable language: detection came up empty.
		// The content will never match, so the event is dropped.
		return &Result{DropReason: DropNotTargetLanguage}, nil
	default:
		waiting = true
	}

	event := &models.RawContentEvent{
		ID:                  uuid.New(),
		UserID:              ev.UserID,
		ContentKey:          ev.ContentKey,
		ActivityType:        ev.ActivityType,
		OccurredAt:          ev.OccurredAt,
		IsWaitingOnLabeling: waiting,
	}
	if err := r.store.InsertRawEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("persist event: %w", err)
	}
	if err := r.store.UpsertPendingWork(ctx, ev.UserID, ev.ContentKey); err != nil {
		return nil, fmt.Errorf("mark pending work: %w", err)
	}

	metrics.EventsRecorded.WithLabelValues(string(source), string(ev.ActivityType)).Inc()
	return &Result{Saved: true, WaitingOnLabeling: waiting}, nil
}
