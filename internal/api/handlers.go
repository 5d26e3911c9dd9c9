// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package api is the HTTP surface of the pipeline: event intake for source
// integrations, activity and policy management for the UI, label inspection,
// and level lookups. All responses share the APIResponse envelope.
package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
	"github.com/Joshykins/stupid-neko-sub000/internal/recorder"
)

// Store is the subset of database operations the HTTP handlers need.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUserTargetLanguage(ctx context.Context, id uuid.UUID, languageCode string) error

	ListActivities(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LanguageActivity, error)
	GetActivity(ctx context.Context, id uuid.UUID) (*models.LanguageActivity, error)
	InsertActivity(ctx context.Context, a *models.LanguageActivity) error
	DeleteActivity(ctx context.Context, id uuid.UUID) error

	GetContentLabel(ctx context.Context, key models.ContentKey) (*models.ContentLabel, error)

	UpsertPolicy(ctx context.Context, policy *models.UserContentLabelPolicy) error
	ListPolicies(ctx context.Context, userID uuid.UUID) ([]models.UserContentLabelPolicy, error)
	DeletePolicy(ctx context.Context, userID uuid.UUID, key models.ContentKey) error

	ListLedgerEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ExperienceLedgerEntry, error)
}

// Labeler exposes the label operations reachable over HTTP.
type Labeler interface {
	Retry(ctx context.Context, key models.ContentKey) error
}

// Experience exposes the leveling operations reachable over HTTP.
type Experience interface {
	AwardForActivity(ctx context.Context, activity *models.LanguageActivity, mediaType *models.MediaType) (*models.ExperienceLedgerEntry, error)
	Reverse(ctx context.Context, activity *models.LanguageActivity) (*models.ExperienceLedgerEntry, error)
	Level(ctx context.Context, userID uuid.UUID) (*models.ExperienceLedgerEntry, error)
}

// EventRecorder is the intake path for interaction ticks.
type EventRecorder interface {
	Record(ctx context.Context, ev *recorder.Event) (*recorder.Result, error)
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store     Store
	recorder  EventRecorder
	labels    Labeler
	xp        Experience
	cfg       config.APIConfig
	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(store Store, rec EventRecorder, labels Labeler, xp Experience, cfg config.APIConfig) *Handler {
	return &Handler{
		store:     store,
		recorder:  rec,
		labels:    labels,
		xp:        xp,
		cfg:       cfg,
		startTime: time.Now(),
	}
}
