// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// seedUserID is stable across restarts so seeding is idempotent.
var seedUserID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

// SeedMockData inserts a demo user with a labeled video, a finished
// activity, and ledger history. Intended for local development and
// screenshot tests; a no-op if the demo user already exists.
func (db *DB) SeedMockData(ctx context.Context) error {
	if _, err := db.GetUser(ctx, seedUserID); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check seed user: %w", err)
	}

	user := &models.User{
		ID:                 seedUserID,
		Username:           "demo",
		TargetLanguageCode: "ja",
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return err
	}

	key := models.ContentKey("youtube:demo-immersion-video")
	label, _, err := db.CreateContentLabelIfAbsent(ctx, key, models.SourceYouTube)
	if err != nil {
		return err
	}
	if err := db.MarkLabelProcessing(ctx, label.ContentKey); err != nil {
		return err
	}
	ja := "ja"
	video := models.MediaVideo
	title := "Japanese Immersion: A Morning in Tokyo"
	author := "Demo Channel"
	evidence := "Title and channel metadata are in Japanese."
	if err := db.CompleteContentLabel(ctx, key, &models.LabelPatch{
		Title:               &title,
		AuthorName:          &author,
		ContentMediaType:    &video,
		ContentLanguageCode: &ja,
		LanguageEvidence:    &evidence,
	}); err != nil {
		return err
	}

	awarded := int64(100)
	k := key
	activity := &models.LanguageActivity{
		ID:                     uuid.New(),
		UserID:                 user.ID,
		UserTargetLanguageCode: "ja",
		ContentKey:             &k,
		LanguageCode:           "ja",
		State:                  models.ActivityCompleted,
		Title:                  title,
		DurationSeconds:        20 * 60,
		OccurredAt:             time.Now().UTC().Add(-24 * time.Hour),
		AwardedExperience:      &awarded,
	}
	if err := db.InsertActivity(ctx, activity); err != nil {
		return err
	}

	entry := &models.ExperienceLedgerEntry{
		ID:                 uuid.New(),
		UserID:             user.ID,
		LanguageActivityID: &activity.ID,
		DeltaExperience:    awarded,
		TotalExperience:    awarded,
		NewLevel:           2,
		NextLevelCost:      125,
		Reason:             "activity",
	}
	return db.InsertLedgerEntry(ctx, entry)
}
