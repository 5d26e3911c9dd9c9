// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package experience

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

// Ledger entry reasons.
const (
	ReasonActivity = "activity"
	ReasonReversal = "reversal"
)

// LedgerStore is the subset of database operations the award service needs.
type LedgerStore interface {
	GetLatestLedgerEntry(ctx context.Context, userID uuid.UUID) (*models.ExperienceLedgerEntry, error)
	InsertLedgerEntry(ctx context.Context, entry *models.ExperienceLedgerEntry) error
}

// StreakProvider is the award path's view of the streak system: it reads
// the current streak for the bonus and reports the activity day that keeps
// the streak alive.
type StreakProvider interface {
	CurrentStreakDays(ctx context.Context, userID uuid.UUID) (int, error)
	RecordActivityDay(ctx context.Context, userID uuid.UUID, day time.Time) error
}

// Service appends experience ledger entries. Each entry snapshots the
// running total and derived level state so readers never replay history.
type Service struct {
	store   LedgerStore
	streaks StreakProvider
}

// NewService creates an award service. streaks may be nil, in which case no
// streak bonus is applied.
func NewService(store LedgerStore, streaks StreakProvider) *Service {
	return &Service{store: store, streaks: streaks}
}

// AwardForActivity computes and records the experience a finalized activity
// earns. Returns the appended ledger entry.
func (s *Service) AwardForActivity(ctx context.Context, activity *models.LanguageActivity, mediaType *models.MediaType) (*models.ExperienceLedgerEntry, error) {
	streakDays := 0
	if s.streaks != nil {
		days, err := s.streaks.CurrentStreakDays(ctx, activity.UserID)
		if err != nil {
			// Streak service being down costs the bonus, never the award.
			logging.Warn().Err(err).Str("user_id", activity.UserID.String()).
				Msg("Streak lookup failed, awarding without bonus")
		} else {
			streakDays = days
		}
	}

	delta := ForActivity(activity.DurationSeconds, mediaType, streakDays)
	entry, err := s.append(ctx, activity.UserID, &activity.ID, delta, ReasonActivity)
	if err != nil {
		return nil, err
	}

	if s.streaks != nil {
		if err := s.streaks.RecordActivityDay(ctx, activity.UserID, activity.OccurredAt); err != nil {
			// Same contract as the lookup: the streak engine being down
			// never blocks an award.
			logging.Warn().Err(err).Str("user_id", activity.UserID.String()).
				Msg("Failed to record streak activity day")
		}
	}

	metrics.ExperienceAwarded.Add(float64(delta))
	return entry, nil
}

// Reverse compensates a deleted activity with a negative ledger entry equal
// to what it originally awarded. Activities that never awarded experience
// reverse to a no-op.
func (s *Service) Reverse(ctx context.Context, activity *models.LanguageActivity) (*models.ExperienceLedgerEntry, error) {
	if activity.AwardedExperience == nil || *activity.AwardedExperience == 0 {
		return nil, nil
	}
	return s.append(ctx, activity.UserID, &activity.ID, -*activity.AwardedExperience, ReasonReversal)
}

// Level returns a user's current level state from the latest ledger row.
// A user with no ledger history is level 1 with zero progress.
func (s *Service) Level(ctx context.Context, userID uuid.UUID) (*models.ExperienceLedgerEntry, error) {
	entry, err := s.store.GetLatestLedgerEntry(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		state := LevelFromTotal(0)
		return &models.ExperienceLedgerEntry{
			UserID:                    userID,
			NewLevel:                  state.Level,
			RemainderTowardsNextLevel: state.Remainder,
			NextLevelCost:             state.NextLevelCost,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) append(ctx context.Context, userID uuid.UUID, activityID *uuid.UUID, delta int64, reason string) (*models.ExperienceLedgerEntry, error) {
	prevTotal := int64(0)
	prevLevel := 1
	latest, err := s.store.GetLatestLedgerEntry(ctx, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("read latest ledger entry: %w", err)
	}
	if latest != nil {
		prevTotal = latest.TotalExperience
		prevLevel = latest.NewLevel
	}

	total := prevTotal + delta
	state := LevelFromTotal(total)

	entry := &models.ExperienceLedgerEntry{
		ID:                        uuid.New(),
		UserID:                    userID,
		LanguageActivityID:        activityID,
		DeltaExperience:           delta,
		TotalExperience:           total,
		NewLevel:                  state.Level,
		RemainderTowardsNextLevel: state.Remainder,
		NextLevelCost:             state.NextLevelCost,
		Reason:                    reason,
	}
	if err := s.store.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	if state.Level > prevLevel {
		metrics.LevelUps.Add(float64(state.Level - prevLevel))
		logging.Info().Str("user_id", userID.String()).
			Int("level", state.Level).
			Msg("User leveled up")
	}

	return entry, nil
}
