// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/metrics"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Store is the subset of database operations the translator needs.
type Store interface {
	ListPendingWork(ctx context.Context, limit int) ([]models.PendingWork, error)
	DeletePendingWork(ctx context.Context, userID uuid.UUID, key models.ContentKey) error

	ListEventsForGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey, limit int) ([]models.RawContentEvent, error)
	DeleteEvents(ctx context.Context, ids []uuid.UUID) error
	DeleteEventsForGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey) (int64, error)
	SetEventsWaiting(ctx context.Context, userID uuid.UUID, key models.ContentKey, waiting bool) error

	GetContentLabel(ctx context.Context, key models.ContentKey) (*models.ContentLabel, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetInProgressActivity(ctx context.Context, userID uuid.UUID, key models.ContentKey) (*models.LanguageActivity, error)
	InsertActivity(ctx context.Context, a *models.LanguageActivity) error
	UpdateActivityProgress(ctx context.Context, id uuid.UUID, durationSeconds int64) error
	CompleteActivity(ctx context.Context, id uuid.UUID, durationSeconds, awardedExperience int64) error
	DeleteActivity(ctx context.Context, id uuid.UUID) error
}

// Awarder grants experience for finalized activities.
type Awarder interface {
	AwardForActivity(ctx context.Context, activity *models.LanguageActivity, mediaType *models.MediaType) (*models.ExperienceLedgerEntry, error)
}

// maxGroupsPerRun caps how many work groups one batch touches.
const maxGroupsPerRun = 256

// Translator drains the pending-work queue and folds raw events into
// language activities.
type Translator struct {
	store      Store
	xp         Awarder
	gap        time.Duration
	minimum    time.Duration
	eventLimit int
}

// New creates a translator from config.
func New(store Store, xp Awarder, cfg *config.TranslatorConfig) *Translator {
	return &Translator{
		store:      store,
		xp:         xp,
		gap:        cfg.GapTimeout,
		minimum:    cfg.MinimumDuration,
		eventLimit: cfg.EventLimit,
	}
}

// Run performs one batch. Implements the scheduler's task contract.
// Per-group failures are isolated: one broken group never blocks the rest,
// and its work row survives for the next run.
func (t *Translator) Run(ctx context.Context) error {
	start := time.Now()
	metrics.TranslatorRuns.Inc()
	defer func() {
		metrics.TranslatorDuration.Observe(time.Since(start).Seconds())
	}()

	items, err := t.store.ListPendingWork(ctx, maxGroupsPerRun)
	if err != nil {
		return fmt.Errorf("list pending work: %w", err)
	}

	var failed int
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.translateGroup(ctx, item.UserID, item.ContentKey); err != nil {
			failed++
			logging.Error().Err(err).
				Str("user_id", item.UserID.String()).
				Str("content_key", string(item.ContentKey)).
				Msg("Group translation failed")
		}
	}

	if len(items) > 0 {
		logging.Debug().Int("groups", len(items)).Int("failed", failed).
			Dur("took", time.Since(start)).Msg("Translator batch completed")
	}
	return nil
}

// translateGroup folds one (user, content key) group. The work row is
// deleted only when the group's events are fully consumed; a trailing open
// session keeps the row so the next run revisits it.
func (t *Translator) translateGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey) error {
	events, err := t.store.ListEventsForGroup(ctx, userID, key, t.eventLimit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return t.store.DeletePendingWork(ctx, userID, key)
	}

	label, err := t.store.GetContentLabel(ctx, key)
	if err != nil {
		return fmt.Errorf("load label: %w", err)
	}
	user, err := t.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	// The label is re-validated at fold time: the user may have switched
	// target language, or the label may have resolved since recording.
	if !label.LanguageReady() {
		if label.Stage == models.LabelCompleted {
			// Completed but unusable: detection failed. The group can never
			// count, clean it out.
			return t.purgeGroup(ctx, userID, key)
		}
		// Still unresolved: park the events and drop the work row.
		// Label-completion reconciliation re-queues the group.
		if err := t.store.SetEventsWaiting(ctx, userID, key, true); err != nil {
			return err
		}
		return t.store.DeletePendingWork(ctx, userID, key)
	}
	if !label.MatchesLanguage(user.TargetLanguageCode) {
		return t.purgeGroup(ctx, userID, key)
	}

	sessions := FoldSessions(events, t.gap, time.Now().UTC())

	fullyConsumed := true
	for _, session := range sessions {
		if !session.Closed {
			if err := t.carryOpenSession(ctx, user, key, label, &session); err != nil {
				return err
			}
			fullyConsumed = false
			continue
		}
		if err := t.finalizeSession(ctx, user, key, label, &session); err != nil {
			return err
		}
	}

	if fullyConsumed {
		return t.store.DeletePendingWork(ctx, userID, key)
	}
	return nil
}

// finalizeSession turns one closed session into a completed activity (or
// discards it as noise) and consumes its events.
func (t *Translator) finalizeSession(ctx context.Context, user *models.User, key models.ContentKey, label *models.ContentLabel, session *Session) error {
	duration := session.Duration()

	if duration < t.minimum {
		if err := t.consumeEvents(ctx, session); err != nil {
			return err
		}
		// A too-short session may still have seeded an in-progress
		// activity on an earlier run; it no longer has anything backing it.
		if err := t.dropInProgress(ctx, user.ID, key); err != nil {
			return err
		}
		metrics.SessionsDiscarded.WithLabelValues("too_short").Inc()
		return nil
	}

	durationSeconds := int64(duration / time.Second)

	existing, err := t.store.GetInProgressActivity(ctx, user.ID, key)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("load in-progress activity: %w", err)
	}

	if existing != nil {
		// Promote the accumulator. Its original start is authoritative; the
		// session end closes it.
		finalSeconds := int64(session.End.Sub(existing.OccurredAt) / time.Second)
		if finalSeconds < durationSeconds {
			finalSeconds = durationSeconds
		}
		existing.DurationSeconds = finalSeconds
		entry, err := t.xp.AwardForActivity(ctx, existing, label.ContentMediaType)
		if err != nil {
			return fmt.Errorf("award experience: %w", err)
		}
		if err := t.store.CompleteActivity(ctx, existing.ID, finalSeconds, entry.DeltaExperience); err != nil {
			return fmt.Errorf("complete activity: %w", err)
		}
	} else {
		activity := t.buildActivity(user, key, label, session.Start, durationSeconds)
		entry, err := t.xp.AwardForActivity(ctx, activity, label.ContentMediaType)
		if err != nil {
			return fmt.Errorf("award experience: %w", err)
		}
		activity.State = models.ActivityCompleted
		activity.AwardedExperience = &entry.DeltaExperience
		if err := t.store.InsertActivity(ctx, activity); err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
	}

	if err := t.consumeEvents(ctx, session); err != nil {
		return err
	}
	metrics.SessionsFinalized.Inc()
	return nil
}

// carryOpenSession upserts the in-progress accumulator for a session that
// may still grow. Its events stay in place.
func (t *Translator) carryOpenSession(ctx context.Context, user *models.User, key models.ContentKey, label *models.ContentLabel, session *Session) error {
	durationSeconds := int64(session.Duration() / time.Second)

	existing, err := t.store.GetInProgressActivity(ctx, user.ID, key)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("load in-progress activity: %w", err)
	}
	if existing != nil {
		return t.store.UpdateActivityProgress(ctx, existing.ID, durationSeconds)
	}

	activity := t.buildActivity(user, key, label, session.Start, durationSeconds)
	return t.store.InsertActivity(ctx, activity)
}

func (t *Translator) buildActivity(user *models.User, key models.ContentKey, label *models.ContentLabel, start time.Time, durationSeconds int64) *models.LanguageActivity {
	// Language-agnostic content counts toward whatever the user is studying.
	language := user.TargetLanguageCode
	if label.ContentLanguageCode != nil {
		language = *label.ContentLanguageCode
	}

	title := string(key)
	if label.Title != nil && *label.Title != "" {
		title = *label.Title
	}

	k := key
	return &models.LanguageActivity{
		ID:                     uuid.New(),
		UserID:                 user.ID,
		UserTargetLanguageCode: user.TargetLanguageCode,
		ContentKey:             &k,
		LanguageCode:           language,
		State:                  models.ActivityInProgress,
		Title:                  title,
		DurationSeconds:        durationSeconds,
		OccurredAt:             start,
	}
}

func (t *Translator) consumeEvents(ctx context.Context, session *Session) error {
	ids := make([]uuid.UUID, len(session.Events))
	for i, ev := range session.Events {
		ids[i] = ev.ID
	}
	if err := t.store.DeleteEvents(ctx, ids); err != nil {
		return fmt.Errorf("consume events: %w", err)
	}
	metrics.EventsConsumed.Add(float64(len(ids)))
	return nil
}

// purgeGroup removes a group whose content can never count for the user:
// events, any in-progress accumulator, and the work row.
func (t *Translator) purgeGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey) error {
	deleted, err := t.store.DeleteEventsForGroup(ctx, userID, key)
	if err != nil {
		return err
	}
	if deleted > 0 {
		metrics.SessionsDiscarded.WithLabelValues("not_target_language").Inc()
	}
	if err := t.dropInProgress(ctx, userID, key); err != nil {
		return err
	}
	return t.store.DeletePendingWork(ctx, userID, key)
}

func (t *Translator) dropInProgress(ctx context.Context, userID uuid.UUID, key models.ContentKey) error {
	activity, err := t.store.GetInProgressActivity(ctx, userID, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := t.store.DeleteActivity(ctx, activity.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}
