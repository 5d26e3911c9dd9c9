// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/metrics"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
	"github.com/Joshykins/stupid-neko-sub000/internal/queue"
)

// Store is the subset of database operations the labeling service needs.
type Store interface {
	CreateContentLabelIfAbsent(ctx context.Context, key models.ContentKey, source models.ContentSource) (*models.ContentLabel, bool, error)
	GetContentLabel(ctx context.Context, key models.ContentKey) (*models.ContentLabel, error)
	MarkLabelProcessing(ctx context.Context, key models.ContentKey) error
	CompleteContentLabel(ctx context.Context, key models.ContentKey, patch *models.LabelPatch) error
	FailContentLabel(ctx context.Context, key models.ContentKey, procErr error) error
	RequeueContentLabel(ctx context.Context, key models.ContentKey) error

	UsersWithEventsForContent(ctx context.Context, key models.ContentKey) ([]uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetEventsWaiting(ctx context.Context, userID uuid.UUID, key models.ContentKey, waiting bool) error
	DeleteEventsForGroup(ctx context.Context, userID uuid.UUID, key models.ContentKey) (int64, error)
	GetInProgressActivity(ctx context.Context, userID uuid.UUID, key models.ContentKey) (*models.LanguageActivity, error)
	DeleteActivity(ctx context.Context, id uuid.UUID) error
	UpsertPendingWork(ctx context.Context, userID uuid.UUID, key models.ContentKey) error
	DeletePendingWork(ctx context.Context, userID uuid.UUID, key models.ContentKey) error
}

// Publisher enqueues label and reconcile tasks.
type Publisher interface {
	PublishLabelTask(key models.ContentKey) error
	PublishReconcileTask(key models.ContentKey) error
}

// Service owns the content label lifecycle: lazy creation on first sight of
// a key, asynchronous enrichment, explicit retry, and reconciliation of
// events that waited on the label.
type Service struct {
	store    Store
	pub      Publisher
	registry *Registry
}

// NewService creates the labeling service.
func NewService(store Store, pub Publisher, registry *Registry) *Service {
	return &Service{store: store, pub: pub, registry: registry}
}

// GetOrCreateLabel returns the label for a content key, creating it in the
// queued stage and enqueueing enrichment on first sight.
func (s *Service) GetOrCreateLabel(ctx context.Context, key models.ContentKey) (*models.ContentLabel, error) {
	source, err := key.Source()
	if err != nil {
		return nil, err
	}

	label, created, err := s.store.CreateContentLabelIfAbsent(ctx, key, source)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.LabelsCreated.WithLabelValues(string(source)).Inc()
		if err := s.pub.PublishLabelTask(key); err != nil {
			// The label row exists but no task is in flight; an explicit
			// retry can recover it.
			logging.Error().Err(err).Str("content_key", string(key)).
				Msg("Failed to publish label task")
		}
	}
	return label, nil
}

// Retry moves a failed label back to queued and enqueues a fresh task.
func (s *Service) Retry(ctx context.Context, key models.ContentKey) error {
	if err := s.store.RequeueContentLabel(ctx, key); err != nil {
		return err
	}
	return s.pub.PublishLabelTask(key)
}

// RegisterHandlers wires the service's consumers onto the queue.
func (s *Service) RegisterHandlers(q *queue.Queue) {
	q.AddConsumerHandler("label_processor", queue.TopicProcessLabel, s.HandleLabelTask)
	q.AddConsumerHandler("label_reconciler", queue.TopicReconcileLabel, s.HandleReconcileTask)
}

// HandleLabelTask processes one enrichment task. Redeliveries for a label
// that already left the queued stage are no-ops. Processor errors mark the
// label failed and ack the message; failed labels wait for an explicit
// retry rather than churning in the router.
func (s *Service) HandleLabelTask(msg *message.Message) error {
	task, err := queue.ParseLabelTask(msg)
	if err != nil {
		// Malformed payloads can never succeed.
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed label task")
		return nil
	}

	ctx := msg.Context()
	key := task.ContentKey

	if err := s.store.MarkLabelProcessing(ctx, key); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			logging.Debug().Str("content_key", string(key)).Msg("Label already handled, skipping")
			return nil
		}
		return err
	}

	source, err := key.Source()
	if err != nil {
		return s.failLabel(ctx, key, err)
	}
	processor, err := s.registry.For(source)
	if err != nil {
		return s.failLabel(ctx, key, err)
	}

	start := time.Now()
	patch, err := processor.Process(ctx, key)
	metrics.LabelProcessingDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LabelProcessingFailures.WithLabelValues(string(source)).Inc()
		return s.failLabel(ctx, key, err)
	}

	if err := s.store.CompleteContentLabel(ctx, key, patch); err != nil {
		return err
	}

	logging.Info().Str("content_key", string(key)).Str("source", string(source)).
		Msg("Content label completed")

	if err := s.pub.PublishReconcileTask(key); err != nil {
		return fmt.Errorf("publish reconcile task: %w", err)
	}
	return nil
}

// failLabel records a permanent processing failure and acks the message.
func (s *Service) failLabel(ctx context.Context, key models.ContentKey, procErr error) error {
	logging.Warn().Err(procErr).Str("content_key", string(key)).Msg("Label processing failed")
	if err := s.store.FailContentLabel(ctx, key, procErr); err != nil {
		return err
	}
	return nil
}

// HandleReconcileTask revisits every user holding raw events for a content
// key whose label just completed. Matching users get their events released
// to the translator; mismatched users get events and any in-progress
// activity for the key purged. Failures on one user leave the others alone.
func (s *Service) HandleReconcileTask(msg *message.Message) error {
	task, err := queue.ParseReconcileTask(msg)
	if err != nil {
		logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed reconcile task")
		return nil
	}

	ctx := msg.Context()
	key := task.ContentKey

	label, err := s.store.GetContentLabel(ctx, key)
	if err != nil {
		return err
	}
	if label.Stage != models.LabelCompleted {
		// Completion was rolled back or the task raced a retry; nothing to do.
		return nil
	}

	userIDs, err := s.store.UsersWithEventsForContent(ctx, key)
	if err != nil {
		return err
	}

	var firstErr error
	for _, userID := range userIDs {
		if err := s.reconcileUser(ctx, userID, key, label); err != nil {
			logging.Error().Err(err).Str("user_id", userID.String()).
				Str("content_key", string(key)).Msg("Reconcile failed for user")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Service) reconcileUser(ctx context.Context, userID uuid.UUID, key models.ContentKey, label *models.ContentLabel) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if label.MatchesLanguage(user.TargetLanguageCode) {
		if err := s.store.SetEventsWaiting(ctx, userID, key, false); err != nil {
			return err
		}
		return s.store.UpsertPendingWork(ctx, userID, key)
	}

	// Mismatch: the held events will never count. Purge them along with any
	// in-progress activity accumulated before the label resolved.
	deleted, err := s.store.DeleteEventsForGroup(ctx, userID, key)
	if err != nil {
		return err
	}
	if deleted > 0 {
		metrics.SessionsDiscarded.WithLabelValues("not_target_language").Inc()
	}

	activity, err := s.store.GetInProgressActivity(ctx, userID, key)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if activity != nil {
		if err := s.store.DeleteActivity(ctx, activity.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
			return err
		}
	}

	return s.store.DeletePendingWork(ctx, userID, key)
}
