// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package streaks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
)

// InactiveUserStore is the subset of database operations the nudge sweep needs.
type InactiveUserStore interface {
	ListUsersInactiveSince(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// Nudger periodically finds users whose streak is about to lapse, spends a
// vacation day to hold the streak, and asks the streak service to nudge
// them. Failures on one user never stop the sweep for the rest.
type Nudger struct {
	store   InactiveUserStore
	service Service
	after   time.Duration
}

// NewNudger creates a nudge sweep. after is how long a user may be inactive
// before a nudge is sent.
func NewNudger(store InactiveUserStore, service Service, after time.Duration) *Nudger {
	return &Nudger{store: store, service: service, after: after}
}

// Run performs one sweep. Implements the scheduler's task contract.
func (n *Nudger) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-n.after)
	users, err := n.store.ListUsersInactiveSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list inactive users: %w", err)
	}

	nudged, credited := 0, 0
	for _, userID := range users {
		if err := n.service.CreditVacationDay(ctx, userID); err != nil {
			// The user may simply have no vacation days left; the nudge
			// still goes out.
			logging.Debug().Err(err).Str("user_id", userID.String()).Msg("Vacation day credit failed")
		} else {
			credited++
		}

		if err := n.service.NotifyInactive(ctx, userID); err != nil {
			logging.Warn().Err(err).Str("user_id", userID.String()).Msg("Nudge failed")
			continue
		}
		nudged++
	}

	if nudged > 0 || credited > 0 {
		logging.Info().Int("nudged", nudged).Int("vacation_days", credited).
			Int("inactive", len(users)).Msg("Nudge sweep completed")
	}
	return nil
}
