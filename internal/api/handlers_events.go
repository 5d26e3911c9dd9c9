// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
	"github.com/Joshykins/stupid-neko-sub000/internal/recorder"
)

// RecordEvent handles POST /api/v1/events. Source integrations submit one
// interaction tick per call; the response tells them whether the event was
// saved, parked behind labeling, or dropped.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req RecordEventRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id must be a valid UUID", nil)
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	result, err := h.recorder.Record(r.Context(), &recorder.Event{
		UserID:       userID,
		ContentKey:   models.ContentKey(req.ContentKey),
		ActivityType: models.ActivityType(req.ActivityType),
		OccurredAt:   occurredAt,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "RECORD_FAILED", "Failed to record event", err)
		return
	}

	status := http.StatusAccepted
	if !result.Saved {
		// Dropped is still a 2xx: the integration behaved correctly.
		status = http.StatusOK
	}
	respondSuccess(w, status, result)
}
