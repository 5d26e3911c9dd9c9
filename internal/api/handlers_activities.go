// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// ListActivities handles GET /api/v1/activities?user_id=&limit=&offset=.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id must be a valid UUID", nil)
		return
	}

	limit, offset := h.pageParams(r)
	activities, err := h.store.ListActivities(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list activities", err)
		return
	}

	respondSuccess(w, http.StatusOK, activities)
}

// CreateManualActivity handles POST /api/v1/activities. Manual entries
// bypass the event pipeline: no content key, no label gate, immediate
// experience award.
func (h *Handler) CreateManualActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateManualActivityRequest
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

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load user", err)
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	activity := &models.LanguageActivity{
		ID:                     uuid.New(),
		UserID:                 user.ID,
		UserTargetLanguageCode: user.TargetLanguageCode,
		LanguageCode:           req.LanguageCode,
		State:                  models.ActivityCompleted,
		Title:                  req.Title,
		DurationSeconds:        req.DurationSeconds,
		OccurredAt:             occurredAt,
		IsManuallyTracked:      true,
	}

	// Manual entries have no media classification; the base rate applies.
	entry, err := h.xp.AwardForActivity(r.Context(), activity, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AWARD_FAILED", "Failed to award experience", err)
		return
	}
	activity.AwardedExperience = &entry.DeltaExperience

	if err := h.store.InsertActivity(r.Context(), activity); err != nil {
		respondError(w, http.StatusInternalServerError, "INSERT_FAILED", "Failed to save activity", err)
		return
	}

	logging.Info().Str("user_id", user.ID.String()).
		Int64("duration_seconds", activity.DurationSeconds).
		Int64("awarded", entry.DeltaExperience).
		Msg("Manual activity recorded")

	respondSuccess(w, http.StatusCreated, activity)
}

// DeleteActivity handles DELETE /api/v1/activities/{id}. Deleting a
// completed activity appends a compensating ledger entry before the row is
// removed, so totals stay honest without rewriting history.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid UUID", nil)
		return
	}

	activity, err := h.store.GetActivity(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Activity not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load activity", err)
		return
	}

	if _, err := h.xp.Reverse(r.Context(), activity); err != nil {
		respondError(w, http.StatusInternalServerError, "REVERSAL_FAILED", "Failed to reverse experience", err)
		return
	}

	if err := h.store.DeleteActivity(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete activity", err)
		return
	}

	logging.Info().Str("activity_id", id.String()).
		Str("user_id", activity.UserID.String()).
		Msg("Activity deleted")

	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
