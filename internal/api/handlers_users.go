// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	user := &models.User{
		ID:                 uuid.New(),
		Username:           req.Username,
		TargetLanguageCode: req.TargetLanguageCode,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "INSERT_FAILED", "Failed to create user", err)
		return
	}

	respondSuccess(w, http.StatusCreated, user)
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid UUID", nil)
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load user", err)
		return
	}

	respondSuccess(w, http.StatusOK, user)
}

// UpdateTargetLanguage handles PUT /api/v1/users/{id}/target-language.
// Changing the target does not rewrite history; it only affects how future
// events and pending groups are gated.
func (h *Handler) UpdateTargetLanguage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid UUID", nil)
		return
	}

	var req UpdateTargetLanguageRequest
	if apiErr := decodeJSONBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.store.UpdateUserTargetLanguage(r.Context(), id, req.TargetLanguageCode); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update target language", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"id":                   id,
		"target_language_code": req.TargetLanguageCode,
	})
}

// GetLevel handles GET /api/v1/users/{id}/level. The latest ledger entry
// carries the full level state; no history replay is needed.
func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid UUID", nil)
		return
	}

	entry, err := h.xp.Level(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load level", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id":                      id,
		"level":                        entry.NewLevel,
		"total_experience":             entry.TotalExperience,
		"remainder_towards_next_level": entry.RemainderTowardsNextLevel,
		"next_level_cost":              entry.NextLevelCost,
	})
}

// GetLedger handles GET /api/v1/users/{id}/ledger?limit=&offset=.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a valid UUID", nil)
		return
	}

	limit, offset := h.pageParams(r)
	entries, err := h.store.ListLedgerEntries(r.Context(), id, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list ledger entries", err)
		return
	}

	respondSuccess(w, http.StatusOK, entries)
}
