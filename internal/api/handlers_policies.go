// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// ListPolicies handles GET /api/v1/policies?user_id=.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id must be a valid UUID", nil)
		return
	}

	policies, err := h.store.ListPolicies(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list policies", err)
		return
	}

	respondSuccess(w, http.StatusOK, policies)
}

// UpsertPolicy handles POST /api/v1/policies. One policy per (user, content
// key); posting again replaces the kind.
func (h *Handler) UpsertPolicy(w http.ResponseWriter, r *http.Request) {
	var req UpsertPolicyRequest
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

	key := models.ContentKey(req.ContentKey)
	source, err := key.Source()
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown content source", nil)
		return
	}

	policy := &models.UserContentLabelPolicy{
		ID:            uuid.New(),
		UserID:        userID,
		ContentKey:    key,
		PolicyKind:    models.PolicyKind(req.PolicyKind),
		ContentSource: source,
	}
	if req.Label != "" {
		policy.Label = &req.Label
	}
	if req.Note != "" {
		policy.Note = &req.Note
	}

	if err := h.store.UpsertPolicy(r.Context(), policy); err != nil {
		respondError(w, http.StatusInternalServerError, "UPSERT_FAILED", "Failed to save policy", err)
		return
	}

	respondSuccess(w, http.StatusOK, policy)
}

// DeletePolicy handles DELETE /api/v1/policies?user_id=&content_key=.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id must be a valid UUID", nil)
		return
	}

	key := models.ContentKey(r.URL.Query().Get("content_key"))
	if _, err := key.Source(); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "content_key must have a known source", nil)
		return
	}

	if err := h.store.DeletePolicy(r.Context(), userID, key); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Policy not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete policy", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
