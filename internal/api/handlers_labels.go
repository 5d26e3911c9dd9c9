// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// contentKeyFromPath rebuilds a content key from {source}/{id} path params.
func contentKeyFromPath(r *http.Request) (models.ContentKey, error) {
	key := models.MakeContentKey(
		models.ContentSource(chi.URLParam(r, "source")),
		chi.URLParam(r, "id"),
	)
	if _, err := key.Source(); err != nil {
		return "", err
	}
	return key, nil
}

// GetLabel handles GET /api/v1/labels/{source}/{id}.
func (h *Handler) GetLabel(w http.ResponseWriter, r *http.Request) {
	key, err := contentKeyFromPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown content source", nil)
		return
	}

	label, err := h.store.GetContentLabel(r.Context(), key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Label not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load label", err)
		return
	}

	respondSuccess(w, http.StatusOK, label)
}

// RetryLabel handles POST /api/v1/labels/{source}/{id}/retry. Failed labels
// are never retried automatically; this is the manual re-entry point.
func (h *Handler) RetryLabel(w http.ResponseWriter, r *http.Request) {
	key, err := contentKeyFromPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown content source", nil)
		return
	}

	if err := h.labels.Retry(r.Context(), key); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusConflict, "NOT_RETRYABLE",
				"Label does not exist or is not in the failed stage", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "RETRY_FAILED", "Failed to requeue label", err)
		return
	}

	respondSuccess(w, http.StatusAccepted, map[string]interface{}{"requeued": true})
}
