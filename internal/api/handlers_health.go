// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"net/http"
	"time"
)

// HealthLive handles GET /api/v1/health/live. Always 200 while the process
// can serve requests at all.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Ready means the database
// answers; the pipeline's async pieces degrade independently.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Database is not reachable", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	respondSuccess(w, status, map[string]interface{}{
		"status":         dbStatus,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
