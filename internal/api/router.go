// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
)

// NewRouter assembles the chi router: global middleware, health endpoints
// with a permissive rate budget, and the versioned API with the standard
// limit.
func NewRouter(handler *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rateLimit := func(next http.Handler) http.Handler { return next }
	if !cfg.RateLimitDisabled {
		rateLimit = httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow)
	}

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(securityHeaders)
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(securityHeaders)
		r.Use(prometheusMetrics)

		r.Post("/events", handler.RecordEvent)

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", handler.ListActivities)
			r.Post("/", handler.CreateManualActivity)
			r.Delete("/{id}", handler.DeleteActivity)
		})

		r.Route("/labels", func(r chi.Router) {
			r.Get("/{source}/{id}", handler.GetLabel)
			r.Post("/{source}/{id}/retry", handler.RetryLabel)
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", handler.ListPolicies)
			r.Post("/", handler.UpsertPolicy)
			r.Delete("/", handler.DeletePolicy)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", handler.CreateUser)
			r.Get("/{id}", handler.GetUser)
			r.Put("/{id}/target-language", handler.UpdateTargetLanguage)
			r.Get("/{id}/level", handler.GetLevel)
			r.Get("/{id}/ledger", handler.GetLedger)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
