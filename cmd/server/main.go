// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package main is the entry point for the StupidNeko server.
//
// StupidNeko tracks language-learning activity: source integrations (browser
// extensions, media player plugins) report raw interaction ticks; the server
// labels the content asynchronously, reconstructs engagement sessions in
// batches, and awards experience toward the user's level.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, YAML file, and SN_* env vars (Koanf v2)
//  2. Database: embedded DuckDB holding events, labels, activities, and the experience ledger
//  3. Queue: in-process Watermill router driving label enrichment and reconciliation
//  4. Labeling: oEmbed metadata lookups plus optional LLM language detection
//  5. Experience: append-only ledger with derived level state, optional streak bonuses
//  6. Translator: periodic batch that folds raw events into sessions and activities
//  7. HTTP Server: REST API for event intake, activities, policies, labels, and levels
//
// All long-running pieces run under a suture supervision tree; a crash in the
// background pipeline restarts that service without taking down the API.
//
// # Configuration
//
// Precedence (highest wins): SN_* environment variables, config.yaml, defaults.
//
// Minimal run:
//
//	export SN_DUCKDB_PATH=/data/stupidneko.duckdb
//	./stupidneko
//
// With LLM language detection:
//
//	export SN_LLM_API_KEY=sk-...
//	./stupidneko
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the queue router finishes in-flight handlers, and the
// database checkpoints before close.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Joshykins/stupid-neko-sub000/internal/api"
	"github.com/Joshykins/stupid-neko-sub000/internal/config"
	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/experience"
	"github.com/Joshykins/stupid-neko-sub000/internal/labeling"
	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/queue"
	"github.com/Joshykins/stupid-neko-sub000/internal/recorder"
	"github.com/Joshykins/stupid-neko-sub000/internal/scheduler"
	"github.com/Joshykins/stupid-neko-sub000/internal/streaks"
	"github.com/Joshykins/stupid-neko-sub000/internal/supervisor"
	"github.com/Joshykins/stupid-neko-sub000/internal/translator"
)

const spotifyOEmbedURL = "https://open.spotify.com/oembed"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("translator_enabled", cfg.Translator.Enabled).
		Bool("streaks_enabled", cfg.Streaks.Enabled).
		Msg("Starting StupidNeko")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed mock data")
		}
		logging.Info().Msg("Mock data seeded")
	}

	q, err := queue.New(&cfg.Queue)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize queue")
	}

	// Language detection: LLM-backed when an API key is configured,
	// otherwise labels complete without a language and only
	// language-agnostic content counts.
	var detector labeling.Detector = labeling.NoopDetector{}
	if cfg.Labeling.LLMAPIKey != "" {
		llm, err := labeling.NewLLMDetector(&cfg.Labeling)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize language detector")
		}
		defer func() {
			if err := llm.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing detection cache")
			}
		}()
		detector = llm
		logging.Info().Str("model", cfg.Labeling.LLMModel).Msg("LLM language detection enabled")
	} else {
		logging.Warn().Msg("No LLM API key configured; language detection disabled")
	}

	youtubeOEmbed := labeling.NewOEmbedClient("youtube", cfg.Labeling.YouTubeOEmbedURL,
		cfg.Labeling.RequestTimeout, cfg.Labeling.YouTubeRatePerSec, cfg.Labeling.YouTubeRateBurst,
		cfg.Labeling.BreakerMaxRequests, cfg.Labeling.BreakerFailureRatio)
	spotifyOEmbed := labeling.NewOEmbedClient("spotify", spotifyOEmbedURL,
		cfg.Labeling.RequestTimeout, cfg.Labeling.YouTubeRatePerSec, cfg.Labeling.YouTubeRateBurst,
		cfg.Labeling.BreakerMaxRequests, cfg.Labeling.BreakerFailureRatio)

	registry := labeling.NewRegistry(
		labeling.NewYouTubeProcessor(youtubeOEmbed, detector),
		labeling.NewSpotifyProcessor(spotifyOEmbed, detector),
		labeling.NewWebsiteProcessor(),
	)

	labels := labeling.NewService(db, q, registry)
	labels.RegisterHandlers(q)

	var streakSvc streaks.Service = streaks.Noop{}
	if cfg.Streaks.Enabled {
		streakSvc = streaks.NewClient(&cfg.Streaks)
		logging.Info().Str("url", cfg.Streaks.URL).Msg("Streak service integration enabled")
	}

	xp := experience.NewService(db, streakServiceOrNil(cfg, streakSvc))
	rec := recorder.New(db, labels)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPipelineService(supervisor.NewQueueService(q))

	if cfg.Translator.Enabled {
		tr := translator.New(db, xp, &cfg.Translator)
		runner := scheduler.NewRunner("translator", tr,
			cfg.Translator.Interval, cfg.Translator.ExecutionTimeout)
		tree.AddPipelineService(supervisor.NewRunnerService(runner))
	} else {
		logging.Warn().Msg("Batch translator disabled; raw events will accumulate")
	}

	if cfg.Streaks.Enabled && cfg.Streaks.NudgeEnabled {
		nudger := streaks.NewNudger(db, streakSvc, cfg.Streaks.NudgeAfter)
		runner := scheduler.NewRunner("nudger", nudger, cfg.Streaks.NudgeInterval, cfg.Streaks.Timeout)
		tree.AddPipelineService(supervisor.NewRunnerService(runner))
	}

	handler := api.NewHandler(db, rec, labels, xp, cfg.API)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, &cfg.Server),
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}
	tree.AddAPIService(supervisor.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("StupidNeko started")

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		if err := <-errCh; err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("Supervisor tree terminated with error")
		}
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("Supervisor tree terminated unexpectedly")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Some services missed the shutdown timeout")
	}

	if err := q.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing queue")
	}

	logging.Info().Msg("StupidNeko stopped")
}

// streakServiceOrNil returns nil when streaks are disabled so the experience
// service skips lookups entirely instead of calling the noop each award.
func streakServiceOrNil(cfg *config.Config, svc streaks.Service) experience.StreakProvider {
	if !cfg.Streaks.Enabled {
		return nil
	}
	return svc
}
