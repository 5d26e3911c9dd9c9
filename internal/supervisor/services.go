// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Service wrappers adapting the process components to the suture.Service
// interface. Each wrapper starts its component, blocks on context
// cancellation, and shuts the component down cleanly.

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/queue"
	"github.com/Joshykins/stupid-neko-sub000/internal/scheduler"
)

// HTTPService supervises the HTTP API server.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPService wraps an http.Server.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		return err
	}
	logging.Info().Msg("HTTP server stopped")
	return nil
}

// QueueService supervises the message router that drives asynchronous label
// processing.
type QueueService struct {
	queue *queue.Queue
}

// NewQueueService wraps the queue router.
func NewQueueService(q *queue.Queue) *QueueService {
	return &QueueService{queue: q}
}

// Serve implements suture.Service. The router's Run blocks until the context
// is canceled, draining in-flight handlers on the way out.
func (s *QueueService) Serve(ctx context.Context) error {
	logging.Info().Msg("Starting queue router")
	err := s.queue.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Queue router stopped")
	return nil
}

// RunnerService supervises a periodic task runner.
type RunnerService struct {
	runner *scheduler.Runner
}

// NewRunnerService wraps a scheduler runner.
func NewRunnerService(runner *scheduler.Runner) *RunnerService {
	return &RunnerService{runner: runner}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	if err := s.runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.runner.Stop()
}
