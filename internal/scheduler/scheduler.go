// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package scheduler runs periodic background tasks on fixed intervals. The
// batch translator and the inactivity nudger both ride on it; each task gets
// its own runner so a slow task never delays another.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
)

// Task is one unit of periodic work.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func(ctx context.Context) error

// Run calls the underlying function.
func (f TaskFunc) Run(ctx context.Context) error { return f(ctx) }

// Runner executes one task on a fixed interval. It integrates with the
// supervisor tree through Start/Stop.
type Runner struct {
	name     string
	task     Task
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRunner creates a runner. timeout bounds a single execution; zero means
// the execution inherits the loop context unchanged.
func NewRunner(name string, task Task, interval, timeout time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		name:     name,
		task:     task,
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins the runner loop. The first execution happens immediately,
// not one interval in.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("runner %q already running", r.name)
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	logging.Info().Str("task", r.name).Dur("interval", r.interval).
		Msg("Starting task runner")

	go r.run(ctx)
	return nil
}

// Stop stops the loop and waits for any in-flight execution to finish.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	logging.Info().Str("task", r.name).Msg("Task runner stopped")
	return nil
}

// IsRunning reports whether the loop is active.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.execute(ctx)

	for {
		select {
		case <-ticker.C:
			r.execute(ctx)
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) execute(ctx context.Context) {
	execCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.task.Run(execCtx); err != nil {
		// Task failures are logged and absorbed; the next tick retries.
		logging.Error().Err(err).Str("task", r.name).Msg("Scheduled task failed")
	}
}
