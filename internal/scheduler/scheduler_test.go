// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunner_RunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int64
	task := TaskFunc(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	r := NewRunner("test", task, 20*time.Millisecond, 0)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = r.Stop() }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("got %d runs, want at least 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunner_StartTwiceFails(t *testing.T) {
	r := NewRunner("test", TaskFunc(func(context.Context) error { return nil }), time.Hour, 0)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = r.Stop() }()

	if err := r.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
}

func TestRunner_StopWaitsForCompletion(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	task := TaskFunc(func(context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	r := NewRunner("test", task, time.Hour, 0)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	<-started
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if !finished.Load() {
		t.Error("Stop() returned before the in-flight run completed")
	}
	if r.IsRunning() {
		t.Error("runner should not report running after Stop()")
	}
}

func TestRunner_StopIdempotent(t *testing.T) {
	r := NewRunner("test", TaskFunc(func(context.Context) error { return nil }), time.Hour, 0)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}
}

func TestRunner_TaskErrorDoesNotStopLoop(t *testing.T) {
	var runs atomic.Int64
	task := TaskFunc(func(context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})

	r := NewRunner("test", task, 10*time.Millisecond, 0)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = r.Stop() }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("got %d runs, want the loop to survive errors", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunner_TimeoutBoundsExecution(t *testing.T) {
	timedOut := make(chan struct{})
	task := TaskFunc(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			close(timedOut)
		case <-time.After(5 * time.Second):
		}
		return ctx.Err()
	})

	r := NewRunner("test", task, time.Hour, 20*time.Millisecond)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() { _ = r.Stop() }()

	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("execution context was never cancelled by the timeout")
	}
}
