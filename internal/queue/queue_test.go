// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
)

func testQueueConfig() *config.QueueConfig {
	return &config.QueueConfig{
		OutputBufferSize:     16,
		RetryCount:           1,
		RetryInitialInterval: time.Millisecond,
		CloseTimeout:         time.Second,
	}
}

func TestPublishLabelTask_ReachesSubscriber(t *testing.T) {
	q, err := New(testQueueConfig())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := q.Subscribe(ctx, TopicProcessLabel)
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	if err := q.PublishLabelTask("youtube:abc123"); err != nil {
		t.Fatalf("PublishLabelTask() error: %v", err)
	}

	select {
	case msg := <-msgs:
		task, err := ParseLabelTask(msg)
		if err != nil {
			t.Fatalf("ParseLabelTask() error: %v", err)
		}
		if task.ContentKey != "youtube:abc123" {
			t.Errorf("ContentKey = %q", task.ContentKey)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestPublishReconcileTask_ReachesSubscriber(t *testing.T) {
	q, err := New(testQueueConfig())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := q.Subscribe(ctx, TopicReconcileLabel)
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	if err := q.PublishReconcileTask("website:example.org"); err != nil {
		t.Fatalf("PublishReconcileTask() error: %v", err)
	}

	select {
	case msg := <-msgs:
		task, err := ParseReconcileTask(msg)
		if err != nil {
			t.Fatalf("ParseReconcileTask() error: %v", err)
		}
		if task.ContentKey != "website:example.org" {
			t.Errorf("ContentKey = %q", task.ContentKey)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}
