// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package queue

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Topics the pipeline publishes to.
const (
	// TopicProcessLabel carries one task per content label to enrich.
	TopicProcessLabel = "labels.process"
	// TopicReconcileLabel carries one task per label whose enrichment just
	// completed and whose waiting events need revisiting.
	TopicReconcileLabel = "labels.reconcile"
)

// LabelTask asks the label worker to enrich the label for a content key.
type LabelTask struct {
	ContentKey models.ContentKey `json:"content_key"`
}

// ReconcileTask asks the reconciler to revisit raw events held for a content
// key now that its label has completed.
type ReconcileTask struct {
	ContentKey models.ContentKey `json:"content_key"`
}

// NewLabelTaskMessage serializes a LabelTask into a Watermill message.
func NewLabelTaskMessage(key models.ContentKey) (*message.Message, error) {
	payload, err := json.Marshal(LabelTask{ContentKey: key})
	if err != nil {
		return nil, fmt.Errorf("marshal label task: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

// ParseLabelTask deserializes a LabelTask from a message payload.
func ParseLabelTask(msg *message.Message) (*LabelTask, error) {
	task := &LabelTask{}
	if err := json.Unmarshal(msg.Payload, task); err != nil {
		return nil, fmt.Errorf("unmarshal label task: %w", err)
	}
	if task.ContentKey == "" {
		return nil, fmt.Errorf("label task missing content key")
	}
	return task, nil
}

// NewReconcileTaskMessage serializes a ReconcileTask into a Watermill message.
func NewReconcileTaskMessage(key models.ContentKey) (*message.Message, error) {
	payload, err := json.Marshal(ReconcileTask{ContentKey: key})
	if err != nil {
		return nil, fmt.Errorf("marshal reconcile task: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

// ParseReconcileTask deserializes a ReconcileTask from a message payload.
func ParseReconcileTask(msg *message.Message) (*ReconcileTask, error) {
	task := &ReconcileTask{}
	if err := json.Unmarshal(msg.Payload, task); err != nil {
		return nil, fmt.Errorf("unmarshal reconcile task: %w", err)
	}
	if task.ContentKey == "" {
		return nil, fmt.Errorf("reconcile task missing content key")
	}
	return task, nil
}
