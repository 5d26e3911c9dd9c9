// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package queue provides the in-process message router that drives
// asynchronous label work. Recording an event never blocks on enrichment:
// new content keys publish a task to the labels.process topic, and completed
// labels publish to labels.reconcile to fan cleanup out across users.
//
// Built on Watermill with a GoChannel Pub/Sub. The router stack gives
// handlers panic recovery, exponential-backoff retry, and poison-queue
// routing for messages that exhaust their retries.
package queue
