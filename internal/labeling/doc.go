// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package labeling enriches content labels asynchronously. The first event
// for a never-seen content key creates a queued label and publishes a task;
// a worker then resolves metadata through a source-specific processor
// (YouTube and Spotify via their public oEmbed endpoints, websites from the
// domain itself) and detects the content language with an LLM. Completed
// labels trigger reconciliation of events that were recorded while the
// label was still pending.
package labeling
