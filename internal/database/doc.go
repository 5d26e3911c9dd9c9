// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package database provides the embedded DuckDB persistence layer: raw
// content events, content labels, user policies, language activities, the
// experience ledger, and the pending-work queue the batch translator drains.
package database
