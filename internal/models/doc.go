// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package models defines data structures used throughout the StupidNeko
// application. These models represent raw content-interaction events, content
// labels, user labeling policies, language activities, and API responses.
package models
