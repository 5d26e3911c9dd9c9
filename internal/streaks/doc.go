// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package streaks integrates with the external streak service. The pipeline
// only needs two things from it: the current consecutive-day streak for XP
// bonuses, and a way to nudge users who have gone quiet. Both are
// best-effort; the pipeline works unchanged when the service is absent.
package streaks
