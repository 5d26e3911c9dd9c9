// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package experience implements the XP economy: pure leveling math and the
// award service that appends running-total ledger rows. Experience is
// granted exactly once per finalized activity; deletions are compensated
// with a negative ledger entry rather than rewriting history.
package experience
