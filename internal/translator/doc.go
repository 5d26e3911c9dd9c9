// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package translator reconstructs sessions from raw interaction ticks. It
// runs as a periodic batch over the pending-work queue: per (user, content
// key) group it orders events by occurrence, folds them into sessions split
// on explicit pause/end ticks or silence gaps, discards too-short noise,
// and turns qualifying sessions into completed activities with experience
// awarded exactly once. Events are consumed as they are folded; a trailing
// still-open session stays behind as an in-progress activity.
package translator
