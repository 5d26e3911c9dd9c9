// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package translator

import (
	"time"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Session is a contiguous run of interaction ticks for one (user, content
// key) group. Closed sessions are final; an open session may still grow.
type Session struct {
	Start  time.Time
	End    time.Time
	Events []models.RawContentEvent
	Closed bool
}

// Duration is the elapsed time the session covers.
func (s *Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// FoldSessions groups occurrence-ordered events into sessions.
//
// A session closes when a pause or end tick arrives, or when the next tick
// is further than gap after the previous one; a gap close pins the end to
// the last tick seen, so silence never counts as engagement. The final
// session also gap-closes against now. At most the last returned session is
// open.
func FoldSessions(events []models.RawContentEvent, gap time.Duration, now time.Time) []Session {
	if len(events) == 0 {
		return nil
	}

	var sessions []Session
	current := Session{
		Start:  events[0].OccurredAt,
		End:    events[0].OccurredAt,
		Events: []models.RawContentEvent{events[0]},
	}
	closeCurrent := func() {
		current.Closed = true
		sessions = append(sessions, current)
	}

	if events[0].ActivityType.Closes() {
		closeCurrent()
		current = Session{}
	}

	for _, ev := range events[1:] {
		if current.Events == nil {
			current = Session{Start: ev.OccurredAt, End: ev.OccurredAt, Events: []models.RawContentEvent{ev}}
			if ev.ActivityType.Closes() {
				closeCurrent()
				current = Session{}
			}
			continue
		}

		if ev.OccurredAt.Sub(current.End) > gap {
			closeCurrent()
			current = Session{Start: ev.OccurredAt, End: ev.OccurredAt, Events: []models.RawContentEvent{ev}}
			if ev.ActivityType.Closes() {
				closeCurrent()
				current = Session{}
			}
			continue
		}

		current.End = ev.OccurredAt
		current.Events = append(current.Events, ev)
		if ev.ActivityType.Closes() {
			closeCurrent()
			current = Session{}
		}
	}

	if current.Events != nil {
		if now.Sub(current.End) > gap {
			current.Closed = true
		}
		sessions = append(sessions, current)
	}

	return sessions
}
