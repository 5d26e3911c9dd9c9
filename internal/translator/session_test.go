// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package translator

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

var foldBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// tick builds an event at base+offset.
func tick(offset time.Duration, typ models.ActivityType) models.RawContentEvent {
	return models.RawContentEvent{
		ID:           uuid.New(),
		UserID:       uuid.Nil,
		ContentKey:   "youtube:abc",
		ActivityType: typ,
		OccurredAt:   foldBase.Add(offset),
	}
}

func TestFoldSessions(t *testing.T) {
	gap := 2 * time.Minute

	tests := []struct {
		name   string
		events []models.RawContentEvent
		now    time.Time
		want   []struct {
			duration time.Duration
			events   int
			closed   bool
		}
	}{
		{
			name: "start heartbeats end",
			events: []models.RawContentEvent{
				tick(0, models.ActivityStart),
				tick(30*time.Second, models.ActivityHeartbeat),
				tick(90*time.Second, models.ActivityHeartbeat),
				tick(150*time.Second, models.ActivityEnd),
			},
			now: foldBase.Add(10 * time.Minute),
			want: []struct {
				duration time.Duration
				events   int
				closed   bool
			}{
				{150 * time.Second, 4, true},
			},
		},
		{
			name: "silence gap splits and pins the end",
			events: []models.RawContentEvent{
				tick(0, models.ActivityStart),
				tick(time.Minute, models.ActivityHeartbeat),
				// 20 minutes of silence; the first session must end at 1m,
				// not stretch across the gap.
				tick(21*time.Minute, models.ActivityHeartbeat),
				tick(22*time.Minute, models.ActivityEnd),
			},
			now: foldBase.Add(30 * time.Minute),
			want: []struct {
				duration time.Duration
				events   int
				closed   bool
			}{
				{time.Minute, 2, true},
				{time.Minute, 2, true},
			},
		},
		{
			name: "pause closes mid stream",
			events: []models.RawContentEvent{
				tick(0, models.ActivityStart),
				tick(time.Minute, models.ActivityPause),
				tick(90*time.Second, models.ActivityStart),
				tick(3*time.Minute, models.ActivityEnd),
			},
			now: foldBase.Add(10 * time.Minute),
			want: []struct {
				duration time.Duration
				events   int
				closed   bool
			}{
				{time.Minute, 2, true},
				{90 * time.Second, 2, true},
			},
		},
		{
			name: "trailing session stays open within gap",
			events: []models.RawContentEvent{
				tick(0, models.ActivityStart),
				tick(time.Minute, models.ActivityHeartbeat),
			},
			now: foldBase.Add(2 * time.Minute),
			want: []struct {
				duration time.Duration
				events   int
				closed   bool
			}{
				{time.Minute, 2, false},
			},
		},
		{
			name: "trailing session gap-closes against now",
			events: []models.RawContentEvent{
				tick(0, models.ActivityStart),
				tick(time.Minute, models.ActivityHeartbeat),
			},
			now: foldBase.Add(10 * time.Minute),
			want: []struct {
				duration time.Duration
				events   int
				closed   bool
			}{
				{time.Minute, 2, true},
			},
		},
		{
			name:   "no events",
			events: nil,
			now:    foldBase,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FoldSessions(tt.events, gap, tt.now)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sessions, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				s := got[i]
				if s.Duration() != w.duration {
					t.Errorf("session %d duration = %v, want %v", i, s.Duration(), w.duration)
				}
				if len(s.Events) != w.events {
					t.Errorf("session %d events = %d, want %d", i, len(s.Events), w.events)
				}
				if s.Closed != w.closed {
					t.Errorf("session %d closed = %v, want %v", i, s.Closed, w.closed)
				}
			}
		})
	}
}

func TestFoldSessions_EveryEventLandsExactlyOnce(t *testing.T) {
	events := []models.RawContentEvent{
		tick(0, models.ActivityStart),
		tick(time.Minute, models.ActivityPause),
		tick(5*time.Minute, models.ActivityStart),
		tick(6*time.Minute, models.ActivityHeartbeat),
		tick(30*time.Minute, models.ActivityStart),
	}

	sessions := FoldSessions(events, 2*time.Minute, foldBase.Add(31*time.Minute))

	seen := make(map[uuid.UUID]int)
	for _, s := range sessions {
		for _, ev := range s.Events {
			seen[ev.ID]++
		}
	}
	if len(seen) != len(events) {
		t.Fatalf("folded %d distinct events, want %d", len(seen), len(events))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("event %s appears %d times", id, n)
		}
	}
}
