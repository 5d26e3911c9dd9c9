// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package experience

import (
	"testing"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

func TestXPForNextLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{1, 100},
		{2, 125},
		{10, 325},
		{49, 1300},
		{50, 1325},
		{51, 1325},
		{200, 1325},
		{0, 100}, // clamps to level 1
	}

	for _, tt := range tests {
		if got := XPForNextLevel(tt.level); got != tt.want {
			t.Errorf("XPForNextLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelFromTotal(t *testing.T) {
	tests := []struct {
		total         int64
		wantLevel     int
		wantRemainder int64
	}{
		{0, 1, 0},
		{99, 1, 99},
		{100, 2, 0},
		{101, 2, 1},
		{225, 3, 0}, // 100 + 125
		{224, 2, 124},
		{-50, 1, 0}, // negative totals clamp
	}

	for _, tt := range tests {
		state := LevelFromTotal(tt.total)
		if state.Level != tt.wantLevel || state.Remainder != tt.wantRemainder {
			t.Errorf("LevelFromTotal(%d) = level %d rem %d, want level %d rem %d",
				tt.total, state.Level, state.Remainder, tt.wantLevel, tt.wantRemainder)
		}
		if state.NextLevelCost != XPForNextLevel(state.Level) {
			t.Errorf("LevelFromTotal(%d) cost mismatch", tt.total)
		}
	}
}

func TestLevelFromTotal_Monotonic(t *testing.T) {
	prev := LevelFromTotal(0)
	for total := int64(1); total <= 20000; total += 37 {
		cur := LevelFromTotal(total)
		if cur.Level < prev.Level {
			t.Fatalf("level decreased from %d to %d at total %d", prev.Level, cur.Level, total)
		}
		prev = cur
	}
}

func TestForActivity(t *testing.T) {
	video := models.MediaVideo
	text := models.MediaText

	tests := []struct {
		name       string
		seconds    int64
		mediaType  *models.MediaType
		streakDays int
		want       int64
	}{
		{"ten minutes of video", 600, &video, 0, 50},
		{"ten minutes untyped", 600, nil, 0, 50},
		{"ten minutes of text", 600, &text, 0, 75},
		{"sub-minute floors to one minute", 30, &video, 0, 5},
		{"streak bonus applies", 600, &video, 10, 55},
		{"streak bonus caps at thirty days", 600, &video, 365, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForActivity(tt.seconds, tt.mediaType, tt.streakDays); got != tt.want {
				t.Errorf("ForActivity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestForActivity_LongerEarnsMore(t *testing.T) {
	video := models.MediaVideo
	prev := int64(0)
	for _, secs := range []int64{60, 300, 900, 3600, 7200} {
		got := ForActivity(secs, &video, 0)
		if got <= prev {
			t.Fatalf("ForActivity(%d) = %d, not above previous %d", secs, got, prev)
		}
		prev = got
	}
}
