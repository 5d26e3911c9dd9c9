// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package experience

import (
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Leveling curve: each level costs a bit more than the last, flattening out
// at the cap level so long-term progress stays linear.
const (
	baseLevelCost      = 100
	levelCostIncrement = 25
	levelCostCapLevel  = 50
)

// BaseXPPerMinute is the experience earned per minute of activity before
// multipliers.
const BaseXPPerMinute = 5

// MaxStreakBonusDays caps the streak bonus; a 30-day streak earns +30%.
const MaxStreakBonusDays = 30

// XPForNextLevel returns the cost of advancing from the given level to the
// next one. Levels start at 1.
func XPForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level >= levelCostCapLevel {
		return baseLevelCost + levelCostIncrement*(levelCostCapLevel-1)
	}
	return baseLevelCost + levelCostIncrement*int64(level-1)
}

// LevelState is the level position derived from a total experience amount.
type LevelState struct {
	Level         int
	Remainder     int64
	NextLevelCost int64
}

// LevelFromTotal derives level state from a lifetime experience total.
// Negative totals (possible transiently after reversals) clamp to level 1.
func LevelFromTotal(total int64) LevelState {
	if total < 0 {
		total = 0
	}

	level := 1
	remaining := total
	for {
		cost := XPForNextLevel(level)
		if remaining < cost {
			return LevelState{Level: level, Remainder: remaining, NextLevelCost: cost}
		}
		remaining -= cost
		level++
	}
}

// mediaMultipliers weight experience by how demanding the medium is.
// Reading is weighted highest, passive video lowest.
var mediaMultipliers = map[models.MediaType]float64{
	models.MediaVideo: 1.0,
	models.MediaAudio: 1.2,
	models.MediaText:  1.5,
}

// ForActivity computes the experience a finalized activity earns. Duration
// is the only driver; the media type scales it and an active streak adds up
// to +30%. Activities shorter than a minute still earn a floor of one
// minute's base XP so a just-over-threshold session is never worth zero.
func ForActivity(durationSeconds int64, mediaType *models.MediaType, streakDays int) int64 {
	minutes := float64(durationSeconds) / 60.0
	if minutes < 1 {
		minutes = 1
	}

	multiplier := 1.0
	if mediaType != nil {
		if m, ok := mediaMultipliers[*mediaType]; ok {
			multiplier = m
		}
	}

	if streakDays > MaxStreakBonusDays {
		streakDays = MaxStreakBonusDays
	}
	if streakDays > 0 {
		multiplier *= 1 + float64(streakDays)*0.01
	}

	return int64(minutes * BaseXPPerMinute * multiplier)
}
