// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentSource identifies the integration a piece of content came from.
// It is encoded as the prefix of a ContentKey ("youtube:dQw4w9WgXcQ",
// "website:news.example.org") and selects the label processor responsible
// for enriching content from that source.
type ContentSource string

// Known content sources.
const (
	SourceYouTube ContentSource = "youtube"
	SourceSpotify ContentSource = "spotify"
	SourceWebsite ContentSource = "website"
	SourceManual  ContentSource = "manual"
)

// Valid reports whether the source is one of the known sources.
func (s ContentSource) Valid() bool {
	switch s {
	case SourceYouTube, SourceSpotify, SourceWebsite, SourceManual:
		return true
	}
	return false
}

// LanguageAgnostic reports whether content from this source intentionally
// never carries a language code. Website content is language-agnostic by
// design: a domain can host material in any language, so it is never
// excluded on language-mismatch grounds.
func (s ContentSource) LanguageAgnostic() bool {
	return s == SourceWebsite
}

// ContentKey is the canonical string identifying a piece of content across
// sources. It is the join key between raw events, content labels, and user
// policies. Format: "<source>:<source-specific id>".
type ContentKey string

// MakeContentKey builds a ContentKey from a source and a source-specific id.
func MakeContentKey(source ContentSource, id string) ContentKey {
	return ContentKey(string(source) + ":" + id)
}

// Source returns the ContentSource encoded in the key prefix.
// Returns an error for keys without a recognized prefix.
func (k ContentKey) Source() (ContentSource, error) {
	prefix, _, ok := strings.Cut(string(k), ":")
	if !ok {
		return "", fmt.Errorf("content key %q has no source prefix", string(k))
	}
	src := ContentSource(prefix)
	if !src.Valid() {
		return "", fmt.Errorf("content key %q has unknown source %q", string(k), prefix)
	}
	return src, nil
}

// ID returns the source-specific identifier portion of the key
// (the YouTube video id, the website domain, the Spotify track id).
func (k ContentKey) ID() string {
	_, rest, ok := strings.Cut(string(k), ":")
	if !ok {
		return ""
	}
	return rest
}

func (k ContentKey) String() string { return string(k) }

// ActivityType is the kind of interaction tick a source integration reports.
type ActivityType string

// Interaction tick kinds. Integrations emit these at their own cadence;
// the pipeline only interprets timestamps and grouping.
const (
	ActivityStart     ActivityType = "start"
	ActivityHeartbeat ActivityType = "heartbeat"
	ActivityPause     ActivityType = "pause"
	ActivityEnd       ActivityType = "end"
)

// Valid reports whether the activity type is one of the known tick kinds.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityStart, ActivityHeartbeat, ActivityPause, ActivityEnd:
		return true
	}
	return false
}

// Closes reports whether this tick closes the current session.
func (t ActivityType) Closes() bool {
	return t == ActivityPause || t == ActivityEnd
}

// RawContentEvent is a single interaction tick reported by a source
// integration. Events are ephemeral: each one is consumed (deleted) by
// exactly one of the session reconstructor's paths - folded into a finalized
// session, discarded as too-short noise, or removed by language-mismatch
// cleanup once the content label resolves.
type RawContentEvent struct {
	ID                  uuid.UUID    `json:"id"`
	UserID              uuid.UUID    `json:"user_id"`
	ContentKey          ContentKey   `json:"content_key"`
	ActivityType        ActivityType `json:"activity_type"`
	OccurredAt          time.Time    `json:"occurred_at"`
	IsWaitingOnLabeling bool         `json:"is_waiting_on_labeling"`
	CreatedAt           time.Time    `json:"created_at"`
}

// LabelStage is the processing state of a ContentLabel.
type LabelStage string

// Label lifecycle: queued -> processing -> completed | failed.
// A failed label is not automatically retried; re-entry happens only via an
// explicit retry trigger.
const (
	LabelQueued     LabelStage = "queued"
	LabelProcessing LabelStage = "processing"
	LabelCompleted  LabelStage = "completed"
	LabelFailed     LabelStage = "failed"
)

// Valid reports whether the stage is one of the lifecycle stages.
func (s LabelStage) Valid() bool {
	switch s {
	case LabelQueued, LabelProcessing, LabelCompleted, LabelFailed:
		return true
	}
	return false
}

// MediaType is the coarse media classification of labeled content.
type MediaType string

// Media classifications used by label processors.
const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaText  MediaType = "text"
)

// ContentLabel describes what a ContentKey refers to. There is exactly one
// label per distinct content item system-wide, shared by every user who
// interacts with that content. Labels are created lazily in the queued stage
// on the first event for a never-seen key and enriched asynchronously.
//
// Invariant: ContentLanguageCode is set if and only if Stage is completed,
// for sources that carry a language. Language-agnostic sources (website)
// complete without ever setting a language code.
type ContentLabel struct {
	ID               uuid.UUID     `json:"id"`
	ContentKey       ContentKey    `json:"content_key"`
	Stage            LabelStage    `json:"stage"`
	ContentSource    ContentSource `json:"content_source"`
	ContentURL       *string       `json:"content_url,omitempty"`
	ContentMediaType *MediaType    `json:"content_media_type,omitempty"`
	Title            *string       `json:"title,omitempty"`
	AuthorName       *string       `json:"author_name,omitempty"`
	Description      *string       `json:"description,omitempty"`
	ThumbnailURL     *string       `json:"thumbnail_url,omitempty"`
	FullDurationMS   *int64        `json:"full_duration_ms,omitempty"`

	// ContentLanguageCode is the detected ISO 639-1 language of the content.
	ContentLanguageCode *string `json:"content_language_code,omitempty"`
	// LanguageEvidence records why the detector chose the language.
	LanguageEvidence *string `json:"language_evidence,omitempty"`

	Attempts    int        `json:"attempts"`
	LastError   *string    `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// LanguageReady reports whether the label can gate events by language:
// completed with a detected language, or completed for a language-agnostic
// source.
func (l *ContentLabel) LanguageReady() bool {
	if l.Stage != LabelCompleted {
		return false
	}
	return l.ContentLanguageCode != nil || l.ContentSource.LanguageAgnostic()
}

// MatchesLanguage reports whether content with this label counts toward the
// given target language. Language-agnostic content matches every target;
// a completed label without a language (failed detection) matches none.
func (l *ContentLabel) MatchesLanguage(target string) bool {
	if l.Stage != LabelCompleted {
		return false
	}
	if l.ContentSource.LanguageAgnostic() {
		return true
	}
	return l.ContentLanguageCode != nil && *l.ContentLanguageCode == target
}

// LabelPatch is the enrichment a label processor produces on success.
// Nil fields are left untouched when the patch is applied.
type LabelPatch struct {
	ContentURL          *string
	ContentMediaType    *MediaType
	Title               *string
	AuthorName          *string
	Description         *string
	ThumbnailURL        *string
	FullDurationMS      *int64
	ContentLanguageCode *string
	LanguageEvidence    *string
}
