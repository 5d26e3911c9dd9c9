// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package models

import (
	"testing"
)

func TestContentKey_Source(t *testing.T) {
	tests := []struct {
		name    string
		key     ContentKey
		want    ContentSource
		wantErr bool
	}{
		{
			name: "youtube key",
			key:  "youtube:dQw4w9WgXcQ",
			want: SourceYouTube,
		},
		{
			name: "website key",
			key:  "website:news.example.org",
			want: SourceWebsite,
		},
		{
			name: "spotify key",
			key:  "spotify:4uLU6hMCjMI75M1A2tKUQC",
			want: SourceSpotify,
		},
		{
			name:    "missing prefix",
			key:     "dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "unknown source",
			key:     "vimeo:12345",
			wantErr: true,
		},
		{
			name:    "empty key",
			key:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.key.Source()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Source() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Source() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentKey_ID(t *testing.T) {
	if got := ContentKey("youtube:abc123").ID(); got != "abc123" {
		t.Errorf("ID() = %q, want %q", got, "abc123")
	}
	// Source-specific ids may themselves contain colons (spotify URIs).
	if got := ContentKey("spotify:track:xyz").ID(); got != "track:xyz" {
		t.Errorf("ID() = %q, want %q", got, "track:xyz")
	}
	if got := ContentKey("no-prefix").ID(); got != "" {
		t.Errorf("ID() = %q, want empty", got)
	}
}

func TestMakeContentKey(t *testing.T) {
	key := MakeContentKey(SourceYouTube, "dQw4w9WgXcQ")
	if key != "youtube:dQw4w9WgXcQ" {
		t.Errorf("MakeContentKey() = %q", key)
	}
	src, err := key.Source()
	if err != nil || src != SourceYouTube {
		t.Errorf("round trip failed: src=%v err=%v", src, err)
	}
}

func TestActivityType_Closes(t *testing.T) {
	tests := []struct {
		typ  ActivityType
		want bool
	}{
		{ActivityStart, false},
		{ActivityHeartbeat, false},
		{ActivityPause, true},
		{ActivityEnd, true},
	}
	for _, tt := range tests {
		if got := tt.typ.Closes(); got != tt.want {
			t.Errorf("%s.Closes() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestContentLabel_MatchesLanguage(t *testing.T) {
	ja := "ja"

	tests := []struct {
		name   string
		label  ContentLabel
		target string
		want   bool
	}{
		{
			name:   "completed with matching language",
			label:  ContentLabel{Stage: LabelCompleted, ContentSource: SourceYouTube, ContentLanguageCode: &ja},
			target: "ja",
			want:   true,
		},
		{
			name:   "completed with mismatched language",
			label:  ContentLabel{Stage: LabelCompleted, ContentSource: SourceYouTube, ContentLanguageCode: &ja},
			target: "ko",
			want:   false,
		},
		{
			name:   "completed without language on language-bearing source",
			label:  ContentLabel{Stage: LabelCompleted, ContentSource: SourceYouTube},
			target: "ja",
			want:   false,
		},
		{
			name:   "website content matches any target",
			label:  ContentLabel{Stage: LabelCompleted, ContentSource: SourceWebsite},
			target: "ko",
			want:   true,
		},
		{
			name:   "queued label never matches",
			label:  ContentLabel{Stage: LabelQueued, ContentSource: SourceYouTube, ContentLanguageCode: &ja},
			target: "ja",
			want:   false,
		},
		{
			name:   "failed label never matches",
			label:  ContentLabel{Stage: LabelFailed, ContentSource: SourceYouTube},
			target: "ja",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.label.MatchesLanguage(tt.target); got != tt.want {
				t.Errorf("MatchesLanguage(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestContentLabel_LanguageReady(t *testing.T) {
	ja := "ja"
	label := ContentLabel{Stage: LabelCompleted, ContentSource: SourceYouTube, ContentLanguageCode: &ja}
	if !label.LanguageReady() {
		t.Error("completed youtube label with language should be ready")
	}

	website := ContentLabel{Stage: LabelCompleted, ContentSource: SourceWebsite}
	if !website.LanguageReady() {
		t.Error("completed website label should be ready without a language")
	}

	pending := ContentLabel{Stage: LabelProcessing, ContentSource: SourceYouTube}
	if pending.LanguageReady() {
		t.Error("processing label should not be ready")
	}
}
