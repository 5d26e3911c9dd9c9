// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// fixedDetector returns a canned detection and records what it was asked.
type fixedDetector struct {
	detection Detection
	err       error

	gotURL    string
	gotTitle  string
	gotAuthor string
}

func (f *fixedDetector) DetectLanguage(_ context.Context, _ models.ContentKey, contentURL, title, author string) (*Detection, error) {
	f.gotURL, f.gotTitle, f.gotAuthor = contentURL, title, author
	if f.err != nil {
		return nil, f.err
	}
	d := f.detection
	return &d, nil
}

func newTestOEmbedClient(endpoint string) *OEmbedClient {
	return NewOEmbedClient("test", endpoint, 5*time.Second, 100, 100, 3, 0.6)
}

func TestYouTubeProcessor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
			t.Errorf("oembed url param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"日本語のビデオ","author_name":"SomeChannel","thumbnail_url":"https://i.ytimg.com/vi/x/hq.jpg"}`))
	}))
	defer srv.Close()

	detector := &fixedDetector{detection: Detection{LanguageCode: "ja", Evidence: "Japanese title"}}
	p := NewYouTubeProcessor(newTestOEmbedClient(srv.URL), detector)

	if p.Source() != models.SourceYouTube {
		t.Errorf("Source() = %v", p.Source())
	}

	patch, err := p.Process(context.Background(), "youtube:dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if patch.Title == nil || *patch.Title != "日本語のビデオ" {
		t.Errorf("Title = %v", patch.Title)
	}
	if patch.AuthorName == nil || *patch.AuthorName != "SomeChannel" {
		t.Errorf("AuthorName = %v", patch.AuthorName)
	}
	if patch.ContentMediaType == nil || *patch.ContentMediaType != models.MediaVideo {
		t.Errorf("ContentMediaType = %v", patch.ContentMediaType)
	}
	if patch.ContentLanguageCode == nil || *patch.ContentLanguageCode != "ja" {
		t.Errorf("ContentLanguageCode = %v", patch.ContentLanguageCode)
	}
	if detector.gotURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("detector url = %q, want the watch url", detector.gotURL)
	}
	if detector.gotTitle != "日本語のビデオ" {
		t.Errorf("detector title = %q", detector.gotTitle)
	}
}

func TestYouTubeProcessor_OEmbedFailureStillLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	detector := &fixedDetector{detection: Detection{LanguageCode: "ja", Evidence: "URL context"}}
	p := NewYouTubeProcessor(newTestOEmbedClient(srv.URL), detector)

	patch, err := p.Process(context.Background(), "youtube:gone")
	if err != nil {
		t.Fatalf("Process() error: %v (metadata lookup must be best-effort)", err)
	}
	if patch.Title != nil {
		t.Errorf("Title = %v, want unset without metadata", patch.Title)
	}
	if patch.ContentURL == nil || *patch.ContentURL != "https://www.youtube.com/watch?v=gone" {
		t.Errorf("ContentURL = %v", patch.ContentURL)
	}
	if patch.ContentMediaType == nil || *patch.ContentMediaType != models.MediaVideo {
		t.Errorf("ContentMediaType = %v", patch.ContentMediaType)
	}
	if patch.ContentLanguageCode == nil || *patch.ContentLanguageCode != "ja" {
		t.Errorf("ContentLanguageCode = %v, detection still runs on the url", patch.ContentLanguageCode)
	}
}

func TestSpotifyProcessor_OEmbedFailureStillLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewSpotifyProcessor(newTestOEmbedClient(srv.URL), &fixedDetector{})
	patch, err := p.Process(context.Background(), "spotify:gone")
	if err != nil {
		t.Fatalf("Process() error: %v (metadata lookup must be best-effort)", err)
	}
	if patch.ContentMediaType == nil || *patch.ContentMediaType != models.MediaAudio {
		t.Errorf("ContentMediaType = %v", patch.ContentMediaType)
	}
	if patch.ContentLanguageCode != nil {
		t.Error("language should stay unset when detection is inconclusive")
	}
}

func TestYouTubeProcessor_UnknownLanguageStillCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"????","author_name":"x"}`))
	}))
	defer srv.Close()

	p := NewYouTubeProcessor(newTestOEmbedClient(srv.URL), &fixedDetector{})
	patch, err := p.Process(context.Background(), "youtube:abc")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if patch.ContentLanguageCode != nil {
		t.Error("language should stay unset when detection is inconclusive")
	}
}

func TestSpotifyProcessor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"좋은 노래","thumbnail_url":"https://img.example/cover.jpg"}`))
	}))
	defer srv.Close()

	detector := &fixedDetector{detection: Detection{LanguageCode: "ko", Evidence: "Korean title"}}
	p := NewSpotifyProcessor(newTestOEmbedClient(srv.URL), detector)

	patch, err := p.Process(context.Background(), "spotify:4uLU6hMCjMI75M1A2tKUQC")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if patch.ContentMediaType == nil || *patch.ContentMediaType != models.MediaAudio {
		t.Errorf("ContentMediaType = %v", patch.ContentMediaType)
	}
	if patch.ContentLanguageCode == nil || *patch.ContentLanguageCode != "ko" {
		t.Errorf("ContentLanguageCode = %v", patch.ContentLanguageCode)
	}
}

func TestWebsiteProcessor(t *testing.T) {
	p := NewWebsiteProcessor()

	patch, err := p.Process(context.Background(), "website:News.Example.ORG")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if patch.ContentURL == nil || *patch.ContentURL != "https://news.example.org" {
		t.Errorf("ContentURL = %v", patch.ContentURL)
	}
	if patch.ContentMediaType == nil || *patch.ContentMediaType != models.MediaText {
		t.Errorf("ContentMediaType = %v", patch.ContentMediaType)
	}
	if patch.ContentLanguageCode != nil {
		t.Error("website labels never carry a language")
	}
}

func TestRegistry(t *testing.T) {
	website := NewWebsiteProcessor()
	r := NewRegistry(website)

	p, err := r.For(models.SourceWebsite)
	if err != nil || p != website {
		t.Errorf("For(website) = %v, %v", p, err)
	}
	if _, err := r.For(models.SourceYouTube); err == nil {
		t.Error("expected error for unregistered source")
	}
}
