// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"fmt"

	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// YouTubeProcessor enriches youtube:* labels from the public oEmbed endpoint
// and detects the content language from the resolved metadata. Metadata
// lookup is best-effort: an unreachable oEmbed endpoint costs the title and
// thumbnail, never the label.
type YouTubeProcessor struct {
	oembed   *OEmbedClient
	detector Detector
}

// NewYouTubeProcessor creates the processor.
func NewYouTubeProcessor(oembed *OEmbedClient, detector Detector) *YouTubeProcessor {
	return &YouTubeProcessor{oembed: oembed, detector: detector}
}

// Source implements Processor.
func (p *YouTubeProcessor) Source() models.ContentSource {
	return models.SourceYouTube
}

// Process implements Processor.
func (p *YouTubeProcessor) Process(ctx context.Context, key models.ContentKey) (*models.LabelPatch, error) {
	videoID := key.ID()
	if videoID == "" {
		return nil, fmt.Errorf("content key %q has no video id", key)
	}

	watchURL := "https://www.youtube.com/watch?v=" + videoID
	meta, err := p.oembed.Fetch(ctx, watchURL)
	if err != nil {
		logging.Warn().Err(err).Str("content_key", string(key)).
			Msg("YouTube oEmbed lookup failed, labeling without metadata")
		meta = &oEmbedResponse{}
	}

	mediaType := models.MediaVideo
	patch := &models.LabelPatch{
		ContentURL:       &watchURL,
		ContentMediaType: &mediaType,
	}
	if meta.Title != "" {
		patch.Title = &meta.Title
	}
	if meta.AuthorName != "" {
		patch.AuthorName = &meta.AuthorName
	}
	if meta.ThumbnailURL != "" {
		patch.ThumbnailURL = &meta.ThumbnailURL
	}

	detection, err := p.detector.DetectLanguage(ctx, key, watchURL, meta.Title, meta.AuthorName)
	if err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}
	if detection.LanguageCode != "" {
		patch.ContentLanguageCode = &detection.LanguageCode
		patch.LanguageEvidence = &detection.Evidence
	}

	return patch, nil
}

// SpotifyProcessor enriches spotify:* labels. Spotify exposes the same
// unauthenticated oEmbed surface as YouTube, with the same best-effort
// contract.
type SpotifyProcessor struct {
	oembed   *OEmbedClient
	detector Detector
}

// NewSpotifyProcessor creates the processor.
func NewSpotifyProcessor(oembed *OEmbedClient, detector Detector) *SpotifyProcessor {
	return &SpotifyProcessor{oembed: oembed, detector: detector}
}

// Source implements Processor.
func (p *SpotifyProcessor) Source() models.ContentSource {
	return models.SourceSpotify
}

// Process implements Processor.
func (p *SpotifyProcessor) Process(ctx context.Context, key models.ContentKey) (*models.LabelPatch, error) {
	trackID := key.ID()
	if trackID == "" {
		return nil, fmt.Errorf("content key %q has no track id", key)
	}

	trackURL := "https://open.spotify.com/track/" + trackID
	meta, err := p.oembed.Fetch(ctx, trackURL)
	if err != nil {
		logging.Warn().Err(err).Str("content_key", string(key)).
			Msg("Spotify oEmbed lookup failed, labeling without metadata")
		meta = &oEmbedResponse{}
	}

	mediaType := models.MediaAudio
	patch := &models.LabelPatch{
		ContentURL:       &trackURL,
		ContentMediaType: &mediaType,
	}
	if meta.Title != "" {
		patch.Title = &meta.Title
	}
	if meta.ThumbnailURL != "" {
		patch.ThumbnailURL = &meta.ThumbnailURL
	}

	detection, err := p.detector.DetectLanguage(ctx, key, trackURL, meta.Title, meta.AuthorName)
	if err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}
	if detection.LanguageCode != "" {
		patch.ContentLanguageCode = &detection.LanguageCode
		patch.LanguageEvidence = &detection.Evidence
	}

	return patch, nil
}
