// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// WebsiteProcessor enriches website:* labels. A website key identifies a
// domain, not a page; the domain can host material in any language, so the
// label completes without a language code and matches every target.
type WebsiteProcessor struct{}

// NewWebsiteProcessor creates the processor.
func NewWebsiteProcessor() *WebsiteProcessor {
	return &WebsiteProcessor{}
}

// Source implements Processor.
func (p *WebsiteProcessor) Source() models.ContentSource {
	return models.SourceWebsite
}

// Process implements Processor.
func (p *WebsiteProcessor) Process(_ context.Context, key models.ContentKey) (*models.LabelPatch, error) {
	domain := strings.ToLower(strings.TrimSpace(key.ID()))
	if domain == "" {
		return nil, fmt.Errorf("content key %q has no domain", key)
	}

	siteURL := "https://" + domain
	mediaType := models.MediaText
	return &models.LabelPatch{
		ContentURL:       &siteURL,
		ContentMediaType: &mediaType,
		Title:            &domain,
	}, nil
}
