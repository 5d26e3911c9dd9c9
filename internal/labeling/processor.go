// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"fmt"

	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Processor enriches labels for one content source.
type Processor interface {
	// Source returns the content source this processor handles.
	Source() models.ContentSource
	// Process resolves metadata and language for a content key. A returned
	// error marks the label failed; it is not retried automatically.
	Process(ctx context.Context, key models.ContentKey) (*models.LabelPatch, error)
}

// Registry dispatches label work to the processor registered for a source.
type Registry struct {
	processors map[models.ContentSource]Processor
}

// NewRegistry builds a registry from the given processors.
func NewRegistry(processors ...Processor) *Registry {
	r := &Registry{processors: make(map[models.ContentSource]Processor, len(processors))}
	for _, p := range processors {
		r.processors[p.Source()] = p
	}
	return r
}

// For returns the processor for a source, or an error if none is registered.
func (r *Registry) For(source models.ContentSource) (Processor, error) {
	p, ok := r.processors[source]
	if !ok {
		return nil, fmt.Errorf("no label processor registered for source %q", source)
	}
	return p, nil
}
