// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package models

import (
	"time"

	"github.com/google/uuid"
)

// PolicyKind is the effect of a user content-label policy.
type PolicyKind string

// Policy kinds. Block is the only enforced kind: it suppresses all future
// event recording for the key. Allow is stored as advisory fast-path
// metadata and does not bypass labeling or language matching.
const (
	PolicyAllow PolicyKind = "allow"
	PolicyBlock PolicyKind = "block"
)

// Valid reports whether the kind is a known policy kind.
func (k PolicyKind) Valid() bool {
	return k == PolicyAllow || k == PolicyBlock
}

// UserContentLabelPolicy is a user-authored allow/block rule for a content
// key. At most one policy exists per (user, content key); the policy is
// consulted before any event is recorded.
type UserContentLabelPolicy struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ContentKey    ContentKey    `json:"content_key"`
	PolicyKind    PolicyKind    `json:"policy_kind"`
	ContentSource ContentSource `json:"content_source"`
	ContentURL    *string       `json:"content_url,omitempty"`
	Label         *string       `json:"label,omitempty"`
	Note          *string       `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
