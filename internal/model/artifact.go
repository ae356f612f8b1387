// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// =============================================================================
// ARTIFACT TYPE
// =============================================================================

// ArtifactType classifies a generated document.
type ArtifactType string

const (
	ArtifactSheet ArtifactType = "sheet"
	ArtifactChart ArtifactType = "chart"
	ArtifactPivot ArtifactType = "pivot"
	ArtifactDoc   ArtifactType = "doc"
)

// String returns the string representation of the artifact type.
func (t ArtifactType) String() string {
	return string(t)
}

// Artifact is a generated document produced as a side effect of a tool
// call, displayable independently of the chat transcript. Artifact IDs are
// unique within a session's history; an artifact with an existing ID
// replaces the original rather than duplicating it.
type Artifact struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Type      ArtifactType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`

	// Data is the opaque document snapshot at creation time.
	Data json.RawMessage `json:"data,omitempty"`
}

// NewArtifact creates an artifact with the given identity and snapshot.
func NewArtifact(id, title string, typ ArtifactType, data json.RawMessage) Artifact {
	return Artifact{
		ID:        id,
		Title:     title,
		Type:      typ,
		CreatedAt: time.Now(),
		Data:      data,
	}
}
