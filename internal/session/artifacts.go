// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"

	"github.com/jeranaias/sheetrun-tui/internal/model"
)

// =============================================================================
// ARTIFACT HISTORY
// =============================================================================

// ArtifactHistory tracks the documents produced during a session, newest
// first, with one of them marked current. IDs are unique: re-adding an
// existing ID replaces the original entry instead of duplicating it.
type ArtifactHistory struct {
	mu      sync.Mutex
	entries []model.Artifact
	current string // ID of the current artifact, "" when empty
}

// NewArtifactHistory creates an empty history.
func NewArtifactHistory() *ArtifactHistory {
	return &ArtifactHistory{}
}

// Add records an artifact and makes it current. A duplicate ID replaces
// the existing entry in place, keeping its position.
func (h *ArtifactHistory) Add(a model.Artifact) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.entries {
		if h.entries[i].ID == a.ID {
			h.entries[i] = a
			h.current = a.ID
			return
		}
	}
	h.entries = append([]model.Artifact{a}, h.entries...)
	h.current = a.ID
}

// Current returns the current artifact and true, or false when the
// history is empty.
func (h *ArtifactHistory) Current() (model.Artifact, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, a := range h.entries {
		if a.ID == h.current {
			return a, true
		}
	}
	return model.Artifact{}, false
}

// SetCurrent switches the current pointer. Returns false for unknown IDs,
// leaving the pointer untouched.
func (h *ArtifactHistory) SetCurrent(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, a := range h.entries {
		if a.ID == id {
			h.current = id
			return true
		}
	}
	return false
}

// Get returns the artifact with the given ID.
func (h *ArtifactHistory) Get(id string) (model.Artifact, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, a := range h.entries {
		if a.ID == id {
			return a, true
		}
	}
	return model.Artifact{}, false
}

// All returns the history newest first.
func (h *ArtifactHistory) All() []model.Artifact {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]model.Artifact, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of distinct artifacts.
func (h *ArtifactHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
