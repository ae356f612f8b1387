// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the full snapshot, styles and formulas included.
// This is the lossless format; ImportXLSX and the other exporters drop
// detail this one keeps.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType returns "application/json".
func (e *JSONExporter) MimeType() string { return "application/json" }

// Export renders the snapshot as indented JSON.
func (e *JSONExporter) Export(snap *sheet.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
