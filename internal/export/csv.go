// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// CSV EXPORTER
// =============================================================================

// CSVExporter writes the active sheet as comma-separated values.
// CSV is a single-table format; other sheets are not included.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// FileExtension returns ".csv".
func (e *CSVExporter) FileExtension() string { return ".csv" }

// MimeType returns "text/csv".
func (e *CSVExporter) MimeType() string { return "text/csv" }

// Export renders the active sheet.
func (e *CSVExporter) Export(snap *sheet.Snapshot) ([]byte, error) {
	ss, ok := activeOrFirst(snap)
	if !ok {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, line := range ss.Rows {
		record := make([]string, len(line))
		for i, cell := range line {
			record[i] = sheet.ValueString(cell.Value)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
