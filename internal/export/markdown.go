// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes every sheet as a GitHub-style table under a
// heading. The first row of each sheet becomes the table header.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns "text/markdown".
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// Export renders the snapshot.
func (e *MarkdownExporter) Export(snap *sheet.Snapshot) ([]byte, error) {
	var sb strings.Builder

	for i, ss := range snap.Sheets {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n", ss.Name)

		if len(ss.Rows) == 0 {
			sb.WriteString("*(empty)*\n")
			continue
		}

		width := 0
		for _, line := range ss.Rows {
			if len(line) > width {
				width = len(line)
			}
		}

		for r, line := range ss.Rows {
			sb.WriteString("|")
			for c := 0; c < width; c++ {
				v := ""
				if c < len(line) {
					v = sheet.ValueString(line[c].Value)
				}
				sb.WriteString(" " + escapeCell(v) + " |")
			}
			sb.WriteString("\n")

			if r == 0 {
				sb.WriteString("|")
				for c := 0; c < width; c++ {
					sb.WriteString(" --- |")
				}
				sb.WriteString("\n")
			}
		}
	}

	return []byte(sb.String()), nil
}

// escapeCell keeps pipes and newlines from breaking the table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
