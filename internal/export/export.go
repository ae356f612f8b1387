// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes workbook snapshots to interchange formats and
// imports xlsx files back into snapshots.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a workbook snapshot to a target format.
type Exporter interface {
	// Export renders the snapshot and returns the file content.
	Export(snap *sheet.Snapshot) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".xlsx").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// ForFormat returns the exporter for a format name: "xlsx", "csv",
// "json" or "md".
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "xlsx":
		return NewXLSXExporter(), nil
	case "csv":
		return NewCSVExporter(), nil
	case "json":
		return NewJSONExporter(), nil
	case "md", "markdown":
		return NewMarkdownExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format: %q", format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are saved.
	// Default: current working directory
	OutputDir string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes a snapshot to a timestamped file named after the
// workbook title. Returns the output path.
func ExportToFile(snap *sheet.Snapshot, title string, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if snap == nil {
		return "", fmt.Errorf("nothing to export: document not ready")
	}

	content, err := exporter.Export(snap)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s%s", sanitizeFilename(title), timestamp, exporter.FileExtension())

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFileWithDir(outputPath, content, 0644, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in
// filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "workbook"
	}
	return string(result)
}

// activeOrFirst picks the sheet to use for single-sheet formats.
func activeOrFirst(snap *sheet.Snapshot) (sheet.SheetSnapshot, bool) {
	if len(snap.Sheets) == 0 {
		return sheet.SheetSnapshot{}, false
	}
	for _, ss := range snap.Sheets {
		if ss.Name == snap.Active {
			return ss, true
		}
	}
	return snap.Sheets[0], true
}
