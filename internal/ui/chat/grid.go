// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/ui/styles"
	"github.com/jeranaias/sheetrun-tui/internal/util"
)

// =============================================================================
// GRID PANE
// =============================================================================

// Column budget of one grid cell, separator included.
const gridCellWidth = 10

// renderGrid renders the active sheet of a snapshot as a bordered pane:
// a sheet tab strip, a column letter header, then numbered rows. Content
// that does not fit the pane is clipped, not wrapped.
func renderGrid(theme *styles.Theme, snap *sheet.Snapshot, width, height int) string {
	ss := activeSheet(snap)
	if ss == nil {
		return theme.GridPane.Width(width - 2).Render(
			theme.ThinkingText.Render("no sheet yet"))
	}

	// Reserve the row number gutter, then fit as many columns as the
	// pane width allows.
	const gutter = 4
	innerWidth := width - 4
	maxCols := (innerWidth - gutter) / gridCellWidth
	if maxCols < 1 {
		maxCols = 1
	}
	maxRows := height - 5 // tabs + header + borders
	if maxRows < 1 {
		maxRows = 1
	}

	cols := sheetCols(ss)
	if cols > maxCols {
		cols = maxCols
	}
	rows := len(ss.Rows)
	if rows > maxRows {
		rows = maxRows
	}

	var sb strings.Builder
	sb.WriteString(renderSheetTabs(theme, snap))
	sb.WriteString("\n")

	// Column letters
	sb.WriteString(theme.GridHeader.Render(pad("", gutter)))
	for c := 0; c < cols; c++ {
		sb.WriteString(theme.GridHeader.Render(pad(sheet.ColumnLabel(c), gridCellWidth)))
	}
	sb.WriteString("\n")

	for r := 0; r < rows; r++ {
		sb.WriteString(theme.GridHeader.Render(pad(util.IntToString(r+1), gutter)))
		for c := 0; c < cols; c++ {
			sb.WriteString(renderGridCell(theme, ss, r, c))
		}
		if r < rows-1 {
			sb.WriteString("\n")
		}
	}

	if len(ss.Rows) > rows || sheetCols(ss) > cols {
		sb.WriteString("\n")
		sb.WriteString(theme.ArtifactMeta.Render("(clipped)"))
	}

	return theme.GridPane.Width(width - 2).Render(sb.String())
}

func renderGridCell(theme *styles.Theme, ss *sheet.SheetSnapshot, row, col int) string {
	var cell sheet.Cell
	if row < len(ss.Rows) && col < len(ss.Rows[row]) {
		cell = ss.Rows[row][col]
	}

	text := pad(sheet.ValueString(cell.Value), gridCellWidth)
	switch {
	case cell.Formula != "":
		return theme.GridFormula.Render(text)
	case cell.Style != nil && cell.Style.Bold != nil && *cell.Style.Bold:
		return theme.GridBoldCell.Render(text)
	default:
		return theme.GridCell.Render(text)
	}
}

// renderSheetTabs renders the sheet name strip with the active sheet
// highlighted.
func renderSheetTabs(theme *styles.Theme, snap *sheet.Snapshot) string {
	var tabs []string
	for _, ss := range snap.Sheets {
		if ss.Name == snap.Active {
			tabs = append(tabs, theme.SheetTabActive.Render(ss.Name))
		} else {
			tabs = append(tabs, theme.SheetTab.Render(ss.Name))
		}
	}
	return strings.Join(tabs, "")
}

// activeSheet resolves the snapshot's active sheet, falling back to the
// first one.
func activeSheet(snap *sheet.Snapshot) *sheet.SheetSnapshot {
	if snap == nil || len(snap.Sheets) == 0 {
		return nil
	}
	for i := range snap.Sheets {
		if snap.Sheets[i].Name == snap.Active {
			return &snap.Sheets[i]
		}
	}
	return &snap.Sheets[0]
}

// sheetCols returns the widest row of the sheet.
func sheetCols(ss *sheet.SheetSnapshot) int {
	cols := 0
	for _, row := range ss.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// pad clips or right-pads a value into a fixed-width cell, leaving one
// trailing space as the column separator.
func pad(s string, width int) string {
	if util.StringWidth(s) > width-1 {
		// TruncateWidth appends an ellipsis, so leave room for it.
		s = util.TruncateWidth(s, width-4)
	}
	for util.StringWidth(s) < width {
		s += " "
	}
	return s
}
