// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// XLSX EXPORTER
// =============================================================================

// XLSXExporter writes snapshots as Excel workbooks, styles included.
type XLSXExporter struct{}

// NewXLSXExporter creates an xlsx exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// FileExtension returns ".xlsx".
func (e *XLSXExporter) FileExtension() string { return ".xlsx" }

// MimeType returns the xlsx MIME type.
func (e *XLSXExporter) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export renders every sheet of the snapshot.
func (e *XLSXExporter) Export(snap *sheet.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Style IDs are cached per distinct style to keep the file small.
	styleIDs := make(map[styleKey]int)

	for i, ss := range snap.Sheets {
		name := ss.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("add sheet %q: %w", name, err)
			}
		}

		for row, line := range ss.Rows {
			for col, cell := range line {
				if cell.IsEmpty() {
					continue
				}
				ref := sheet.CellRef(row, col)

				if cell.Formula != "" {
					if err := f.SetCellFormula(name, ref, strings.TrimPrefix(cell.Formula, "=")); err != nil {
						return nil, fmt.Errorf("formula at %s: %w", ref, err)
					}
				} else if cell.Value != nil {
					if err := f.SetCellValue(name, ref, cell.Value); err != nil {
						return nil, fmt.Errorf("value at %s: %w", ref, err)
					}
				}

				if cell.Style != nil {
					id, err := styleID(f, styleIDs, *cell.Style)
					if err != nil {
						return nil, err
					}
					if err := f.SetCellStyle(name, ref, ref, id); err != nil {
						return nil, fmt.Errorf("style at %s: %w", ref, err)
					}
				}
			}
		}

		if ss.Name == snap.Active {
			idx, err := f.GetSheetIndex(name)
			if err == nil && idx >= 0 {
				f.SetActiveSheet(idx)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// styleKey is a CellStyle normalized for cache lookup. CellStyle carries
// *bool fields, so value-equal styles can live behind distinct pointers;
// collapsing to plain bools makes equal styles hit the same entry.
type styleKey struct {
	bold, italic                          bool
	textColor, backgroundColor, alignment string
}

func keyOf(s sheet.CellStyle) styleKey {
	k := styleKey{
		textColor:       s.TextColor,
		backgroundColor: s.BackgroundColor,
		alignment:       s.Alignment,
	}
	if s.Bold != nil {
		k.bold = *s.Bold
	}
	if s.Italic != nil {
		k.italic = *s.Italic
	}
	return k
}

// styleID converts a cell style to an excelize style, caching by value.
func styleID(f *excelize.File, cache map[styleKey]int, s sheet.CellStyle) (int, error) {
	key := keyOf(s)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if s.Bold != nil || s.Italic != nil || s.TextColor != "" {
		font := &excelize.Font{}
		if s.Bold != nil {
			font.Bold = *s.Bold
		}
		if s.Italic != nil {
			font.Italic = *s.Italic
		}
		if s.TextColor != "" {
			font.Color = strings.TrimPrefix(s.TextColor, "#")
		}
		style.Font = font
	}
	if s.BackgroundColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(s.BackgroundColor, "#")},
		}
	}
	if s.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: s.Alignment}
	}

	id, err := f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	cache[key] = id
	return id, nil
}

// =============================================================================
// XLSX IMPORT
// =============================================================================

// ImportXLSX reads an xlsx file into a snapshot. Formulas are preserved;
// cell styling is not round-tripped.
func ImportXLSX(path string) (*sheet.Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	snap := &sheet.Snapshot{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		ss := sheet.SheetSnapshot{Name: name}
		for r, line := range rows {
			cells := make([]sheet.Cell, len(line))
			for c, v := range line {
				if v == "" {
					continue
				}
				cells[c] = sheet.Cell{Value: v}

				ref := sheet.CellRef(r, c)
				if formula, err := f.GetCellFormula(name, ref); err == nil && formula != "" {
					cells[c].Formula = "=" + formula
					cells[c].Value = "=" + formula
				}
			}
			ss.Rows = append(ss.Rows, cells)
		}
		snap.Sheets = append(snap.Sheets, ss)
	}

	if len(snap.Sheets) > 0 {
		active := f.GetSheetName(f.GetActiveSheetIndex())
		if active == "" {
			active = snap.Sheets[0].Name
		}
		snap.Active = active
	}
	return snap, nil
}
