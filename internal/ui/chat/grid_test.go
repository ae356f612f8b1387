// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/ui/styles"
	"github.com/jeranaias/sheetrun-tui/internal/util"
)

// =============================================================================
// GRID HELPERS
// =============================================================================

func TestPad(t *testing.T) {
	tests := []struct {
		input string
		width int
	}{
		{"", 10},
		{"Revenue", 10},
		{"a value that is far too long", 10},
		{"exact-fit", 10},
	}
	for _, tt := range tests {
		got := pad(tt.input, tt.width)
		if w := util.StringWidth(got); w != tt.width {
			t.Errorf("pad(%q, %d) width = %d, want %d", tt.input, tt.width, w, tt.width)
		}
	}
}

func TestActiveSheet(t *testing.T) {
	snap := &sheet.Snapshot{
		Sheets: []sheet.SheetSnapshot{{Name: "Data"}, {Name: "Summary"}},
		Active: "Summary",
	}
	if ss := activeSheet(snap); ss == nil || ss.Name != "Summary" {
		t.Errorf("activeSheet = %v", ss)
	}

	// Unknown active name falls back to the first sheet.
	snap.Active = "Gone"
	if ss := activeSheet(snap); ss == nil || ss.Name != "Data" {
		t.Errorf("fallback activeSheet = %v", ss)
	}

	if ss := activeSheet(nil); ss != nil {
		t.Errorf("activeSheet(nil) = %v", ss)
	}
	if ss := activeSheet(&sheet.Snapshot{}); ss != nil {
		t.Errorf("activeSheet(empty) = %v", ss)
	}
}

func TestSheetCols(t *testing.T) {
	ss := &sheet.SheetSnapshot{Rows: [][]sheet.Cell{
		make([]sheet.Cell, 2),
		make([]sheet.Cell, 5),
		make([]sheet.Cell, 3),
	}}
	if got := sheetCols(ss); got != 5 {
		t.Errorf("sheetCols = %d, want 5", got)
	}
	if got := sheetCols(&sheet.SheetSnapshot{}); got != 0 {
		t.Errorf("sheetCols(empty) = %d, want 0", got)
	}
}

func TestRenderGrid(t *testing.T) {
	theme := styles.NewTheme()
	theme.SetSize(120, 40)

	wb := sheet.NewWorkbook()
	if err := wb.CreateSheetWithData("Budget",
		[]string{"Item", "Cost"},
		[][]string{{"Rent", "1200"}, {"Food", "450"}},
	); err != nil {
		t.Fatalf("CreateSheetWithData: %v", err)
	}

	out := renderGrid(theme, wb.WorkbookData(), 48, 20)
	for _, want := range []string{"Budget", "A", "B", "Rent", "1200"} {
		if !strings.Contains(out, want) {
			t.Errorf("grid output missing %q", want)
		}
	}
}

func TestRenderGrid_Empty(t *testing.T) {
	theme := styles.NewTheme()
	out := renderGrid(theme, nil, 40, 20)
	if !strings.Contains(out, "no sheet yet") {
		t.Errorf("empty grid output = %q", out)
	}
}

func TestRenderGrid_Clipped(t *testing.T) {
	theme := styles.NewTheme()

	rows := make([][]string, 100)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	wb := sheet.NewWorkbook()
	if err := wb.CreateSheetWithData("Big", []string{"Col"}, rows); err != nil {
		t.Fatalf("CreateSheetWithData: %v", err)
	}

	out := renderGrid(theme, wb.WorkbookData(), 40, 12)
	if !strings.Contains(out, "(clipped)") {
		t.Error("clipped marker missing")
	}
}

// =============================================================================
// TOOL LINES
// =============================================================================

func TestFormatToolLine(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		inv  *model.ToolInvocation
		want string
	}{
		{
			name: "pending",
			inv:  &model.ToolInvocation{Name: "set_cell", State: model.StatePending},
			want: "[ ] set_cell",
		},
		{
			name: "executing",
			inv:  &model.ToolInvocation{Name: "sort_range", State: model.StateExecuting},
			want: "[~] sort_range ...",
		},
		{
			name: "completed",
			inv: &model.ToolInvocation{
				Name: "create_sheet", State: model.StateCompleted,
				StartedAt: now, FinishedAt: now.Add(120 * time.Millisecond),
			},
			want: "[OK] create_sheet (120ms)",
		},
		{
			name: "error",
			inv: &model.ToolInvocation{
				Name: "apply_formula", State: model.StateError,
				Result: &model.ToolResult{ErrorText: "invalid cell ref"},
			},
			want: "[X] apply_formula: invalid cell ref",
		},
		{
			name: "cancelled",
			inv:  &model.ToolInvocation{Name: "format_cells", State: model.StateCancelled},
			want: "[X] format_cells: cancelled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatToolLine(tt.inv); got != tt.want {
				t.Errorf("formatToolLine = %q, want %q", got, tt.want)
			}
		})
	}
}
