// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sheet

import (
	"errors"
	"testing"
)

// =============================================================================
// REFERENCE PARSING TESTS
// =============================================================================

func TestParseCell(t *testing.T) {
	tests := []struct {
		ref     string
		row     int
		col     int
		wantErr bool
	}{
		{"A1", 0, 0, false},
		{"B3", 2, 1, false},
		{"Z10", 9, 25, false},
		{"AA1", 0, 26, false},
		{"ab2", 1, 27, false},
		{" C4 ", 3, 2, false},
		{"", 0, 0, true},
		{"A0", 0, 0, true},
		{"12", 0, 0, true},
		{"AB", 0, 0, true},
		{"A1B", 0, 0, true},
	}

	for _, tt := range tests {
		row, col, err := ParseCell(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCell(%q) expected error", tt.ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCell(%q) error: %v", tt.ref, err)
			continue
		}
		if row != tt.row || col != tt.col {
			t.Errorf("ParseCell(%q) = (%d,%d), want (%d,%d)", tt.ref, row, col, tt.row, tt.col)
		}
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("A1:B2")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if r.Rows() != 2 || r.Cols() != 2 {
		t.Errorf("A1:B2 = %dx%d, want 2x2", r.Rows(), r.Cols())
	}

	// Reversed corners normalize.
	r, err = ParseRange("B2:A1")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if r.StartRow != 0 || r.StartCol != 0 || r.EndRow != 1 || r.EndCol != 1 {
		t.Errorf("reversed range not normalized: %+v", r)
	}

	// Bare cell is a 1x1 range.
	r, err = ParseRange("C3")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if !r.Single() {
		t.Errorf("bare cell should be single range: %+v", r)
	}

	if _, err := ParseRange("A1:xyz"); err == nil {
		t.Error("expected error for bad range end")
	}
}

func TestColumnLabel(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for col, want := range cases {
		if got := ColumnLabel(col); got != want {
			t.Errorf("ColumnLabel(%d) = %q, want %q", col, got, want)
		}
	}
	if got := CellRef(2, 1); got != "B3" {
		t.Errorf("CellRef(2,1) = %q, want B3", got)
	}
}

// =============================================================================
// WORKBOOK TESTS
// =============================================================================

func TestWorkbook_SetGet(t *testing.T) {
	w := NewWorkbook()

	if err := w.SetCellValue("A1", "hello"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	v, err := w.GetCellValue("A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "hello" {
		t.Errorf("A1 = %v, want hello", v)
	}

	// Unset cells read as nil.
	v, err = w.GetCellValue("Z99")
	if err != nil || v != nil {
		t.Errorf("unset cell = (%v, %v), want (nil, nil)", v, err)
	}
}

func TestWorkbook_SetCellValues(t *testing.T) {
	w := NewWorkbook()
	err := w.SetCellValues("B2:C3", [][]interface{}{
		{1, 2},
		{3, 4},
	})
	if err != nil {
		t.Fatalf("SetCellValues: %v", err)
	}

	got, err := w.GetRangeValues("B2:C3")
	if err != nil {
		t.Fatalf("GetRangeValues: %v", err)
	}
	if got[0][0] != 1 || got[0][1] != 2 || got[1][0] != 3 || got[1][1] != 4 {
		t.Errorf("range values = %v", got)
	}
}

func TestWorkbook_ApplyFormulaNormalization(t *testing.T) {
	w := NewWorkbook()

	// Missing "=" is added.
	if err := w.ApplyFormula("A1", "SUM(B1:B5)"); err != nil {
		t.Fatalf("ApplyFormula: %v", err)
	}
	v, _ := w.GetCellValue("A1")
	if v != "=SUM(B1:B5)" {
		t.Errorf("A1 = %v, want =SUM(B1:B5)", v)
	}

	// Existing "=" is unchanged.
	if err := w.ApplyFormula("A2", "=AVERAGE(C1:C3)"); err != nil {
		t.Fatalf("ApplyFormula: %v", err)
	}
	v, _ = w.GetCellValue("A2")
	if v != "=AVERAGE(C1:C3)" {
		t.Errorf("A2 = %v, want =AVERAGE(C1:C3)", v)
	}
}

func TestWorkbook_FormatCells(t *testing.T) {
	w := NewWorkbook()
	w.SetCellValue("A1", "x")

	err := w.FormatCells("A1:B1", CellStyle{Bold: Bool(true)})
	if err != nil {
		t.Fatalf("FormatCells: %v", err)
	}
	err = w.FormatCells("A1", CellStyle{BackgroundColor: "#FF0000"})
	if err != nil {
		t.Fatalf("FormatCells: %v", err)
	}

	snap := w.WorkbookData()
	cell := snap.Sheets[0].Rows[0][0]
	if cell.Style == nil || cell.Style.Bold == nil || !*cell.Style.Bold {
		t.Error("A1 should be bold")
	}
	if cell.Style.BackgroundColor != "#FF0000" {
		t.Errorf("A1 background = %q, styles should merge", cell.Style.BackgroundColor)
	}
	// B1 got style even though it had no value.
	b1 := snap.Sheets[0].Rows[0][1]
	if b1.Style == nil || b1.Style.Bold == nil || !*b1.Style.Bold {
		t.Error("B1 should be bold")
	}
}

func TestWorkbook_CreateSheetWithData(t *testing.T) {
	w := NewWorkbook()
	err := w.CreateSheetWithData("Ventas", []string{"Mes", "Total"}, [][]string{
		{"Enero", "100"},
		{"Febrero", "200"},
	})
	if err != nil {
		t.Fatalf("CreateSheetWithData: %v", err)
	}

	if w.ActiveSheet() != "Ventas" {
		t.Errorf("active sheet = %q, want Ventas", w.ActiveSheet())
	}

	snap := w.WorkbookData()
	if snap.Active != "Ventas" {
		t.Errorf("snapshot active = %q", snap.Active)
	}
	var ventas *SheetSnapshot
	for i := range snap.Sheets {
		if snap.Sheets[i].Name == "Ventas" {
			ventas = &snap.Sheets[i]
		}
	}
	if ventas == nil {
		t.Fatal("Ventas sheet missing from snapshot")
	}
	if len(ventas.Rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header + 2 data)", len(ventas.Rows))
	}

	header := ventas.Rows[0][0]
	if header.Value != "Mes" {
		t.Errorf("header A1 = %v", header.Value)
	}
	if header.Style == nil || header.Style.Bold == nil || !*header.Style.Bold {
		t.Error("header should be bold")
	}
	if header.Style.BackgroundColor != HeaderBackground {
		t.Errorf("header background = %q, want %q", header.Style.BackgroundColor, HeaderBackground)
	}
	if ventas.Rows[1][1].Value != "100" {
		t.Errorf("B2 = %v, want 100", ventas.Rows[1][1].Value)
	}
}

func TestWorkbook_SortRange(t *testing.T) {
	w := NewWorkbook()
	w.SetCellValues("A1:B3", [][]interface{}{
		{"banana", "3"},
		{"apple", "10"},
		{"cherry", "2"},
	})

	// Sort by second column, numeric ascending.
	if err := w.SortRange("A1:B3", 1, true); err != nil {
		t.Fatalf("SortRange: %v", err)
	}
	got, _ := w.GetRangeValues("A1:A3")
	if got[0][0] != "cherry" || got[1][0] != "banana" || got[2][0] != "apple" {
		t.Errorf("numeric sort order wrong: %v", got)
	}

	// Sort by first column descending (lexical).
	if err := w.SortRange("A1:B3", 0, false); err != nil {
		t.Fatalf("SortRange: %v", err)
	}
	got, _ = w.GetRangeValues("A1:A3")
	if got[0][0] != "cherry" || got[2][0] != "apple" {
		t.Errorf("lexical desc order wrong: %v", got)
	}

	// Out-of-range column rejected.
	if err := w.SortRange("A1:B3", 5, true); !errors.Is(err, ErrBadRef) {
		t.Errorf("expected ErrBadRef, got %v", err)
	}
}

func TestWorkbook_NotReady(t *testing.T) {
	w := NewPendingWorkbook()

	if w.Ready() {
		t.Fatal("pending workbook should not be ready")
	}
	if err := w.SetCellValue("A1", 1); !errors.Is(err, ErrNotReady) {
		t.Errorf("SetCellValue = %v, want ErrNotReady", err)
	}
	if _, err := w.GetRangeValues("A1:B2"); !errors.Is(err, ErrNotReady) {
		t.Errorf("GetRangeValues = %v, want ErrNotReady", err)
	}
	if snap := w.WorkbookData(); snap != nil {
		t.Error("WorkbookData should be nil when not ready")
	}

	// Initialization happens exactly once.
	if !w.Initialize() {
		t.Fatal("first Initialize should succeed")
	}
	if w.Initialize() {
		t.Error("second Initialize should report false")
	}
	if !w.Ready() {
		t.Error("workbook should be ready after Initialize")
	}
}

func TestWorkbook_CreateSheetInitializesPending(t *testing.T) {
	w := NewPendingWorkbook()

	if err := w.CreateSheetWithData("Ventas", []string{"Mes"}, [][]string{{"Enero"}}); err != nil {
		t.Fatalf("CreateSheetWithData on pending workbook: %v", err)
	}
	if !w.Ready() {
		t.Fatal("workbook should be ready after the first create")
	}
	// The created sheet is the only sheet; no stray Sheet1.
	if names := w.SheetNames(); len(names) != 1 || names[0] != "Ventas" {
		t.Errorf("sheets = %v", names)
	}
	v, _ := w.GetCellValue("A2")
	if v != "Enero" {
		t.Errorf("A2 = %v, want Enero", v)
	}
}

func TestWorkbook_Reset(t *testing.T) {
	w := NewWorkbook()
	w.CreateSheetWithData("Data", []string{"A"}, [][]string{{"1"}})

	w.Reset()
	if w.Ready() {
		t.Fatal("workbook should be pending after Reset")
	}
	if snap := w.WorkbookData(); snap != nil {
		t.Error("WorkbookData should be nil after Reset")
	}

	// A reset workbook re-initializes like a fresh pending one.
	if !w.Initialize() {
		t.Error("Initialize after Reset should succeed")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	w := NewWorkbook()
	w.CreateSheetWithData("Data", []string{"A", "B"}, [][]string{{"1", "2"}})
	w.ApplyFormula("C2", "SUM(A2:B2)")

	snap := w.WorkbookData()
	raw, err := snap.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	restored, err := UnmarshalSnapshot(raw)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	w2 := NewPendingWorkbook()
	w2.Restore(restored)
	if !w2.Ready() {
		t.Fatal("restored workbook should be ready")
	}
	if w2.ActiveSheet() != "Data" {
		t.Errorf("restored active sheet = %q", w2.ActiveSheet())
	}
	v, _ := w2.GetCellValue("C2")
	if v != "=SUM(A2:B2)" {
		t.Errorf("restored formula = %v", v)
	}
}
