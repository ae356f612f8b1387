// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sheet

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotReady indicates the handle has not finished initializing.
	ErrNotReady = errors.New("spreadsheet handle not ready")

	// ErrNoSheet indicates the workbook has no sheet with the given name.
	ErrNoSheet = errors.New("sheet not found")
)

// =============================================================================
// HANDLE INTERFACE
// =============================================================================

// Handle is the abstraction boundary around the live spreadsheet document.
// The tool executor performs exactly one Handle call per tool invocation.
//
// Implementations must be safe for use from a single goroutine at a time;
// callers serialize access (the executor holds one handle exclusively).
type Handle interface {
	// Ready reports whether the document is initialized and mutable.
	Ready() bool

	// SetCellValue writes one value at a single-cell reference.
	SetCellValue(ref string, value interface{}) error

	// SetCellValues writes a 2D block of values anchored at the start of
	// the given range.
	SetCellValues(ref string, rows [][]interface{}) error

	// GetCellValue reads the value at a single-cell reference.
	// Unset cells read as nil.
	GetCellValue(ref string) (interface{}, error)

	// GetRangeValues reads the values covered by a range, row-major.
	GetRangeValues(ref string) ([][]interface{}, error)

	// ApplyFormula stores a formula at a cell. A missing leading "=" is
	// added; an existing one is kept as-is.
	ApplyFormula(cell, formula string) error

	// FormatCells merges a style onto every cell in the range.
	FormatCells(ref string, style CellStyle) error

	// SortRange reorders the rows of a range by one of its columns.
	// col is zero-based relative to the range.
	SortRange(ref string, col int, ascending bool) error

	// CreateSheetWithData creates a sheet with a bold, light-gray header
	// row followed by the data rows, and makes it the active sheet. It is
	// the one operation allowed on a pending handle: the first create
	// initializes the document.
	CreateSheetWithData(title string, columns []string, rows [][]string) error

	// WorkbookData returns a snapshot of the whole document, or nil when
	// the handle is not ready.
	WorkbookData() *Snapshot
}

// =============================================================================
// CELL AND SNAPSHOT TYPES
// =============================================================================

// Cell is one grid cell: a value, an optional stored formula, and an
// optional style.
type Cell struct {
	Value   interface{} `json:"v,omitempty"`
	Formula string      `json:"f,omitempty"`
	Style   *CellStyle  `json:"s,omitempty"`
}

// IsEmpty returns true for a cell with no content and no style.
func (c Cell) IsEmpty() bool {
	return c.Value == nil && c.Formula == "" && c.Style == nil
}

// Snapshot is a serializable point-in-time copy of a workbook.
type Snapshot struct {
	Sheets []SheetSnapshot `json:"sheets"`
	Active string          `json:"active,omitempty"`
}

// SheetSnapshot is one sheet's dense cell grid.
type SheetSnapshot struct {
	Name string   `json:"name"`
	Rows [][]Cell `json:"rows"`
}

// Marshal encodes the snapshot as JSON.
func (s *Snapshot) Marshal() (json.RawMessage, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot previously produced by Marshal.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// =============================================================================
// WORKBOOK
// =============================================================================

type cellKey struct{ row, col int }

// gridSheet is one sheet's sparse cell storage.
type gridSheet struct {
	name   string
	cells  map[cellKey]Cell
	maxRow int
	maxCol int
}

func newGridSheet(name string) *gridSheet {
	return &gridSheet{
		name:   name,
		cells:  make(map[cellKey]Cell),
		maxRow: -1,
		maxCol: -1,
	}
}

func (g *gridSheet) set(row, col int, c Cell) {
	if c.IsEmpty() {
		delete(g.cells, cellKey{row, col})
		return
	}
	g.cells[cellKey{row, col}] = c
	if row > g.maxRow {
		g.maxRow = row
	}
	if col > g.maxCol {
		g.maxCol = col
	}
}

func (g *gridSheet) get(row, col int) Cell {
	return g.cells[cellKey{row, col}]
}

// Workbook is the in-memory Handle implementation: an ordered set of
// sparse cell grids. It is not safe for concurrent mutation; the owner
// serializes access.
type Workbook struct {
	mu     sync.Mutex
	sheets []*gridSheet
	active int
	ready  bool
}

// NewWorkbook creates a ready workbook with one empty sheet.
func NewWorkbook() *Workbook {
	return &Workbook{
		sheets: []*gridSheet{newGridSheet("Sheet1")},
		ready:  true,
	}
}

// NewPendingWorkbook creates a workbook that is not yet ready. Every
// Handle operation except CreateSheetWithData fails with ErrNotReady
// until the first create (or Initialize, or Restore) readies it.
func NewPendingWorkbook() *Workbook {
	return &Workbook{}
}

// Initialize makes a pending workbook ready. Initialization happens at
// most once; repeat calls report false and change nothing.
func (w *Workbook) Initialize() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ready {
		return false
	}
	w.sheets = []*gridSheet{newGridSheet("Sheet1")}
	w.active = 0
	w.ready = true
	return true
}

// Ready reports whether the workbook accepts operations.
func (w *Workbook) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// SheetNames returns the sheet names in order.
func (w *Workbook) SheetNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.name
	}
	return names
}

// ActiveSheet returns the name of the active sheet, or "" when not ready.
func (w *Workbook) ActiveSheet() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready || len(w.sheets) == 0 {
		return ""
	}
	return w.sheets[w.active].name
}

// activeLocked returns the active sheet. Caller holds the lock.
func (w *Workbook) activeLocked() *gridSheet {
	return w.sheets[w.active]
}

// =============================================================================
// HANDLE OPERATIONS
// =============================================================================

// SetCellValue writes one value at a single-cell reference.
func (w *Workbook) SetCellValue(ref string, value interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return ErrNotReady
	}
	row, col, err := ParseCell(ref)
	if err != nil {
		return err
	}
	g := w.activeLocked()
	c := g.get(row, col)
	c.Value = value
	c.Formula = ""
	g.set(row, col, c)
	return nil
}

// SetCellValues writes a 2D block of values anchored at the range start.
func (w *Workbook) SetCellValues(ref string, rows [][]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return ErrNotReady
	}
	rng, err := ParseRange(ref)
	if err != nil {
		return err
	}
	g := w.activeLocked()
	for i, rowVals := range rows {
		for j, v := range rowVals {
			c := g.get(rng.StartRow+i, rng.StartCol+j)
			c.Value = v
			c.Formula = ""
			g.set(rng.StartRow+i, rng.StartCol+j, c)
		}
	}
	return nil
}

// GetCellValue reads the value at a single-cell reference.
func (w *Workbook) GetCellValue(ref string) (interface{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return nil, ErrNotReady
	}
	row, col, err := ParseCell(ref)
	if err != nil {
		return nil, err
	}
	return w.activeLocked().get(row, col).Value, nil
}

// GetRangeValues reads all values covered by a range, row-major.
func (w *Workbook) GetRangeValues(ref string) ([][]interface{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return nil, ErrNotReady
	}
	rng, err := ParseRange(ref)
	if err != nil {
		return nil, err
	}
	g := w.activeLocked()
	out := make([][]interface{}, rng.Rows())
	for i := 0; i < rng.Rows(); i++ {
		out[i] = make([]interface{}, rng.Cols())
		for j := 0; j < rng.Cols(); j++ {
			out[i][j] = g.get(rng.StartRow+i, rng.StartCol+j).Value
		}
	}
	return out, nil
}

// ApplyFormula stores a formula at a cell, adding the leading "=" when
// missing. The formula is stored, not evaluated.
func (w *Workbook) ApplyFormula(cell, formula string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return ErrNotReady
	}
	row, col, err := ParseCell(cell)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}
	g := w.activeLocked()
	c := g.get(row, col)
	c.Formula = formula
	c.Value = formula
	g.set(row, col, c)
	return nil
}

// FormatCells merges a style onto every cell in the range.
func (w *Workbook) FormatCells(ref string, style CellStyle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return ErrNotReady
	}
	rng, err := ParseRange(ref)
	if err != nil {
		return err
	}
	if style.IsZero() {
		return nil
	}
	g := w.activeLocked()
	for row := rng.StartRow; row <= rng.EndRow; row++ {
		for col := rng.StartCol; col <= rng.EndCol; col++ {
			c := g.get(row, col)
			var base CellStyle
			if c.Style != nil {
				base = *c.Style
			}
			merged := base.merge(style)
			c.Style = &merged
			g.set(row, col, c)
		}
	}
	return nil
}

// SortRange reorders the rows of a range by one of its columns. col is
// zero-based relative to the range start. Values compare numerically when
// both sides parse as numbers, lexically otherwise. The sort is stable.
func (w *Workbook) SortRange(ref string, col int, ascending bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return ErrNotReady
	}
	rng, err := ParseRange(ref)
	if err != nil {
		return err
	}
	if col < 0 || col >= rng.Cols() {
		return ErrBadRef
	}

	g := w.activeLocked()

	// Lift the block out, reorder, write back.
	block := make([][]Cell, rng.Rows())
	for i := range block {
		block[i] = make([]Cell, rng.Cols())
		for j := range block[i] {
			block[i][j] = g.get(rng.StartRow+i, rng.StartCol+j)
		}
	}

	sort.SliceStable(block, func(a, b int) bool {
		less := compareCells(block[a][col], block[b][col])
		if ascending {
			return less < 0
		}
		return less > 0
	})

	for i := range block {
		for j := range block[i] {
			g.set(rng.StartRow+i, rng.StartCol+j, block[i][j])
		}
	}
	return nil
}

// CreateSheetWithData creates a sheet titled title with a bold header row
// on a light-gray background and the data rows beneath, then makes it the
// active sheet. An existing sheet with the same title is replaced.
//
// On a pending workbook the first create initializes the document: the
// new sheet becomes its only sheet and the workbook turns ready.
func (w *Workbook) CreateSheetWithData(title string, columns []string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		w.sheets = nil
		w.active = 0
		w.ready = true
	}

	g := newGridSheet(title)
	headerStyle := &CellStyle{Bold: Bool(true), BackgroundColor: HeaderBackground}
	for j, name := range columns {
		g.set(0, j, Cell{Value: name, Style: headerStyle})
	}
	for i, row := range rows {
		for j, v := range row {
			g.set(i+1, j, Cell{Value: v})
		}
	}

	for i, s := range w.sheets {
		if s.name == title {
			w.sheets[i] = g
			w.active = i
			return nil
		}
	}
	w.sheets = append(w.sheets, g)
	w.active = len(w.sheets) - 1
	return nil
}

// WorkbookData returns a dense snapshot of every sheet, or nil when the
// handle is not ready.
func (w *Workbook) WorkbookData() *Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return nil
	}

	snap := &Snapshot{Active: w.sheets[w.active].name}
	for _, g := range w.sheets {
		ss := SheetSnapshot{Name: g.name}
		for row := 0; row <= g.maxRow; row++ {
			line := make([]Cell, g.maxCol+1)
			for col := 0; col <= g.maxCol; col++ {
				line[col] = g.get(row, col)
			}
			ss.Rows = append(ss.Rows, line)
		}
		snap.Sheets = append(snap.Sheets, ss)
	}
	return snap
}

// Reset empties the workbook and returns it to the pending state. The
// next create_spreadsheet call (or Restore) makes it ready again.
func (w *Workbook) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sheets = nil
	w.active = 0
	w.ready = false
}

// Restore replaces the workbook contents from a snapshot and marks the
// workbook ready. Used when reopening a persisted document.
func (w *Workbook) Restore(snap *Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sheets = nil
	w.active = 0
	for i, ss := range snap.Sheets {
		g := newGridSheet(ss.Name)
		for row, line := range ss.Rows {
			for col, c := range line {
				g.set(row, col, c)
			}
		}
		w.sheets = append(w.sheets, g)
		if ss.Name == snap.Active {
			w.active = i
		}
	}
	if len(w.sheets) == 0 {
		w.sheets = []*gridSheet{newGridSheet("Sheet1")}
	}
	w.ready = true
}

// =============================================================================
// VALUE COMPARISON
// =============================================================================

// compareCells orders two cells by value: numeric when both sides parse
// as numbers, lexical otherwise. Empty cells sort last.
func compareCells(a, b Cell) int {
	av, bv := valueString(a.Value), valueString(b.Value)
	if av == "" && bv == "" {
		return 0
	}
	if av == "" {
		return 1
	}
	if bv == "" {
		return -1
	}

	af, aerr := strconv.ParseFloat(av, 64)
	bf, berr := strconv.ParseFloat(bv, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(av, bv)
}

// valueString renders a cell value for comparison and display.
func valueString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ValueString renders any cell value as display text.
func ValueString(v interface{}) string {
	return valueString(v)
}
