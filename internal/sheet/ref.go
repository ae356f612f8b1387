// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sheet

import (
	"errors"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBadRef indicates an unparseable cell or range reference.
	ErrBadRef = errors.New("invalid cell reference")
)

// =============================================================================
// CELL AND RANGE REFERENCES
// =============================================================================

// Range is a rectangular cell region in zero-based coordinates, inclusive
// on both ends. A single cell is a 1x1 range.
type Range struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Rows returns the number of rows covered by the range.
func (r Range) Rows() int { return r.EndRow - r.StartRow + 1 }

// Cols returns the number of columns covered by the range.
func (r Range) Cols() int { return r.EndCol - r.StartCol + 1 }

// Single returns true when the range covers exactly one cell.
func (r Range) Single() bool { return r.Rows() == 1 && r.Cols() == 1 }

// ParseCell parses a single A1-style reference like "B3".
// Returns zero-based row and column.
func ParseCell(ref string) (row, col int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return 0, 0, ErrBadRef
	}

	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, ErrBadRef
	}

	col = 0
	for _, c := range ref[:i] {
		col = col*26 + int(c-'A'+1)
	}
	col--

	row = 0
	for _, c := range ref[i:] {
		if c < '0' || c > '9' {
			return 0, 0, ErrBadRef
		}
		row = row*10 + int(c-'0')
	}
	if row == 0 {
		return 0, 0, ErrBadRef
	}
	return row - 1, col, nil
}

// ParseRange parses an A1-style range like "A1:B2". A bare cell reference
// is accepted and yields a single-cell range. The range is normalized so
// that start <= end on both axes.
func ParseRange(ref string) (Range, error) {
	parts := strings.SplitN(strings.TrimSpace(ref), ":", 2)

	r1, c1, err := ParseCell(parts[0])
	if err != nil {
		return Range{}, err
	}
	if len(parts) == 1 {
		return Range{StartRow: r1, StartCol: c1, EndRow: r1, EndCol: c1}, nil
	}

	r2, c2, err := ParseCell(parts[1])
	if err != nil {
		return Range{}, err
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	return Range{StartRow: r1, StartCol: c1, EndRow: r2, EndCol: c2}, nil
}

// ColumnLabel converts a zero-based column index to its letter label
// (0 -> "A", 25 -> "Z", 26 -> "AA").
func ColumnLabel(col int) string {
	label := ""
	for col >= 0 {
		label = string(rune('A'+col%26)) + label
		col = col/26 - 1
	}
	return label
}

// CellRef builds an A1-style reference from zero-based coordinates.
func CellRef(row, col int) string {
	return ColumnLabel(col) + itoa(row+1)
}

// itoa converts a non-negative int to its decimal string.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
