// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// TOOL OPERATIONS
// =============================================================================
//
// Each operation performs exactly one call against the spreadsheet handle
// and echoes enough of its input in the output for the model to reason
// about what happened.

// createSpreadsheet creates a new sheet from columns and rows, records a
// sheet artifact from the handle's snapshot, and echoes the shape back.
func (e *Executor) createSpreadsheet(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	title := argString(input, "title")
	columns := argStringSlice(input, "columns")
	rows := argStringMatrix(input, "rows")

	if err := e.ectx.Handle.CreateSheetWithData(title, columns, rows); err != nil {
		return nil, executionError(err)
	}

	artifactID := uuid.NewString()
	var data json.RawMessage
	if snap := e.ectx.Handle.WorkbookData(); snap != nil {
		data, _ = snap.Marshal()
	}
	e.ectx.emitArtifact(model.NewArtifact(artifactID, title, model.ArtifactSheet, data))

	return map[string]interface{}{
		"success":    true,
		"title":      title,
		"columns":    columns,
		"rowCount":   len(rows),
		"artifactId": artifactID,
	}, nil
}

// addData writes a block of values anchored at the given range.
func (e *Executor) addData(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	ref := argString(input, "range")
	values := argMatrix(input, "values")

	if err := e.ectx.Handle.SetCellValues(ref, values); err != nil {
		return nil, executionError(err)
	}

	cols := 0
	if len(values) > 0 {
		cols = len(values[0])
	}
	return map[string]interface{}{
		"success": true,
		"range":   ref,
		"rows":    len(values),
		"cols":    cols,
	}, nil
}

// applyFormula stores a formula at a cell; the echoed formula carries the
// normalized leading "=".
func (e *Executor) applyFormula(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	cell := argString(input, "cell")
	formula := argString(input, "formula")

	if err := e.ectx.Handle.ApplyFormula(cell, formula); err != nil {
		return nil, executionError(err)
	}

	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}
	return map[string]interface{}{
		"success": true,
		"cell":    cell,
		"formula": formula,
	}, nil
}

// formatCells merges the requested style onto a range.
func (e *Executor) formatCells(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	ref := argString(input, "range")

	style := sheet.CellStyle{
		TextColor:       argString(input, "textColor"),
		BackgroundColor: argString(input, "backgroundColor"),
		Alignment:       argString(input, "alignment"),
	}
	if b, ok := input["bold"].(bool); ok {
		style.Bold = sheet.Bool(b)
	}
	if i, ok := input["italic"].(bool); ok {
		style.Italic = sheet.Bool(i)
	}

	if err := e.ectx.Handle.FormatCells(ref, style); err != nil {
		return nil, executionError(err)
	}
	return map[string]interface{}{
		"success": true,
		"range":   ref,
	}, nil
}

// sortData reorders the rows of a range by one of its columns.
func (e *Executor) sortData(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	ref := argString(input, "range")
	column := argInt(input, "column", 0)
	ascending := argBool(input, "ascending", true)

	if err := e.ectx.Handle.SortRange(ref, column, ascending); err != nil {
		return nil, executionError(err)
	}
	return map[string]interface{}{
		"success":   true,
		"range":     ref,
		"column":    column,
		"ascending": ascending,
	}, nil
}

// filterData reads a range and reports the rows whose column matches the
// given value, case-insensitively. The document is not mutated.
func (e *Executor) filterData(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	ref := argString(input, "range")
	column := argInt(input, "column", 0)
	value := argString(input, "value")

	grid, err := e.ectx.Handle.GetRangeValues(ref)
	if err != nil {
		return nil, executionError(err)
	}

	want := strings.ToLower(value)
	var matched [][]interface{}
	for _, row := range grid {
		if column < 0 || column >= len(row) {
			continue
		}
		if strings.ToLower(sheet.ValueString(row[column])) == want {
			matched = append(matched, row)
		}
	}

	return map[string]interface{}{
		"success": true,
		"range":   ref,
		"column":  column,
		"value":   value,
		"matches": len(matched),
		"rows":    matched,
	}, nil
}

// createChart verifies the data range and records a chart artifact. The
// document itself is not mutated; rendering is the display layer's job.
func (e *Executor) createChart(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	title := argString(input, "title")
	chartType := argString(input, "chartType")
	if chartType == "" {
		chartType = "bar"
	}
	dataRange := argString(input, "dataRange")

	// One handle read both validates the range and captures the data.
	grid, err := e.ectx.Handle.GetRangeValues(dataRange)
	if err != nil {
		return nil, executionError(err)
	}

	artifactID := uuid.NewString()
	data, _ := json.Marshal(map[string]interface{}{
		"title":     title,
		"chartType": chartType,
		"dataRange": dataRange,
		"values":    grid,
	})
	e.ectx.emitArtifact(model.NewArtifact(artifactID, title, model.ArtifactChart, data))

	return map[string]interface{}{
		"success":    true,
		"title":      title,
		"chartType":  chartType,
		"dataRange":  dataRange,
		"artifactId": artifactID,
	}, nil
}

// insertPivotTable verifies the source range and records a pivot artifact.
func (e *Executor) insertPivotTable(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	title := argString(input, "title")
	sourceRange := argString(input, "sourceRange")
	rowField := argString(input, "rowField")
	valueField := argString(input, "valueField")

	grid, err := e.ectx.Handle.GetRangeValues(sourceRange)
	if err != nil {
		return nil, executionError(err)
	}

	artifactID := uuid.NewString()
	data, _ := json.Marshal(map[string]interface{}{
		"title":       title,
		"sourceRange": sourceRange,
		"rowField":    rowField,
		"valueField":  valueField,
		"values":      grid,
	})
	e.ectx.emitArtifact(model.NewArtifact(artifactID, title, model.ArtifactPivot, data))

	return map[string]interface{}{
		"success":     true,
		"title":       title,
		"sourceRange": sourceRange,
		"rowField":    rowField,
		"valueField":  valueField,
		"artifactId":  artifactID,
	}, nil
}

// calculateStats computes one statistic over the numeric cells of a range.
func (e *Executor) calculateStats(input map[string]interface{}) (map[string]interface{}, *ToolError) {
	ref := argString(input, "range")
	op := argString(input, "operation")

	grid, err := e.ectx.Handle.GetRangeValues(ref)
	if err != nil {
		return nil, executionError(err)
	}

	var nums []float64
	for _, row := range grid {
		for _, v := range row {
			if f, ok := toFloat(v); ok {
				nums = append(nums, f)
			}
		}
	}

	var result float64
	switch op {
	case "count":
		result = float64(len(nums))
	case "sum", "average", "min", "max":
		if len(nums) == 0 {
			return nil, validationError("range contains no numeric values")
		}
		result = nums[0]
		sum := 0.0
		for _, n := range nums {
			sum += n
			if n < result && op == "min" {
				result = n
			}
			if n > result && op == "max" {
				result = n
			}
		}
		if op == "sum" {
			result = sum
		}
		if op == "average" {
			result = sum / float64(len(nums))
		}
	default:
		return nil, validationError("operation not allowed: " + op)
	}

	return map[string]interface{}{
		"success":   true,
		"range":     ref,
		"operation": op,
		"result":    result,
		"count":     len(nums),
	}, nil
}

// =============================================================================
// ARGUMENT COERCION
// =============================================================================
//
// Tool inputs arrive as decoded JSON, so numbers are float64 and nested
// arrays are []interface{}. These helpers flatten that into the shapes
// the handle wants.

func argString(input map[string]interface{}, key string) string {
	s, _ := input[key].(string)
	return s
}

func argBool(input map[string]interface{}, key string, def bool) bool {
	if b, ok := input[key].(bool); ok {
		return b
	}
	return def
}

func argInt(input map[string]interface{}, key string, def int) int {
	switch v := input[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

func argStringSlice(input map[string]interface{}, key string) []string {
	raw, ok := input[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, coerceString(v))
	}
	return out
}

func argStringMatrix(input map[string]interface{}, key string) [][]string {
	raw, ok := input[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([][]string, 0, len(raw))
	for _, rowRaw := range raw {
		row, ok := rowRaw.([]interface{})
		if !ok {
			continue
		}
		line := make([]string, 0, len(row))
		for _, v := range row {
			line = append(line, coerceString(v))
		}
		out = append(out, line)
	}
	return out
}

func argMatrix(input map[string]interface{}, key string) [][]interface{} {
	raw, ok := input[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([][]interface{}, 0, len(raw))
	for _, rowRaw := range raw {
		if row, ok := rowRaw.([]interface{}); ok {
			out = append(out, row)
		}
	}
	return out
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
