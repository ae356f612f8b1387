// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

// =============================================================================
// TOOL NAMES
// =============================================================================

// Name identifies one of the fixed spreadsheet tools. The set is closed:
// the executor dispatches over it exhaustively and anything else resolves
// to an unknown-tool error result.
type Name string

const (
	ToolCreateSpreadsheet Name = "createSpreadsheet"
	ToolAddData           Name = "addData"
	ToolApplyFormula      Name = "applyFormula"
	ToolFormatCells       Name = "formatCells"
	ToolSortData          Name = "sortData"
	ToolFilterData        Name = "filterData"
	ToolCreateChart       Name = "createChart"
	ToolInsertPivotTable  Name = "insertPivotTable"
	ToolCalculateStats    Name = "calculateStats"
)

// KnownTools returns every tool name in catalog order.
func KnownTools() []Name {
	return []Name{
		ToolCreateSpreadsheet,
		ToolAddData,
		ToolApplyFormula,
		ToolFormatCells,
		ToolSortData,
		ToolFilterData,
		ToolCreateChart,
		ToolInsertPivotTable,
		ToolCalculateStats,
	}
}

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// Parameter describes one argument of a tool, JSON-Schema style.
type Parameter struct {
	// Name of the argument
	Name string

	// Type is the JSON type: "string", "number", "boolean", "array"
	Type string

	// Description explains the argument to the model
	Description string

	// Required indicates the argument must be provided
	Required bool

	// Enum lists allowed values for string arguments
	Enum []string
}

// Definition describes one tool: its name, what it does, and the
// arguments it accepts.
type Definition struct {
	Name        Name
	Description string
	Parameters  []Parameter
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the tool catalog.
type Registry struct {
	defs  map[Name]Definition
	order []Name
}

// NewRegistry creates a registry populated with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[Name]Definition)}
	for _, def := range builtinDefinitions() {
		r.register(def)
	}
	return r
}

func (r *Registry) register(def Definition) {
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
}

// Get retrieves a definition by name. Returns the definition and true
// when found.
func (r *Registry) Get(name Name) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// All returns every definition in catalog order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// =============================================================================
// BUILT-IN CATALOG
// =============================================================================

func builtinDefinitions() []Definition {
	return []Definition{
		{
			Name:        ToolCreateSpreadsheet,
			Description: "Create a new spreadsheet with a header row and initial data rows.",
			Parameters: []Parameter{
				{Name: "title", Type: "string", Description: "Sheet title", Required: true},
				{Name: "columns", Type: "array", Description: "Column header names", Required: true},
				{Name: "rows", Type: "array", Description: "Data rows, one array of cell values per row"},
			},
		},
		{
			Name:        ToolAddData,
			Description: "Write a block of values into a cell range of the current sheet.",
			Parameters: []Parameter{
				{Name: "range", Type: "string", Description: "Target range in A1 notation, e.g. A2:C4", Required: true},
				{Name: "values", Type: "array", Description: "2D array of cell values, row-major", Required: true},
			},
		},
		{
			Name:        ToolApplyFormula,
			Description: "Store a formula in a cell. The leading '=' may be omitted.",
			Parameters: []Parameter{
				{Name: "cell", Type: "string", Description: "Target cell in A1 notation", Required: true},
				{Name: "formula", Type: "string", Description: "Formula text, e.g. SUM(B2:B10)", Required: true},
			},
		},
		{
			Name:        ToolFormatCells,
			Description: "Apply visual formatting to a cell range.",
			Parameters: []Parameter{
				{Name: "range", Type: "string", Description: "Target range in A1 notation", Required: true},
				{Name: "bold", Type: "boolean", Description: "Bold text"},
				{Name: "italic", Type: "boolean", Description: "Italic text"},
				{Name: "textColor", Type: "string", Description: "Text color as #RRGGBB"},
				{Name: "backgroundColor", Type: "string", Description: "Fill color as #RRGGBB"},
				{Name: "alignment", Type: "string", Description: "Horizontal alignment", Enum: []string{"left", "center", "right"}},
			},
		},
		{
			Name:        ToolSortData,
			Description: "Sort the rows of a range by one of its columns.",
			Parameters: []Parameter{
				{Name: "range", Type: "string", Description: "Range to sort in A1 notation", Required: true},
				{Name: "column", Type: "number", Description: "Zero-based column offset within the range (default 0)"},
				{Name: "ascending", Type: "boolean", Description: "Sort ascending (default true)"},
			},
		},
		{
			Name:        ToolFilterData,
			Description: "Find the rows of a range whose column matches a value. Read-only.",
			Parameters: []Parameter{
				{Name: "range", Type: "string", Description: "Range to filter in A1 notation", Required: true},
				{Name: "column", Type: "number", Description: "Zero-based column offset within the range (default 0)"},
				{Name: "value", Type: "string", Description: "Value to match (case-insensitive)", Required: true},
			},
		},
		{
			Name:        ToolCreateChart,
			Description: "Register a chart over a data range. The chart is tracked as an artifact.",
			Parameters: []Parameter{
				{Name: "title", Type: "string", Description: "Chart title", Required: true},
				{Name: "chartType", Type: "string", Description: "Chart kind", Enum: []string{"bar", "line", "pie"}},
				{Name: "dataRange", Type: "string", Description: "Source range in A1 notation", Required: true},
			},
		},
		{
			Name:        ToolInsertPivotTable,
			Description: "Register a pivot table over a source range. The pivot is tracked as an artifact.",
			Parameters: []Parameter{
				{Name: "title", Type: "string", Description: "Pivot table title", Required: true},
				{Name: "sourceRange", Type: "string", Description: "Source range in A1 notation", Required: true},
				{Name: "rowField", Type: "string", Description: "Column header used for pivot rows"},
				{Name: "valueField", Type: "string", Description: "Column header aggregated per row"},
			},
		},
		{
			Name:        ToolCalculateStats,
			Description: "Compute a statistic over the numeric cells of a range. Read-only.",
			Parameters: []Parameter{
				{Name: "range", Type: "string", Description: "Source range in A1 notation", Required: true},
				{Name: "operation", Type: "string", Description: "Statistic to compute", Required: true,
					Enum: []string{"sum", "average", "min", "max", "count"}},
			},
		},
	}
}
