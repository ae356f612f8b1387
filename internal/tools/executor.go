// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// CALL AND RESULT
// =============================================================================

// Call is one tool invocation to execute: the transport-assigned call ID,
// the requested tool name, and its argument payload.
type Call struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// Result is the outcome of executing one Call. Exactly one Result is
// produced per Call. On success, Output carries the tool-specific payload
// including a "success" flag and echo fields; on failure Err classifies
// what went wrong.
type Result struct {
	CallID   string
	Output   map[string]interface{}
	Err      *ToolError
	Duration time.Duration
}

// OK returns true when the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrorText returns the failure description, or "" on success.
func (r Result) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// =============================================================================
// EXECUTION CONTEXT
// =============================================================================

// Context supplies a tool call with the live spreadsheet handle and the
// artifact-creation callback.
type Context struct {
	// Handle is the live document. May be nil before the widget mounts;
	// every tool call then fails with a NotReady result.
	Handle sheet.Handle

	// OnArtifact is invoked when a tool produces a new document.
	OnArtifact func(model.Artifact)
}

func (c Context) emitArtifact(a model.Artifact) {
	if c.OnArtifact != nil {
		c.OnArtifact(a)
	}
}

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor maps validated tool calls onto spreadsheet handle operations.
//
// The handle is a single mutable document, so execution is serialized: two
// calls never run concurrently against the same Executor. Errors of any
// kind, including panics inside an operation, resolve to an error Result.
type Executor struct {
	mu       sync.Mutex
	registry *Registry
	ectx     Context
}

// NewExecutor creates an executor over the given catalog and context.
func NewExecutor(registry *Registry, ectx Context) *Executor {
	return &Executor{registry: registry, ectx: ectx}
}

// Registry returns the tool catalog.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// SetHandle swaps the live handle (e.g. after the document mounts or the
// user navigates to another workbook).
func (e *Executor) SetHandle(h sheet.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ectx.Handle = h
}

// Execute runs one tool call to completion and returns its result.
// It never panics and never returns without a Result.
func (e *Executor) Execute(ctx context.Context, call Call) (result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	result.CallID = call.ID
	defer func() {
		if r := recover(); r != nil {
			result.Err = &ToolError{Kind: ErrExecution, Message: fmt.Sprintf("tool panicked: %v", r)}
			result.Output = nil
		}
		result.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.Err = executionError(err)
		return result
	}

	def, known := e.registry.Get(Name(call.Name))
	if !known {
		result.Err = unknownToolError(call.Name)
		return result
	}

	if e.ectx.Handle == nil {
		result.Err = notReadyError()
		return result
	}
	// createSpreadsheet is the initializer: it may run against a pending
	// handle and readies it. Everything else needs a ready document.
	if !e.ectx.Handle.Ready() && def.Name != ToolCreateSpreadsheet {
		result.Err = notReadyError()
		return result
	}

	if err := validateInput(def, call.Input); err != nil {
		result.Err = err
		return result
	}

	output, err := e.dispatch(def.Name, call.Input)
	if err != nil {
		result.Err = err
		return result
	}
	result.Output = output
	return result
}

// dispatch routes a call to its operation. The switch is exhaustive over
// the catalog; adding a tool means adding a case here.
func (e *Executor) dispatch(name Name, input map[string]interface{}) (map[string]interface{}, *ToolError) {
	switch name {
	case ToolCreateSpreadsheet:
		return e.createSpreadsheet(input)
	case ToolAddData:
		return e.addData(input)
	case ToolApplyFormula:
		return e.applyFormula(input)
	case ToolFormatCells:
		return e.formatCells(input)
	case ToolSortData:
		return e.sortData(input)
	case ToolFilterData:
		return e.filterData(input)
	case ToolCreateChart:
		return e.createChart(input)
	case ToolInsertPivotTable:
		return e.insertPivotTable(input)
	case ToolCalculateStats:
		return e.calculateStats(input)
	default:
		return nil, unknownToolError(string(name))
	}
}

// =============================================================================
// INPUT VALIDATION
// =============================================================================

// validateInput checks required arguments and argument types against the
// tool definition. Inputs normally arrive schema-validated upstream; this
// is the executor's last line of defense.
func validateInput(def Definition, input map[string]interface{}) *ToolError {
	for _, param := range def.Parameters {
		val, exists := input[param.Name]

		if param.Required && (!exists || val == nil) {
			return validationError(param.Name + ": required argument is missing")
		}
		if !exists || val == nil {
			continue
		}

		switch param.Type {
		case "string":
			s, ok := val.(string)
			if !ok {
				return validationError(param.Name + ": expected string")
			}
			if len(param.Enum) > 0 && !enumContains(param.Enum, s) {
				return validationError(param.Name + ": value not allowed: " + s)
			}
		case "number":
			switch val.(type) {
			case int, int64, float64:
				// OK
			default:
				return validationError(param.Name + ": expected number")
			}
		case "boolean":
			if _, ok := val.(bool); !ok {
				return validationError(param.Name + ": expected boolean")
			}
		case "array":
			if _, ok := val.([]interface{}); !ok {
				return validationError(param.Name + ": expected array")
			}
		}
	}
	return nil
}

func enumContains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ToolCompleteMsg indicates a tool call has finished executing.
type ToolCompleteMsg struct {
	Call   Call
	Result Result
}

// DefaultToolTimeout bounds a single tool call when the context carries
// no deadline.
const DefaultToolTimeout = 30 * time.Second

// ExecuteAsync runs the tool call off the UI loop and delivers a
// ToolCompleteMsg when done.
func (e *Executor) ExecuteAsync(call Call) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultToolTimeout)
		defer cancel()
		return ToolCompleteMsg{Call: call, Result: e.Execute(ctx, call)}
	}
}
