// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// INVOCATION STATE
// =============================================================================

// InvocationState tracks the lifecycle of a tool invocation.
// Transitions run pending -> executing -> {completed|error|cancelled} and
// never backward; a terminal invocation is immutable.
type InvocationState string

const (
	StatePending   InvocationState = "pending"
	StateExecuting InvocationState = "executing"
	StateCompleted InvocationState = "completed"
	StateError     InvocationState = "error"
	StateCancelled InvocationState = "cancelled"
)

// Terminal returns true for completed, error and cancelled states.
func (s InvocationState) Terminal() bool {
	switch s {
	case StateCompleted, StateError, StateCancelled:
		return true
	}
	return false
}

// canTransition reports whether moving from s to next is legal.
func (s InvocationState) canTransition(next InvocationState) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatePending:
		return next == StateExecuting || next == StateCancelled
	case StateExecuting:
		return next.Terminal()
	}
	return false
}

// =============================================================================
// TOOL INVOCATION
// =============================================================================

// ToolInvocation is one structured command emitted by the model: an
// operation name plus typed arguments, tracked through execution.
type ToolInvocation struct {
	// ID is the tool call identifier assigned by the transport.
	ID string `json:"id"`

	// Name is the requested tool name.
	Name string `json:"name"`

	// Input is the schema-validated argument payload.
	Input map[string]interface{} `json:"input,omitempty"`

	// State is the current lifecycle state.
	State InvocationState `json:"state"`

	// Result holds the outcome once the invocation is terminal.
	Result *ToolResult `json:"result,omitempty"`

	// Timestamps
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// NewToolInvocation creates a pending invocation.
func NewToolInvocation(id, name string, input map[string]interface{}) *ToolInvocation {
	return &ToolInvocation{
		ID:    id,
		Name:  name,
		Input: input,
		State: StatePending,
	}
}

// Begin moves the invocation to executing. Returns false if the transition
// is illegal (already executing or terminal).
func (inv *ToolInvocation) Begin() bool {
	if !inv.State.canTransition(StateExecuting) {
		return false
	}
	inv.State = StateExecuting
	inv.StartedAt = time.Now()
	return true
}

// Complete records a successful result and moves to the completed state.
func (inv *ToolInvocation) Complete(output map[string]interface{}) bool {
	if !inv.State.canTransition(StateCompleted) {
		return false
	}
	inv.State = StateCompleted
	inv.FinishedAt = time.Now()
	inv.Result = &ToolResult{ToolCallID: inv.ID, Output: output}
	return true
}

// Fail records an error result and moves to the error state.
func (inv *ToolInvocation) Fail(errorText string) bool {
	if !inv.State.canTransition(StateError) {
		return false
	}
	inv.State = StateError
	inv.FinishedAt = time.Now()
	inv.Result = &ToolResult{ToolCallID: inv.ID, ErrorText: errorText}
	return true
}

// Cancel moves a non-terminal invocation to cancelled.
func (inv *ToolInvocation) Cancel() bool {
	if !inv.State.canTransition(StateCancelled) {
		return false
	}
	inv.State = StateCancelled
	inv.FinishedAt = time.Now()
	inv.Result = &ToolResult{ToolCallID: inv.ID, ErrorText: "cancelled"}
	return true
}

// =============================================================================
// TOOL RESULT
// =============================================================================

// ToolResult is the single outcome of a tool invocation: either a
// structured success payload or an error description.
type ToolResult struct {
	// ToolCallID links the result back to its invocation.
	ToolCallID string `json:"toolCallId"`

	// Output is the tool-specific success payload.
	Output map[string]interface{} `json:"output,omitempty"`

	// ErrorText describes the failure when Output is absent.
	ErrorText string `json:"errorText,omitempty"`
}

// OK returns true if the result carries a success payload.
func (r *ToolResult) OK() bool {
	return r != nil && r.ErrorText == ""
}
