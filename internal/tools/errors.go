// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// ErrorKind classifies why a tool call failed.
type ErrorKind int

const (
	// ErrNone - no error
	ErrNone ErrorKind = iota

	// ErrNotReady - the spreadsheet handle is not initialized
	ErrNotReady

	// ErrUnknownTool - the model requested a tool outside the catalog
	ErrUnknownTool

	// ErrValidation - malformed tool input
	ErrValidation

	// ErrExecution - the handle operation itself failed
	ErrExecution
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "None"
	case ErrNotReady:
		return "NotReady"
	case ErrUnknownTool:
		return "UnknownTool"
	case ErrValidation:
		return "ValidationFailure"
	case ErrExecution:
		return "ExecutionFailure"
	default:
		return "Unknown"
	}
}

// ToolError is a classified tool failure. It is carried inside a Result,
// never thrown past the executor boundary.
type ToolError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func notReadyError() *ToolError {
	return &ToolError{Kind: ErrNotReady, Message: "spreadsheet handle not ready"}
}

func unknownToolError(name string) *ToolError {
	return &ToolError{Kind: ErrUnknownTool, Message: "unknown tool: " + name}
}

func validationError(msg string) *ToolError {
	return &ToolError{Kind: ErrValidation, Message: msg}
}

func executionError(err error) *ToolError {
	return &ToolError{Kind: ErrExecution, Message: err.Error()}
}
