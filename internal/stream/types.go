// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventKind discriminates stream events.
type EventKind string

const (
	// EventStart opens an assistant turn.
	EventStart EventKind = "start"

	// EventTextDelta carries a span of streamed assistant text.
	EventTextDelta EventKind = "text-delta"

	// EventToolInput announces a tool call with validated input.
	EventToolInput EventKind = "tool-input-available"

	// EventToolOutput echoes a tool result back into the turn.
	EventToolOutput EventKind = "tool-output-available"

	// EventFinish closes an assistant turn.
	EventFinish EventKind = "finish"

	// EventError aborts the turn with a transport or model failure.
	EventError EventKind = "error"
)

// Event is one NDJSON line of the assistant stream.
type Event struct {
	Kind EventKind `json:"kind"`

	// Text content (text-delta)
	Delta string `json:"delta,omitempty"`

	// Tool call fields (tool-input-available / tool-output-available)
	ToolCallID string                 `json:"toolCallId,omitempty"`
	ToolName   string                 `json:"toolName,omitempty"`
	Input      map[string]interface{} `json:"input,omitempty"`
	Output     map[string]interface{} `json:"output,omitempty"`

	// Finish reason ("stop", "tool-calls", ...) or error text
	Reason    string `json:"reason,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is one entry of the conversation history sent to the model.
type Message struct {
	Role      string     `json:"role"` // "user", "assistant", "system", "tool"
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // calls issued by the assistant

	// ToolCallID links a role=tool message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is an assistant-issued call recorded in the history.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Model    string       `json:"model"`
	Messages []Message    `json:"messages"`
	Tools    []ToolSchema `json:"tools,omitempty"`
	Stream   bool         `json:"stream"`
}

// =============================================================================
// TOOL SCHEMA TYPES
// =============================================================================

// ToolSchema advertises one tool to the model.
type ToolSchema struct {
	Type     string         `json:"type"` // always "function"
	Function FunctionSchema `json:"function"`
}

// FunctionSchema defines a tool's interface.
type FunctionSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  ParamSchema `json:"parameters"`
}

// ParamSchema is the JSON-Schema object describing a tool's arguments.
type ParamSchema struct {
	Type       string              `json:"type"` // "object"
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single argument.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
	Items       *Items   `json:"items,omitempty"`
}

// Items describes array element types.
type Items struct {
	Type string `json:"type"`
}
