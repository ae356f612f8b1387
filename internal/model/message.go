// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// tool invocations and artifacts.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE PARTS
// =============================================================================

// PartKind discriminates the content carried by a message part.
type PartKind string

const (
	PartText PartKind = "text"
	PartTool PartKind = "tool"
)

// Part is one element of a message's ordered content sequence: either a
// span of text or an embedded tool invocation with its result.
type Part struct {
	Kind PartKind `json:"kind"`

	// Text content (Kind == PartText)
	Text string `json:"text,omitempty"`

	// Tool invocation (Kind == PartTool)
	Invocation *ToolInvocation `json:"invocation,omitempty"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// ToolPart builds a tool invocation part.
func ToolPart(inv *ToolInvocation) Part {
	return Part{Kind: PartTool, Invocation: inv}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation. Assistant messages
// are built up incrementally while the model streams; the accumulated text
// is merged into the final text part when streaming finalizes.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content as an ordered sequence of text and tool parts.
	Parts []Part `json:"parts"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Aborted marks an assistant message whose stream failed mid-turn.
	// The partial text stays visible in the transcript but is never
	// written to durable storage.
	Aborted bool `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, text string) *Message {
	m := &Message{
		ID:        generateID(),
		Role:      role,
		Timestamp: time.Now(),
	}
	if text != "" {
		m.Parts = append(m.Parts, TextPart(text))
	}
	return m
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) *Message {
	return NewMessage(RoleUser, text)
}

// NewAssistantMessage creates a new, still-streaming assistant message.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(text string) *Message {
	return NewMessage(RoleSystem, text)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendText appends streamed text to a streaming message.
func (m *Message) AppendText(delta string) {
	if m.IsStreaming {
		m.streamContent.WriteString(delta)
	}
}

// AddInvocation appends a tool invocation part. Any text streamed so far is
// sealed into a text part first so the part order matches emission order.
func (m *Message) AddInvocation(inv *ToolInvocation) {
	m.sealStreamText()
	m.Parts = append(m.Parts, ToolPart(inv))
}

// Invocation returns the embedded tool invocation with the given call ID,
// or nil if this message does not carry it.
func (m *Message) Invocation(callID string) *ToolInvocation {
	for _, p := range m.Parts {
		if p.Kind == PartTool && p.Invocation != nil && p.Invocation.ID == callID {
			return p.Invocation
		}
	}
	return nil
}

// Invocations returns all tool invocations embedded in this message,
// in part order.
func (m *Message) Invocations() []*ToolInvocation {
	var out []*ToolInvocation
	for _, p := range m.Parts {
		if p.Kind == PartTool && p.Invocation != nil {
			out = append(out, p.Invocation)
		}
	}
	return out
}

// FinalizeStream completes streaming, merging accumulated text into the
// part sequence. Calling it on a finalized message is a no-op.
func (m *Message) FinalizeStream() {
	if !m.IsStreaming {
		return
	}
	m.sealStreamText()
	m.IsStreaming = false
}

// AbortStream ends streaming after a mid-turn failure. The accumulated
// text is sealed for display, and Aborted keeps the message out of the
// persisted conversation.
func (m *Message) AbortStream() {
	m.FinalizeStream()
	m.Aborted = true
}

// sealStreamText moves buffered stream text into a text part.
func (m *Message) sealStreamText() {
	if m.streamContent.Len() == 0 {
		return
	}
	m.Parts = append(m.Parts, TextPart(m.streamContent.String()))
	m.streamContent.Reset()
}

// Text returns the concatenated text content of the message, including any
// text still being streamed.
func (m *Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Kind == PartText {
			sb.WriteString(p.Text)
		}
	}
	sb.WriteString(m.streamContent.String())
	return sb.String()
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.Text()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content at all.
func (m *Message) IsEmpty() bool {
	return len(m.Parts) == 0 && m.streamContent.Len() == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
