// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	m := NewUserMessage("hello")

	if !strings.HasPrefix(m.ID, "msg_") {
		t.Errorf("message ID should start with 'msg_', got %q", m.ID)
	}
	if m.Role != RoleUser {
		t.Errorf("Role = %v, want user", m.Role)
	}
	if m.Text() != "hello" {
		t.Errorf("Text() = %q, want hello", m.Text())
	}
	if m.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestMessage_Streaming(t *testing.T) {
	m := NewAssistantMessage()
	if !m.IsStreaming {
		t.Fatal("new assistant message should be streaming")
	}

	m.AppendText("Hola")
	m.AppendText(", mundo")
	if m.Text() != "Hola, mundo" {
		t.Errorf("Text() during stream = %q", m.Text())
	}

	m.FinalizeStream()
	if m.IsStreaming {
		t.Error("FinalizeStream should clear streaming flag")
	}
	if m.Text() != "Hola, mundo" {
		t.Errorf("Text() after finalize = %q", m.Text())
	}
	if len(m.Parts) != 1 || m.Parts[0].Kind != PartText {
		t.Errorf("expected single text part, got %v", m.Parts)
	}

	// Appending after finalize is a no-op.
	m.AppendText("extra")
	if m.Text() != "Hola, mundo" {
		t.Error("AppendText after finalize should be ignored")
	}
}

func TestMessage_PartOrdering(t *testing.T) {
	m := NewAssistantMessage()
	m.AppendText("creating sheet ")
	inv := NewToolInvocation("call-1", "createSpreadsheet", nil)
	m.AddInvocation(inv)
	m.AppendText("done")
	m.FinalizeStream()

	if len(m.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(m.Parts))
	}
	if m.Parts[0].Kind != PartText || m.Parts[1].Kind != PartTool || m.Parts[2].Kind != PartText {
		t.Errorf("part order wrong: %v %v %v", m.Parts[0].Kind, m.Parts[1].Kind, m.Parts[2].Kind)
	}
	if got := m.Invocation("call-1"); got != inv {
		t.Error("Invocation lookup by call ID failed")
	}
	if got := m.Invocation("missing"); got != nil {
		t.Error("Invocation for unknown ID should be nil")
	}
	if len(m.Invocations()) != 1 {
		t.Errorf("Invocations() = %d, want 1", len(m.Invocations()))
	}
}

func TestMessage_Preview(t *testing.T) {
	m := NewUserMessage(strings.Repeat("a", 100))
	p := m.Preview(20)
	if len([]rune(p)) != 20 {
		t.Errorf("Preview length = %d, want 20", len([]rune(p)))
	}
	if !strings.HasSuffix(p, "...") {
		t.Error("Preview should end with ellipsis")
	}
}

// =============================================================================
// INVOCATION STATE TESTS
// =============================================================================

func TestToolInvocation_Lifecycle(t *testing.T) {
	inv := NewToolInvocation("c1", "addData", map[string]interface{}{"range": "A1"})

	if inv.State != StatePending {
		t.Fatalf("initial state = %v, want pending", inv.State)
	}
	if !inv.Begin() {
		t.Fatal("Begin from pending should succeed")
	}
	if inv.State != StateExecuting {
		t.Errorf("state = %v, want executing", inv.State)
	}
	if !inv.Complete(map[string]interface{}{"success": true}) {
		t.Fatal("Complete from executing should succeed")
	}
	if !inv.State.Terminal() {
		t.Error("completed state should be terminal")
	}
	if inv.Result == nil || !inv.Result.OK() {
		t.Error("completed invocation should carry a success result")
	}
}

func TestToolInvocation_NeverBackward(t *testing.T) {
	inv := NewToolInvocation("c2", "applyFormula", nil)
	inv.Begin()
	inv.Fail("handle not ready")

	if inv.Begin() {
		t.Error("Begin on terminal invocation must fail")
	}
	if inv.Complete(nil) {
		t.Error("Complete on terminal invocation must fail")
	}
	if inv.Cancel() {
		t.Error("Cancel on terminal invocation must fail")
	}
	if inv.Result.OK() {
		t.Error("failed invocation result should not be OK")
	}
	if inv.Result.ErrorText != "handle not ready" {
		t.Errorf("ErrorText = %q", inv.Result.ErrorText)
	}
}

func TestToolInvocation_CompleteRequiresBegin(t *testing.T) {
	inv := NewToolInvocation("c3", "sortData", nil)
	if inv.Complete(nil) {
		t.Error("Complete straight from pending must fail")
	}
	if !inv.Cancel() {
		t.Error("Cancel from pending should succeed")
	}
	if inv.State != StateCancelled {
		t.Errorf("state = %v, want cancelled", inv.State)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendOnly(t *testing.T) {
	c := NewConversation()
	if !strings.HasPrefix(c.ID, "conv_") {
		t.Errorf("conversation ID should start with 'conv_', got %q", c.ID)
	}

	c.Append(NewUserMessage("crea datos de ventas"))
	a := NewAssistantMessage()
	c.Append(a)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if c.Last() != a {
		t.Error("Last should return most recent message")
	}
	if c.LastAssistant() != a {
		t.Error("LastAssistant should find assistant message")
	}
	if got := c.Summary(); got != "crea datos de ventas" {
		t.Errorf("Summary = %q", got)
	}
}
