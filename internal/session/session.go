// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/stream"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the chat request lifecycle state.
type Status string

const (
	// StatusIdle - no request in flight; input is accepted.
	StatusIdle Status = "idle"

	// StatusSubmitted - a request was sent, no events received yet.
	StatusSubmitted Status = "submitted"

	// StatusStreaming - events are arriving, or emitted tool calls are
	// still resolving.
	StatusStreaming Status = "streaming"

	// StatusErrored - the last request failed. Prior messages stay
	// intact; the next submit recovers.
	StatusErrored Status = "errored"
)

// Busy returns true while a request is in flight.
func (s Status) Busy() bool {
	return s == StatusSubmitted || s == StatusStreaming
}

// =============================================================================
// SESSION STATE
// =============================================================================

// State owns the conversation, the streaming assistant message, the tool
// call batch of the current turn, and the artifact history. All mutation
// goes through its methods; the zero value is not usable, call New.
type State struct {
	mu sync.Mutex

	conversation *model.Conversation
	artifacts    *ArtifactHistory
	status       Status
	lastError    string

	// Current-turn tracking
	streaming *model.Message
	batch     []*model.ToolInvocation
	finished  bool // finish event seen for the current turn
	continued bool // the one follow-up for this batch was dispatched

	// onChange fires after any mutation worth persisting.
	onChange func()
}

// New creates an idle session around a fresh conversation.
func New() *State {
	return &State{
		conversation: model.NewConversation(),
		artifacts:    NewArtifactHistory(),
		status:       StatusIdle,
	}
}

// Restore creates a session around an existing conversation.
func Restore(conv *model.Conversation) *State {
	s := New()
	if conv != nil {
		s.conversation = conv
	}
	return s
}

// SetOnChange registers the persistence notification callback.
func (s *State) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// notifyChange must be called with the lock held.
func (s *State) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Status returns the current lifecycle status.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastError returns the failure text of the last errored request.
func (s *State) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Conversation returns the underlying conversation.
func (s *State) Conversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// Messages returns the conversation's messages in order.
func (s *State) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.Messages
}

// Artifacts returns the artifact history.
func (s *State) Artifacts() *ArtifactHistory {
	return s.artifacts
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit appends a user message and moves to submitted. Returns false if a
// request is already in flight.
func (s *State) Submit(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Busy() {
		return false
	}

	s.conversation.Append(model.NewUserMessage(text))
	s.status = StatusSubmitted
	s.lastError = ""
	s.notifyChange()
	return true
}

// Continue moves an idle-after-tools session back to submitted for the
// follow-up request. The conversation is not modified; the resolved tool
// results are already embedded in the history.
func (s *State) Continue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Busy() {
		return false
	}
	s.status = StatusSubmitted
	return true
}

// =============================================================================
// STREAM EVENT HANDLING
// =============================================================================

// BeginTurn opens a new assistant message for an incoming stream and
// resets the turn's tool batch.
func (s *State) BeginTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streaming = model.NewAssistantMessage()
	s.conversation.Append(s.streaming)
	s.batch = nil
	s.finished = false
	s.continued = false
	s.status = StatusStreaming
}

// AppendDelta appends streamed text to the current assistant message.
func (s *State) AppendDelta(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming != nil {
		s.streaming.AppendText(delta)
	}
}

// AddToolCall records an announced tool call as a pending invocation on
// the current assistant message and in the turn batch. Duplicate call IDs
// within a turn are ignored.
func (s *State) AddToolCall(callID, name string, input map[string]interface{}) *model.ToolInvocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming == nil {
		return nil
	}
	if existing := s.streaming.Invocation(callID); existing != nil {
		return existing
	}

	inv := model.NewToolInvocation(callID, name, input)
	s.streaming.AddInvocation(inv)
	s.batch = append(s.batch, inv)
	return inv
}

// BeginToolCall marks an invocation as executing.
func (s *State) BeginToolCall(callID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.findInvocation(callID)
	if inv == nil {
		return false
	}
	return inv.Begin()
}

// ResolveToolCall records the single outcome of an invocation. A second
// resolution for the same call ID is ignored. It returns true when this
// resolution completed the batch and the one follow-up request should be
// dispatched now.
func (s *State) ResolveToolCall(callID string, output map[string]interface{}, errorText string) (continueNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.findInvocation(callID)
	if inv == nil || inv.State.Terminal() {
		return false
	}

	if errorText != "" {
		inv.Fail(errorText)
	} else {
		inv.Complete(output)
	}
	s.notifyChange()

	return s.maybeFinishBatch()
}

// FinishTurn finalizes the streaming assistant message. If the turn
// emitted tool calls that are all resolved already, it returns true to
// dispatch the one follow-up request.
func (s *State) FinishTurn() (continueNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming != nil {
		s.streaming.FinalizeStream()
	}
	s.finished = true
	s.notifyChange()

	return s.maybeFinishBatch()
}

// maybeFinishBatch settles the turn once the stream has finished and every
// batched invocation is terminal. Called with the lock held. At most one
// call per turn returns true.
func (s *State) maybeFinishBatch() bool {
	if !s.finished {
		return false
	}
	for _, inv := range s.batch {
		if !inv.State.Terminal() {
			return false
		}
	}

	s.streaming = nil
	s.status = StatusIdle

	if len(s.batch) == 0 || s.continued {
		return false
	}
	s.continued = true
	return true
}

// FailTurn aborts the current turn with a transport or model failure.
// Streamed text stays visible in the transcript but the aborted message
// is never persisted; unresolved invocations are cancelled and the
// session moves to errored.
func (s *State) FailTurn(errorText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming != nil {
		s.streaming.AbortStream()
		s.streaming = nil
	}
	for _, inv := range s.batch {
		inv.Cancel()
	}
	s.batch = nil
	s.finished = true
	s.status = StatusErrored
	s.lastError = errorText
	s.notifyChange()
}

// findInvocation locates a batched invocation. Called with the lock held.
func (s *State) findInvocation(callID string) *model.ToolInvocation {
	for _, inv := range s.batch {
		if inv.ID == callID {
			return inv
		}
	}
	return nil
}

// PendingCalls returns the batch invocations that have not started yet.
func (s *State) PendingCalls() []*model.ToolInvocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.ToolInvocation
	for _, inv := range s.batch {
		if inv.State == model.StatePending {
			out = append(out, inv)
		}
	}
	return out
}

// =============================================================================
// ARTIFACTS
// =============================================================================

// AddArtifact records a tool-produced document and makes it current.
func (s *State) AddArtifact(a model.Artifact) {
	s.artifacts.Add(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyChange()
}

// =============================================================================
// TRANSPORT HISTORY
// =============================================================================

// History renders the conversation in the wire format, including tool
// calls and their results. Tool results follow the assistant message that
// issued them, one role=tool entry per terminal invocation.
func (s *State) History() []stream.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []stream.Message
	for _, msg := range s.conversation.Messages {
		switch msg.Role {
		case model.RoleUser:
			out = append(out, stream.Message{Role: "user", Content: msg.Text()})

		case model.RoleSystem:
			out = append(out, stream.Message{Role: "system", Content: msg.Text()})

		case model.RoleAssistant:
			entry := stream.Message{Role: "assistant", Content: msg.Text()}
			invocations := msg.Invocations()
			for _, inv := range invocations {
				entry.ToolCalls = append(entry.ToolCalls, stream.ToolCall{
					ID:        inv.ID,
					Name:      inv.Name,
					Arguments: inv.Input,
				})
			}
			out = append(out, entry)

			for _, inv := range invocations {
				if inv.Result == nil {
					continue
				}
				out = append(out, stream.Message{
					Role:       "tool",
					ToolCallID: inv.ID,
					Content:    encodeResult(inv.Result),
				})
			}
		}
	}
	return out
}

// encodeResult serializes a tool result for the history.
func encodeResult(r *model.ToolResult) string {
	if !r.OK() {
		payload := map[string]interface{}{"error": r.ErrorText}
		data, _ := json.Marshal(payload)
		return string(data)
	}
	data, err := json.Marshal(r.Output)
	if err != nil {
		return `{"error":"unencodable tool output"}`
	}
	return string(data)
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ContinueMsg requests the one follow-up turn after a resolved tool batch.
type ContinueMsg struct {
	Time time.Time
}

// ContinueCmd emits a ContinueMsg.
func ContinueCmd() tea.Cmd {
	return func() tea.Msg {
		return ContinueMsg{Time: time.Now()}
	}
}
