// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"sync"

	"github.com/jeranaias/sheetrun-tui/internal/model"
)

// =============================================================================
// MESSAGE PERSISTER
// =============================================================================

// WriteMessageFunc appends one message to the conversation's durable log.
type WriteMessageFunc func(msg *model.Message) error

// MessagePersister writes conversation messages incrementally. User and
// system messages persist as soon as they appear; assistant messages only
// once streaming has finalized, so a partial turn is never written. Each
// message is written at most once per session.
type MessagePersister struct {
	mu        sync.Mutex
	write     WriteMessageFunc
	persisted map[string]bool
}

// NewMessagePersister creates a persister over the given writer.
func NewMessagePersister(write WriteMessageFunc) *MessagePersister {
	return &MessagePersister{
		write:     write,
		persisted: make(map[string]bool),
	}
}

// Sync walks the conversation and writes every message that is both
// eligible and not yet persisted. A failed write leaves the message
// unmarked so the next Sync retries it.
func (p *MessagePersister) Sync(conv *model.Conversation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, msg := range conv.Messages {
		if p.persisted[msg.ID] || !eligible(msg) {
			continue
		}
		if err := p.write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.persisted[msg.ID] = true
	}
	return firstErr
}

// Persisted reports whether the given message has been written.
func (p *MessagePersister) Persisted(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.persisted[id]
}

// eligible reports whether a message may be written now. Assistant
// messages qualify only once streaming finalized cleanly; an aborted
// turn's partial text is never written.
func eligible(msg *model.Message) bool {
	if msg.Role == model.RoleAssistant && (msg.IsStreaming || msg.Aborted) {
		return false
	}
	return !msg.IsEmpty()
}
