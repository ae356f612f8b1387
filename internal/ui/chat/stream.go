// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sheetrun-tui/internal/stream"
)

// =============================================================================
// CANCEL MANAGER
// =============================================================================

// cancelManager guards the active stream's cancel function. The chat model
// is copied on every Update, so the mutex lives behind a pointer.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set replaces the stored cancel function, cancelling any previous stream.
func (c *cancelManager) set(cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
}

// fire cancels the active stream, if any.
func (c *cancelManager) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// clear drops the stored cancel function without firing it.
func (c *cancelManager) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = nil
}

// =============================================================================
// STREAM RUNNER
// =============================================================================

// streamBuffer is the event channel capacity. Events beyond it block the
// reader goroutine, which is fine; the UI drains quickly.
const streamBuffer = 64

// openStream starts the chat request in a goroutine and hands the event
// channels to the Update loop. The error channel receives exactly one
// value after the event channel closes.
func openStream(cm *cancelManager, client *stream.Client, history []stream.Message, tools []stream.ToolSchema) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		cm.set(cancel)

		events := make(chan stream.Event, streamBuffer)
		errs := make(chan error, 1)

		go func() {
			err := client.ChatStream(ctx, history, tools, func(ev stream.Event) {
				events <- ev
			})
			close(events)
			errs <- err
		}()

		return StreamOpenedMsg{Events: events, Errs: errs}
	}
}

// waitForEvent blocks on the open stream and converts the next event into
// a Bubble Tea message. It is re-issued after every StreamEventMsg.
func waitForEvent(events <-chan stream.Event, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamDoneMsg{Err: <-errs}
		}
		return StreamEventMsg{Event: ev}
	}
}

// pingCmd checks the assistant endpoint off the UI loop.
func pingCmd(client *stream.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return PingResultMsg{Err: client.Ping(ctx)}
	}
}
