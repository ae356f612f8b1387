// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat view:
// stream lifecycle, save results, endpoint health, and error display.
package chat

import (
	"time"

	"github.com/jeranaias/sheetrun-tui/internal/config"
	"github.com/jeranaias/sheetrun-tui/internal/stream"
)

// =============================================================================
// STREAM MESSAGES
// =============================================================================

// StreamOpenedMsg carries the channels of a freshly opened event stream.
// Events are pumped into the Update loop one at a time via waitForEvent.
type StreamOpenedMsg struct {
	Events <-chan stream.Event
	Errs   <-chan error
}

// StreamEventMsg delivers one event from the open stream.
type StreamEventMsg struct {
	Event stream.Event
}

// StreamDoneMsg signals that the stream closed. Err is nil on a clean
// finish and a *stream.TransportError otherwise.
type StreamDoneMsg struct {
	Err error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// SaveResultMsg reports the outcome of a background save.
type SaveResultMsg struct {
	Err error
	At  time.Time
}

// =============================================================================
// ENDPOINT MESSAGES
// =============================================================================

// PingResultMsg reports whether the assistant endpoint is reachable.
type PingResultMsg struct {
	Err error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a config reloaded from disk by the file
// watcher. Applied on the Update loop so no other goroutine touches
// live state.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// ErrorMsg displays an error banner to the user.
type ErrorMsg struct {
	Title   string
	Message string
	Tip     string
}

// DismissErrorMsg clears the current error banner.
type DismissErrorMsg struct{}
