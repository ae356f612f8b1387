// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream provides the HTTP client for the assistant transport.
//
// The transport is an NDJSON event stream: each line is one event of kind
// start, text-delta, tool-input-available, tool-output-available, finish
// or error. Tool execution is client-side: the session executes each
// tool-input-available event and feeds exactly one tool output back into
// the conversation before the turn may continue.
package stream
