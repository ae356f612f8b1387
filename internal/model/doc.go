// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// tool invocations and artifacts.
//
// These are pure value types shared by the session, persistence and UI
// layers. They carry no I/O; the session package owns their mutation.
package model
