// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements the slash command system: a registry of
// built-in commands, a quote-aware parser, and handlers that run against
// the live session, workbook, and persistence state.
//
// Handlers return tea.Cmd values that emit result messages (InfoMsg,
// ErrMsg, ExportDoneMsg, ...) rather than touching the UI directly; the
// chat model translates those into transcript entries and banners.
package commands
