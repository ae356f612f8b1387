// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the main Bubble Tea view: a chat transcript beside a live
spreadsheet grid.

The model owns the streaming loop. Submitting input opens an NDJSON event
stream (stream.Client); events arrive over a channel and are pumped into
the Update loop one at a time via waitForEvent. Tool calls announced by
the stream execute locally against the workbook (tools.Executor) and
resolve back into the session; when a turn's whole batch has resolved the
session requests exactly one follow-up stream.

Persistence is indirect: every session mutation notifies the debounced
AutoSaver, which snapshots the workbook and the conversation off the UI
loop. The status bar reflects the saver's dirty flag.
*/
package chat
