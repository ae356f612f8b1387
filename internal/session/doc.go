// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the per-conversation chat state: the message list,
// the request lifecycle (idle, submitted, streaming, errored), the tool
// call batch of the current assistant turn, and the artifact history.
//
// Tool calls resolve client-side. Each announced call gets exactly one
// outcome, and once the turn has finished and every call in its batch is
// terminal, the session authorizes exactly one follow-up request so the
// model can narrate the results.
package session
