// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persist bridges in-memory session state to durable storage.
//
// Document changes are coalesced: the first change after a save arms a
// single timer, later changes ride along, and the state captured when the
// timer fires is whatever is latest. A failed save stays dirty and is
// retried, so every change is eventually written at least once. ForceSave
// flushes synchronously for teardown and explicit saves.
package persist
