// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the spreadsheet tool system: the closed catalog
// of operations the assistant may invoke, and the executor that maps one
// validated tool call onto exactly one spreadsheet handle operation.
//
// Execution errors never escape the executor boundary; every call
// resolves to a result, because the model-facing protocol requires a
// response for each tool call it issues.
package tools
