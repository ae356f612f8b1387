// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sheet provides the spreadsheet handle: the abstraction boundary
// around the live spreadsheet document, exposing cell and range read/write,
// formula application, formatting and document snapshots.
//
// The shipped implementation is an in-memory workbook grid. Formulas are
// stored, not evaluated; evaluation is the business of an external engine.
package sheet
