// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the sheetrun TUI.

This package defines the color palette and the Theme struct used throughout
the application. All colors use Lip Gloss AdaptiveColor for automatic
light/dark terminal detection.

# Color System (colors.go)

Primary accents:

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for info, commands, and user highlights
  - Emerald - Success states and the saved indicator
  - Amber - Warnings and the unsaved-changes indicator
  - Rose - Errors and critical alerts

Message bubbles, tool results, and the grid pane use semantic tokens
(UserBubbleBg, ToolSuccessFg, GridHeaderBg, ...) rather than raw colors.

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}

Theme also carries the current terminal dimensions; GetLayoutMode decides
whether the grid pane is rendered beside the transcript.
*/
package styles
