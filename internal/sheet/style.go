// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sheet

// =============================================================================
// CELL STYLE
// =============================================================================

// HeaderBackground is the fill applied to header rows created by
// CreateSheetWithData.
const HeaderBackground = "#DDDDDD"

// Alignment values accepted by CellStyle.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// CellStyle describes the visual formatting of a cell. Unset fields
// (nil booleans, empty strings) leave the existing attribute untouched
// when the style is merged onto a cell.
type CellStyle struct {
	Bold            *bool  `json:"bold,omitempty"`
	Italic          *bool  `json:"italic,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Alignment       string `json:"alignment,omitempty"`
}

// Bool returns a pointer to b, for building style literals.
func Bool(b bool) *bool { return &b }

// IsZero returns true when the style sets nothing.
func (s CellStyle) IsZero() bool {
	return s.Bold == nil && s.Italic == nil &&
		s.TextColor == "" && s.BackgroundColor == "" && s.Alignment == ""
}

// merge overlays the set fields of other onto s and returns the result.
func (s CellStyle) merge(other CellStyle) CellStyle {
	if other.Bold != nil {
		s.Bold = other.Bold
	}
	if other.Italic != nil {
		s.Italic = other.Italic
	}
	if other.TextColor != "" {
		s.TextColor = other.TextColor
	}
	if other.BackgroundColor != "" {
		s.BackgroundColor = other.BackgroundColor
	}
	if other.Alignment != "" {
		s.Alignment = other.Alignment
	}
	return s
}
