// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/util"
)

// =============================================================================
// MAIN LAYOUT
// =============================================================================

func (m Model) renderChat() string {
	var sections []string

	sections = append(sections, m.renderHeader())

	transcript := m.viewport.View()
	if m.gridVisible() {
		grid := renderGrid(m.theme, m.workbook.WorkbookData(), m.gridWidth(), m.viewport.Height)
		transcript = lipgloss.JoinHorizontal(lipgloss.Top, transcript, " ", grid)
	}
	sections = append(sections, transcript)

	if m.lastError != nil {
		sections = append(sections, m.renderError())
	}
	if m.streaming() {
		thinking := m.theme.Spinner.Render(m.spinner.View()) + " " +
			m.theme.ThinkingText.Render("working...")
		sections = append(sections, thinking)
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.title
	if title == "" {
		title = "untitled workbook"
	}
	if m.width > 20 {
		title = util.TruncateRunes(title, m.width-20)
	}
	left := m.theme.HeaderTitle.Render("sheetrun")
	right := m.theme.HeaderSubtitle.Render(title)
	return m.theme.StatusBar.Width(m.width).Render(left + "  " + right)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderError() string {
	e := m.lastError
	var sb strings.Builder
	sb.WriteString(m.theme.ErrorTitle.Render(e.Title))
	if e.Message != "" {
		sb.WriteString("\n")
		sb.WriteString(m.theme.ErrorMessage.Render(e.Message))
	}
	if e.Tip != "" {
		sb.WriteString("\n")
		sb.WriteString(m.theme.ErrorTip.Render("Tip: " + e.Tip))
	}
	width := m.transcriptWidth() - 4
	if width < 20 {
		width = 20
	}
	return m.theme.ErrorBox.Width(width).Render(sb.String())
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	var parts []string

	parts = append(parts, string(m.session.Status()))
	if m.client != nil {
		parts = append(parts, m.client.Model())
	}
	if !m.endpointUp {
		parts = append(parts, m.theme.SaveError.Render("offline"))
	}
	parts = append(parts, m.renderSaveState())

	if n := m.session.Artifacts().Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d artifacts", n))
	}
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}

	left := strings.Join(parts, "  •  ")
	right := m.renderShortcuts()

	gap := m.width - util.StringWidth(left) - util.StringWidth(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderSaveState() string {
	switch {
	case m.saveErr != nil:
		return m.theme.SaveError.Render("save failed")
	case m.saver != nil && m.saver.Dirty():
		return m.theme.SaveDirty.Render("unsaved")
	default:
		return m.theme.SaveClean.Render("saved")
	}
}

func (m Model) renderShortcuts() string {
	var sb strings.Builder
	for i, b := range m.keyMap.ShortHelp() {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(m.theme.ShortcutKey.Render(b.Help().Key))
		sb.WriteString(" ")
		sb.WriteString(m.theme.ShortcutDesc.Render(b.Help().Desc))
	}
	return sb.String()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderMessages() string {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		return m.theme.ThinkingText.Render(
			"\n  Describe the spreadsheet you want, or type /help for commands.\n")
	}

	width := m.transcriptWidth() - 6
	if width < 20 {
		width = 20
	}

	var sb strings.Builder
	for _, msg := range msgs {
		if msg.IsEmpty() && !msg.IsStreaming {
			continue
		}
		sb.WriteString(m.renderMessage(msg, width))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (m Model) renderMessage(msg *model.Message, width int) string {
	switch msg.Role {
	case model.RoleUser:
		return m.theme.UserBubble.Width(width).Render(msg.Text())

	case model.RoleSystem:
		return m.theme.SystemBubble.Render(msg.Text())

	case model.RoleAssistant:
		var blocks []string
		for _, part := range msg.Parts {
			switch part.Kind {
			case model.PartText:
				blocks = append(blocks, m.renderMarkdown(part.Text, width))
			case model.PartTool:
				if part.Invocation != nil {
					blocks = append(blocks, m.renderToolLine(part.Invocation))
				}
			}
		}
		// Text still streaming in has no part yet.
		if msg.IsStreaming {
			if text := msg.Text(); text != "" && len(msg.Parts) == 0 {
				blocks = append(blocks, text)
			} else if msg.IsEmpty() {
				blocks = append(blocks, m.theme.ThinkingText.Render("..."))
			}
		}
		body := strings.Join(blocks, "\n")
		return m.theme.AssistantBubble.Width(width).Render(body)
	}
	return msg.Text()
}

// renderMarkdown renders assistant text through glamour, falling back to
// the raw text when no renderer is available.
func (m Model) renderMarkdown(text string, width int) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) renderToolLine(inv *model.ToolInvocation) string {
	line := formatToolLine(inv)
	switch inv.State {
	case model.StateCompleted:
		return m.theme.ToolSuccess.Render(line)
	case model.StateError, model.StateCancelled:
		return m.theme.ToolError.Render(line)
	default:
		return m.theme.ThinkingText.Render(line)
	}
}

// formatToolLine renders an invocation's one-line summary.
func formatToolLine(inv *model.ToolInvocation) string {
	switch inv.State {
	case model.StatePending:
		return "[ ] " + inv.Name
	case model.StateExecuting:
		return "[~] " + inv.Name + " ..."
	case model.StateCompleted:
		dur := ""
		if !inv.FinishedAt.IsZero() && !inv.StartedAt.IsZero() {
			dur = fmt.Sprintf(" (%s)", inv.FinishedAt.Sub(inv.StartedAt).Round(timePrecision))
		}
		return "[OK] " + inv.Name + dur
	case model.StateError:
		text := ""
		if inv.Result != nil {
			text = ": " + inv.Result.ErrorText
		}
		return "[X] " + inv.Name + text
	case model.StateCancelled:
		return "[X] " + inv.Name + ": cancelled"
	}
	return inv.Name
}

// timePrecision keeps tool durations readable in the transcript.
const timePrecision = 10 * time.Millisecond
