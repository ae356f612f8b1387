// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sheetrun-tui/internal/commands"
	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/session"
	"github.com/jeranaias/sheetrun-tui/internal/stream"
	"github.com/jeranaias/sheetrun-tui/internal/tools"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamOpenedMsg:
		m.events = msg.Events
		m.errs = msg.Errs
		return m, tea.Batch(waitForEvent(m.events, m.errs), m.spinner.Tick)

	case StreamEventMsg:
		return m.handleStreamEvent(msg.Event)

	case StreamDoneMsg:
		return m.handleStreamDone(msg.Err)

	case tools.ToolCompleteMsg:
		return m.handleToolComplete(msg)

	case session.ContinueMsg:
		if m.session.Continue() {
			return m, m.startStream()
		}
		return m, nil

	case SaveResultMsg:
		m.saveErr = msg.Err
		if msg.Err == nil {
			m.lastSaveAt = msg.At
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.cfg = msg.Config
			m.showGrid = msg.Config.UI.ShowGrid
			if m.client != nil && msg.Config.Assistant.Model != m.client.Model() {
				m.client.SetModel(msg.Config.Assistant.Model)
			}
			m.statusMsg = "config reloaded"
			m.viewport.Width = m.transcriptWidth()
			m.updateViewport()
		}
		return m, nil

	case PingResultMsg:
		m.endpointUp = msg.Err == nil
		if msg.Err != nil {
			m.statusMsg = "assistant endpoint unreachable"
		}
		return m, nil

	case ErrorMsg:
		m.lastError = &msg
		return m, nil

	case DismissErrorMsg:
		m.lastError = nil
		return m, nil

	case spinner.TickMsg:
		if m.streaming() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case commands.QuitMsg:
		return m.quit()

	case commands.InfoMsg:
		m.appendSystem(msg.Text)
		return m, nil

	case commands.ErrMsg:
		m.lastError = &ErrorMsg{Title: msg.Title, Message: msg.Message, Tip: msg.Tip}
		return m, nil

	case commands.SaveNowMsg:
		return m, m.forceSaveCmd()

	case commands.ExportDoneMsg:
		if msg.Err != nil {
			m.lastError = &ErrorMsg{Title: "Export failed", Message: msg.Err.Error()}
		} else {
			m.appendSystem("Exported to " + msg.Path)
		}
		return m, nil

	case commands.ToggleGridMsg:
		m.showGrid = !m.showGrid
		m.viewport.Width = m.transcriptWidth()
		m.updateViewport()
		return m, nil

	case commands.ArtifactRestoredMsg:
		m.appendSystem("Now viewing " + msg.Title)
		m.updateViewport()
		return m, nil

	case commands.WorkbookSwitchedMsg:
		m.title = msg.Title
		if msg.Created {
			m.appendSystem("Started a new workbook. Ask the assistant to create a spreadsheet.")
		} else {
			m.appendSystem("Opened workbook " + msg.Title)
		}
		m.updateViewport()
		return m, nil

	default:
		var cmds []tea.Cmd
		if !m.streaming() {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.quit()

	case key.Matches(msg, m.keyMap.Cancel):
		if m.streaming() {
			// The stream goroutine sees the cancelled context and
			// StreamDoneMsg settles the session.
			m.cancelMgr.fire()
			return m, nil
		}
		if m.lastError != nil {
			m.lastError = nil
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ForceSave):
		return m, m.forceSaveCmd()

	case key.Matches(msg, m.keyMap.ToggleGrid):
		m.showGrid = !m.showGrid
		m.viewport.Width = m.transcriptWidth()
		m.updateViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()
	}

	if !m.streaming() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// quit flushes pending changes and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancelMgr.fire()
	if m.saver != nil {
		m.saver.ForceSave()
	}
	return m, tea.Quit
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if commands.IsCommand(text) {
		m.input.Reset()
		return m.execCommand(text)
	}

	if !m.session.Submit(text) {
		m.statusMsg = "a request is already running"
		return m, nil
	}

	m.input.Reset()
	m.lastError = nil
	m.statusMsg = ""
	m.updateViewport()
	return m, m.startStream()
}

// execCommand parses and dispatches a slash command.
func (m Model) execCommand(text string) (tea.Model, tea.Cmd) {
	result := m.parser.Parse(text)
	if result.Command == nil {
		m.lastError = &ErrorMsg{
			Title:   "Unknown command",
			Message: result.CommandName,
			Tip:     "Type /help to list commands",
		}
		return m, nil
	}
	if err := commands.ValidateArgs(result.Command, result.Args); err != nil {
		m.lastError = &ErrorMsg{
			Title:   "Invalid arguments",
			Message: err.Error(),
			Tip:     result.Command.Usage,
		}
		return m, nil
	}
	return m, result.Command.Handler(m.cmdCtx, result.Args)
}

// startStream snapshots the history and opens the next event stream.
// The snapshot happens before BeginTurn appends the assistant message.
func (m Model) startStream() tea.Cmd {
	history := m.session.History()
	schemas := m.executor.Registry().ToSchemas()
	return openStream(m.cancelMgr, m.client, history, schemas)
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m Model) handleStreamEvent(ev stream.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(m.events, m.errs)}

	switch ev.Kind {
	case stream.EventStart:
		m.session.BeginTurn()

	case stream.EventTextDelta:
		m.ensureTurn()
		m.session.AppendDelta(ev.Delta)
		m.updateViewport()

	case stream.EventToolInput:
		m.ensureTurn()
		inv := m.session.AddToolCall(ev.ToolCallID, ev.ToolName, ev.Input)
		if inv != nil && m.session.BeginToolCall(ev.ToolCallID) {
			cmds = append(cmds, m.executor.ExecuteAsync(tools.Call{
				ID:    ev.ToolCallID,
				Name:  ev.ToolName,
				Input: ev.Input,
			}))
		}
		m.updateViewport()

	case stream.EventToolOutput:
		// Upstream-resolved output; local execution keeps the invocation
		// terminal and the duplicate resolution is ignored.
		if m.session.ResolveToolCall(ev.ToolCallID, ev.Output, "") {
			cmds = append(cmds, session.ContinueCmd())
		}
		m.updateViewport()

	case stream.EventFinish:
		if m.session.FinishTurn() {
			cmds = append(cmds, session.ContinueCmd())
		}
		m.updateViewport()

	case stream.EventError:
		m.session.FailTurn(ev.ErrorText)
		m.lastError = &ErrorMsg{Title: "Assistant error", Message: ev.ErrorText}
		m.updateViewport()
	}

	return m, tea.Batch(cmds...)
}

// ensureTurn begins the assistant turn when the stream skipped its start
// event.
func (m *Model) ensureTurn() {
	if m.session.Status() == session.StatusSubmitted {
		m.session.BeginTurn()
	}
}

func (m Model) handleStreamDone(err error) (tea.Model, tea.Cmd) {
	m.cancelMgr.clear()
	m.events = nil
	m.errs = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			m.session.FailTurn("cancelled")
			m.statusMsg = "request cancelled"
		} else {
			terr := stream.ClassifyErr(err)
			m.session.FailTurn(terr.Message)
			m.lastError = &ErrorMsg{
				Title:   "Request failed",
				Message: terr.Message,
				Tip:     terr.Class.Hint(),
			}
		}
		m.updateViewport()
		m.input.Focus()
		return m, textinput.Blink
	}

	// A stream that closed without a finish event still ends the turn.
	var cmds []tea.Cmd
	if m.session.Status().Busy() {
		if m.session.FinishTurn() {
			cmds = append(cmds, session.ContinueCmd())
		}
	}

	m.updateViewport()
	m.input.Focus()
	cmds = append(cmds, textinput.Blink)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// TOOL COMPLETION
// =============================================================================

func (m Model) handleToolComplete(msg tools.ToolCompleteMsg) (tea.Model, tea.Cmd) {
	continueNow := m.session.ResolveToolCall(msg.Call.ID, msg.Result.Output, msg.Result.ErrorText())
	m.updateViewport()

	if continueNow {
		return m, session.ContinueCmd()
	}
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// appendSystem adds an informational system message to the transcript.
func (m *Model) appendSystem(text string) {
	m.session.Conversation().Append(model.NewSystemMessage(text))
	m.updateViewport()
}

// forceSaveCmd flushes the autosaver off the UI loop.
func (m Model) forceSaveCmd() tea.Cmd {
	saver := m.saver
	return func() tea.Msg {
		if saver == nil {
			return SaveResultMsg{At: time.Now()}
		}
		return SaveResultMsg{Err: saver.ForceSave(), At: time.Now()}
	}
}
