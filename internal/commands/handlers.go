// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sheetrun-tui/internal/export"
	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
)

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// QuitMsg asks the application to save and exit.
type QuitMsg struct{}

// InfoMsg carries informational command output for the transcript.
type InfoMsg struct {
	Text string
}

// ErrMsg reports a command failure.
type ErrMsg struct {
	Title   string
	Message string
	Tip     string
}

// SaveNowMsg requests an immediate flush of pending changes.
type SaveNowMsg struct{}

// ExportDoneMsg reports the outcome of a workbook export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ToggleGridMsg flips the grid pane visibility.
type ToggleGridMsg struct{}

// ArtifactRestoredMsg reports that the view switched to another artifact.
type ArtifactRestoredMsg struct {
	ID    string
	Title string
}

// WorkbookSwitchedMsg reports that /new or /open changed the workbook
// record behind the grid.
type WorkbookSwitchedMsg struct {
	ID      string
	Title   string
	Created bool
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleHelp lists all commands grouped by category.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	registry := NewRegistry()
	byCategory := registry.ByCategory()

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, cat := range categories {
		cmds := byCategory[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
		sb.WriteString("\n" + cat + "\n")
		for _, cmd := range cmds {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage = cmd.Usage
			}
			fmt.Fprintf(&sb, "  %-28s %s\n", usage, cmd.Description)
		}
	}

	return info(sb.String())
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return QuitMsg{} }
}

// HandleNew flushes the current workbook and starts a fresh one. The
// grid goes back to pending until the assistant creates a spreadsheet.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	if ctx.Store == nil {
		return errMsg("No store available", "", "")
	}
	if ctx.Saver != nil {
		if err := ctx.Saver.ForceSave(); err != nil {
			return errMsg("Could not save current workbook", err.Error(), "resolve the error before switching")
		}
	}

	rec, err := ctx.Store.CreateWorkbook("Untitled", nil)
	if err != nil {
		return errMsg("Could not create workbook", err.Error(), "")
	}
	if ctx.Workbook != nil {
		ctx.Workbook.Reset()
	}
	ctx.Title = rec.Title
	if ctx.OnWorkbookSwitch != nil {
		ctx.OnWorkbookSwitch(rec.ID)
	}
	return func() tea.Msg {
		return WorkbookSwitchedMsg{ID: rec.ID, Title: rec.Title, Created: true}
	}
}

// HandleOpen switches to a saved workbook. Without an ID it lists the
// saved workbooks instead.
func HandleOpen(ctx *Context, args []string) tea.Cmd {
	if ctx.Store == nil {
		return errMsg("No store available", "", "")
	}

	if len(args) == 0 {
		books, err := ctx.Store.ListWorkbooks()
		if err != nil {
			return errMsg("Could not list workbooks", err.Error(), "")
		}
		if len(books) == 0 {
			return info("No saved workbooks yet.")
		}
		var sb strings.Builder
		sb.WriteString("Workbooks (newest first):\n")
		for _, wb := range books {
			fmt.Fprintf(&sb, "  %-14s %-24s %s\n", wb.ID, wb.Title, wb.UpdatedAt.Format("2006-01-02 15:04"))
		}
		sb.WriteString("\nOpen with /open <id>")
		return info(sb.String())
	}

	if ctx.Saver != nil {
		if err := ctx.Saver.ForceSave(); err != nil {
			return errMsg("Could not save current workbook", err.Error(), "resolve the error before switching")
		}
	}

	rec, err := ctx.Store.GetWorkbook(args[0])
	if err != nil {
		return errMsg("Unknown workbook", args[0], "list IDs with /open")
	}
	if ctx.Workbook != nil {
		if len(rec.Content) > 0 {
			snap, err := sheet.UnmarshalSnapshot(rec.Content)
			if err != nil {
				return errMsg("Could not read workbook content", err.Error(), "")
			}
			ctx.Workbook.Restore(snap)
		} else {
			ctx.Workbook.Reset()
		}
	}
	ctx.Title = rec.Title
	if ctx.OnWorkbookSwitch != nil {
		ctx.OnWorkbookSwitch(rec.ID)
	}
	return func() tea.Msg {
		return WorkbookSwitchedMsg{ID: rec.ID, Title: rec.Title}
	}
}

// HandleImport reads an xlsx file into a fresh workbook record and makes
// it the live document.
func HandleImport(ctx *Context, args []string) tea.Cmd {
	if ctx.Store == nil {
		return errMsg("No store available", "", "")
	}

	path := args[0]
	snap, err := export.ImportXLSX(path)
	if err != nil {
		return errMsg("Import failed", err.Error(), "the file must be a readable .xlsx workbook")
	}
	content, err := snap.Marshal()
	if err != nil {
		return errMsg("Import failed", err.Error(), "")
	}

	if ctx.Saver != nil {
		if err := ctx.Saver.ForceSave(); err != nil {
			return errMsg("Could not save current workbook", err.Error(), "resolve the error before switching")
		}
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec, err := ctx.Store.CreateWorkbook(title, content)
	if err != nil {
		return errMsg("Could not create workbook", err.Error(), "")
	}
	if ctx.Workbook != nil {
		ctx.Workbook.Restore(snap)
	}
	ctx.Title = rec.Title
	if ctx.OnWorkbookSwitch != nil {
		ctx.OnWorkbookSwitch(rec.ID)
	}
	return func() tea.Msg {
		return WorkbookSwitchedMsg{ID: rec.ID, Title: rec.Title}
	}
}

// HandleSave flushes pending changes immediately.
func HandleSave(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return SaveNowMsg{} }
}

// HandleExport writes the workbook to a file in the requested format.
func HandleExport(ctx *Context, args []string) tea.Cmd {
	if ctx.Workbook == nil || !ctx.Workbook.Ready() {
		return errMsg("Nothing to export", "the workbook is empty", "ask the assistant to create a spreadsheet first")
	}

	format := "xlsx"
	if len(args) > 0 {
		format = args[0]
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		return errMsg("Export failed", err.Error(), "supported formats: xlsx, csv, json, md")
	}

	snap := ctx.Workbook.WorkbookData()
	title := ctx.Title
	return func() tea.Msg {
		path, err := export.ExportToFile(snap, title, exporter, nil)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// HandleSheets lists the workbook's sheets with the active one marked.
func HandleSheets(ctx *Context, args []string) tea.Cmd {
	if ctx.Workbook == nil || !ctx.Workbook.Ready() {
		return info("No sheets yet.")
	}

	active := ctx.Workbook.ActiveSheet()
	var sb strings.Builder
	sb.WriteString("Sheets:\n")
	for _, name := range ctx.Workbook.SheetNames() {
		marker := "  "
		if name == active {
			marker = "* "
		}
		sb.WriteString(marker + name + "\n")
	}
	return info(sb.String())
}

// HandleGrid toggles the grid pane.
func HandleGrid(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return ToggleGridMsg{} }
}

// HandleArtifacts lists the session's artifacts, newest first.
func HandleArtifacts(ctx *Context, args []string) tea.Cmd {
	if ctx.Session == nil || ctx.Session.Artifacts().Len() == 0 {
		return info("No artifacts yet.")
	}

	current, _ := ctx.Session.Artifacts().Current()
	var sb strings.Builder
	sb.WriteString("Artifacts (newest first):\n")
	for _, a := range ctx.Session.Artifacts().All() {
		marker := "  "
		if a.ID == current.ID {
			marker = "* "
		}
		fmt.Fprintf(&sb, "%s%-14s %-6s %s\n", marker, a.ID, a.Type, a.Title)
	}
	sb.WriteString("\nSwitch with /use <id>")
	return info(sb.String())
}

// HandleUse switches the current artifact and restores the workbook to
// its snapshot.
func HandleUse(ctx *Context, args []string) tea.Cmd {
	id := args[0]
	art, ok := ctx.Session.Artifacts().Get(id)
	if !ok {
		return errMsg("Unknown artifact", id, "list IDs with /artifacts")
	}

	ctx.Session.Artifacts().SetCurrent(id)

	if len(art.Data) > 0 && art.Type == model.ArtifactSheet && ctx.Workbook != nil {
		snap, err := sheet.UnmarshalSnapshot(art.Data)
		if err != nil {
			return errMsg("Restore failed", err.Error(), "")
		}
		ctx.Workbook.Restore(snap)
		if ctx.Saver != nil {
			ctx.Saver.Notify()
		}
	}

	return func() tea.Msg {
		return ArtifactRestoredMsg{ID: art.ID, Title: art.Title}
	}
}

// HandleModel shows or switches the assistant model.
func HandleModel(ctx *Context, args []string) tea.Cmd {
	if ctx.Client == nil {
		return errMsg("No assistant configured", "", "")
	}
	if len(args) == 0 {
		return info("Current model: " + ctx.Client.Model())
	}

	name := args[0]
	ctx.Client.SetModel(name)
	if ctx.Config != nil {
		ctx.Config.Assistant.Model = name
	}
	return info("Switched to model: " + name)
}

// HandleTheme shows or changes the color theme. The change lands in the
// config file and applies on the next start.
func HandleTheme(ctx *Context, args []string) tea.Cmd {
	if ctx.Config == nil {
		return errMsg("No configuration loaded", "", "")
	}
	if len(args) == 0 {
		return info("Current theme: " + ctx.Config.UI.Theme)
	}

	ctx.Config.UI.Theme = args[0]
	return info("Theme set to " + args[0] + " (applies on next start)")
}

// =============================================================================
// HELPERS
// =============================================================================

func info(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: strings.TrimRight(text, "\n")} }
}

func errMsg(title, message, tip string) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Title: title, Message: message, Tip: tip} }
}
