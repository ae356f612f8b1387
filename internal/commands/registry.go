// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sheetrun-tui/internal/config"
	"github.com/jeranaias/sheetrun-tui/internal/persist"
	"github.com/jeranaias/sheetrun-tui/internal/session"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/storage"
	"github.com/jeranaias/sheetrun-tui/internal/stream"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/export <format>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates how an argument is validated.
type ArgType int

const (
	ArgTypeString   ArgType = iota // Free-form string
	ArgTypeEnum                    // One of predefined values
	ArgTypeArtifact                // Artifact ID from the session history
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Category:    "General",
		Handler:     HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Save and exit sheetrun",
		Category:    "General",
		Handler:     HandleQuit,
	})

	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a fresh workbook",
		Category:    "Workbook",
		Handler:     HandleNew,
	})

	r.Register(&Command{
		Name:        "/open",
		Aliases:     []string{"/o"},
		Description: "Open a saved workbook (no ID lists them)",
		Usage:       "/open [workbook_id]",
		Args: []ArgDef{
			{Name: "workbook_id", Required: false, Type: ArgTypeString, Description: "ID from /open or sheetrun list"},
		},
		Category: "Workbook",
		Handler:  HandleOpen,
	})

	r.Register(&Command{
		Name:        "/import",
		Description: "Import an xlsx file as a new workbook",
		Usage:       "/import <file.xlsx>",
		Args: []ArgDef{
			{Name: "file", Required: true, Type: ArgTypeString, Description: "Path to an .xlsx file"},
		},
		Category: "Workbook",
		Handler:  HandleImport,
	})

	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the workbook now",
		Category:    "Workbook",
		Handler:     HandleSave,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the workbook to a file",
		Usage:       "/export [xlsx|csv|json|md]",
		Args: []ArgDef{
			{Name: "format", Required: false, Type: ArgTypeEnum,
				Values: []string{"xlsx", "csv", "json", "md", "markdown"}, Description: "Export format"},
		},
		Category: "Workbook",
		Handler:  HandleExport,
	})

	r.Register(&Command{
		Name:        "/sheets",
		Description: "List the workbook's sheets",
		Category:    "Workbook",
		Handler:     HandleSheets,
	})

	r.Register(&Command{
		Name:        "/grid",
		Description: "Toggle the grid pane",
		Category:    "Workbook",
		Handler:     HandleGrid,
	})

	r.Register(&Command{
		Name:        "/artifacts",
		Aliases:     []string{"/a"},
		Description: "List generated artifacts, newest first",
		Category:    "Artifacts",
		Handler:     HandleArtifacts,
	})

	r.Register(&Command{
		Name:        "/use",
		Description: "Switch the view to an earlier artifact",
		Usage:       "/use <artifact_id>",
		Args: []ArgDef{
			{Name: "artifact_id", Required: true, Type: ArgTypeArtifact, Description: "ID from /artifacts"},
		},
		Category: "Artifacts",
		Handler:  HandleUse,
	})

	r.Register(&Command{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Description: "Show or switch the assistant model",
		Usage:       "/model [name]",
		Args: []ArgDef{
			{Name: "name", Required: false, Type: ArgTypeString, Description: "Model to switch to"},
		},
		Category: "Settings",
		Handler:  HandleModel,
	})

	r.Register(&Command{
		Name:        "/theme",
		Description: "Show or change the color theme",
		Usage:       "/theme [dark|light|auto]",
		Args: []ArgDef{
			{Name: "name", Required: false, Type: ArgTypeEnum,
				Values: []string{"dark", "light", "auto"}, Description: "Theme name"},
		},
		Category: "Settings",
		Handler:  HandleTheme,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// All fields are optional and may be nil - handlers check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Store handles workbook and chat persistence
	Store storage.Store

	// Session is the live chat/artifact session
	Session *session.State

	// Workbook is the live document
	Workbook *sheet.Workbook

	// Client is the assistant transport
	Client *stream.Client

	// Saver is the debounced persistence bridge
	Saver *persist.AutoSaver

	// Title is the workbook title, used for exports
	Title string

	// OnWorkbookSwitch retargets persistence when /new or /open changes
	// the workbook record. Runs on the UI loop.
	OnWorkbookSwitch func(id string)
}
