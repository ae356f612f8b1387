// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/sheetrun-tui/internal/commands"
	"github.com/jeranaias/sheetrun-tui/internal/config"
	"github.com/jeranaias/sheetrun-tui/internal/persist"
	"github.com/jeranaias/sheetrun-tui/internal/session"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/storage"
	"github.com/jeranaias/sheetrun-tui/internal/stream"
	"github.com/jeranaias/sheetrun-tui/internal/tools"
	"github.com/jeranaias/sheetrun-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options carries the wired dependencies for a chat model.
type Options struct {
	Theme    *styles.Theme
	Config   *config.Config
	Session  *session.State
	Executor *tools.Executor
	Client   *stream.Client
	Store    storage.Store
	Workbook *sheet.Workbook
	Saver    *persist.AutoSaver
	Title    string // Workbook title for the header and exports

	// OnWorkbookSwitch retargets persistence when a command changes the
	// backing workbook record.
	OnWorkbookSwitch func(id string)
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme  *styles.Theme
	keyMap KeyMap

	width  int
	height int

	// Wired services
	cfg      *config.Config
	session  *session.State
	executor *tools.Executor
	client   *stream.Client
	store    storage.Store
	workbook *sheet.Workbook
	saver    *persist.AutoSaver
	title    string

	// Slash commands
	registry *commands.Registry
	parser   *commands.Parser
	cmdCtx   *commands.Context

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// Active stream
	cancelMgr *cancelManager
	events    <-chan stream.Event
	errs      <-chan error

	// Display state
	lastError  *ErrorMsg
	statusMsg  string
	saveErr    error
	lastSaveAt time.Time
	endpointUp bool
	showGrid   bool
}

// New creates a chat model over the given dependencies.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your spreadsheet, or /help"
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	registry := commands.NewRegistry()
	parser := commands.NewParser(registry)

	showGrid := true
	if opts.Config != nil {
		showGrid = opts.Config.UI.ShowGrid
	}

	m := Model{
		theme:     opts.Theme,
		keyMap:    DefaultKeyMap(),
		cfg:       opts.Config,
		session:   opts.Session,
		executor:  opts.Executor,
		client:    opts.Client,
		store:     opts.Store,
		workbook:  opts.Workbook,
		saver:     opts.Saver,
		title:     opts.Title,
		registry:  registry,
		parser:    parser,
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		cancelMgr: newCancelManager(),
		showGrid:  showGrid,
	}

	m.cmdCtx = &commands.Context{
		Config:           opts.Config,
		Store:            opts.Store,
		Session:          opts.Session,
		Workbook:         opts.Workbook,
		Client:           opts.Client,
		Saver:            opts.Saver,
		Title:            opts.Title,
		OnWorkbookSwitch: opts.OnWorkbookSwitch,
	}

	m.updateViewport()
	return m
}

// Init starts the cursor blink and pings the assistant endpoint.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.client != nil {
		cmds = append(cmds, pingCmd(m.client))
	}
	return tea.Batch(cmds...)
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// header + input area + status bar; conservative so the viewport never
	// pushes the status bar off screen.
	const reservedHeight = 7

	viewportHeight := m.height - reservedHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = m.transcriptWidth()
	m.viewport.Height = viewportHeight

	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	// Rebuild the markdown renderer at the new wrap width.
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.transcriptWidth()-4),
	); err == nil {
		m.renderer = r
	}

	m.updateViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// transcriptWidth returns the width available to the chat transcript,
// accounting for the grid pane when it is shown.
func (m Model) transcriptWidth() int {
	w := m.width
	if m.gridVisible() {
		w = m.width - m.gridWidth() - 1
	}
	if w < 20 {
		w = 20
	}
	return w
}

// gridVisible reports whether the grid pane is rendered this frame.
func (m Model) gridVisible() bool {
	if !m.showGrid || m.workbook == nil || !m.workbook.Ready() {
		return false
	}
	return m.theme == nil || m.theme.GetLayoutMode() == styles.LayoutWide
}

// gridWidth returns the column budget of the grid pane.
func (m Model) gridWidth() int {
	w := m.width * 2 / 5
	if w < 30 {
		w = 30
	}
	return w
}

// =============================================================================
// VIEWPORT
// =============================================================================

func (m *Model) updateViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom || m.streaming() {
		m.viewport.GotoBottom()
	}
}

// streaming reports whether a request is in flight.
func (m Model) streaming() bool {
	return m.session != nil && m.session.Status().Busy()
}
