// sheetrun - a terminal spreadsheet editor driven by an AI assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/sheetrun-tui/internal/commands"
	"github.com/jeranaias/sheetrun-tui/internal/config"
	"github.com/jeranaias/sheetrun-tui/internal/export"
	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/persist"
	"github.com/jeranaias/sheetrun-tui/internal/session"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/storage"
	"github.com/jeranaias/sheetrun-tui/internal/stream"
	"github.com/jeranaias/sheetrun-tui/internal/tools"
	"github.com/jeranaias/sheetrun-tui/internal/ui/chat"
	"github.com/jeranaias/sheetrun-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for callbacks firing off the UI loop (autosave
// results, config reloads).
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	fs := flag.NewFlagSet("sheetrun", flag.ExitOnError)
	modelFlag := fs.String("model", "", "assistant model (overrides config)")
	urlFlag := fs.String("url", "", "assistant endpoint URL (overrides config)")
	workbookFlag := fs.String("workbook", "", "workbook ID to open (default: most recent)")
	versionFlag := fs.Bool("version", false, "print version and exit")
	fs.Usage = usage

	args := os.Args[1:]

	// One-shot subcommands run without the TUI.
	if len(args) > 0 {
		switch args[0] {
		case "list":
			runList()
			return
		case "export":
			runExport(args[1:])
			return
		case "help", "-h", "--help":
			usage()
			return
		case "version", "-version", "--version":
			printVersion()
			return
		}
	}

	fs.Parse(args)
	if *versionFlag {
		printVersion()
		return
	}

	runTUI(*modelFlag, *urlFlag, *workbookFlag)
}

func usage() {
	fmt.Fprintf(os.Stderr, `sheetrun - AI-assisted spreadsheets in your terminal

Usage:
  sheetrun [flags]              start the editor
  sheetrun list                 list saved workbooks
  sheetrun export <id> [fmt]    export a workbook (xlsx, csv, json, md)
  sheetrun version              print version

Flags:
  -model <name>      assistant model (overrides config)
  -url <url>         assistant endpoint URL (overrides config)
  -workbook <id>     workbook to open (default: most recent)
`)
}

func printVersion() {
	fmt.Printf("sheetrun %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// =============================================================================
// DATABASE
// =============================================================================

// setupLogging points the stdlib logger at a file under the app dir.
// Stderr is useless once the alternate screen is up.
func setupLogging() func() {
	dir, err := config.ConfigDir()
	if err != nil {
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "sheetrun.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return func() {}
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
	return func() { f.Close() }
}

func openStore() (*storage.SQLiteStore, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return storage.Open(filepath.Join(dir, "sheetrun.db"))
}

// =============================================================================
// ONE-SHOT SUBCOMMANDS
// =============================================================================

// runList prints the saved workbooks, most recent first.
func runList() {
	store, err := openStore()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	books, err := store.ListWorkbooks()
	if err != nil {
		fatal(err)
	}
	if len(books) == 0 {
		fmt.Println("No workbooks yet. Run sheetrun to create one.")
		return
	}

	fmt.Printf("%-20s %-30s %s\n", "ID", "TITLE", "UPDATED")
	for _, wb := range books {
		fmt.Printf("%-20s %-30s %s\n", wb.ID, wb.Title, wb.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

// runExport writes a saved workbook to a file without starting the TUI.
func runExport(args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: sheetrun export <workbook-id> [xlsx|csv|json|md]"))
	}
	format := "xlsx"
	if len(args) > 1 {
		format = args[1]
	}

	store, err := openStore()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	record, err := store.GetWorkbook(args[0])
	if err != nil {
		fatal(fmt.Errorf("workbook %s: %w", args[0], err))
	}
	if len(record.Content) == 0 {
		fatal(fmt.Errorf("workbook %s is empty", args[0]))
	}

	snap, err := sheet.UnmarshalSnapshot(record.Content)
	if err != nil {
		fatal(fmt.Errorf("decode workbook: %w", err))
	}

	exporter, err := export.ForFormat(format)
	if err != nil {
		fatal(err)
	}
	path, err := export.ExportToFile(snap, record.Title, exporter, nil)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Exported to %s\n", path)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(modelOverride, urlOverride, workbookID string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fatal(fmt.Errorf("sheetrun needs an interactive terminal; see sheetrun help for one-shot commands"))
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if urlOverride != "" {
		cfg.Assistant.URL = urlOverride
	}
	if modelOverride != "" {
		cfg.Assistant.Model = modelOverride
	}

	closeLog := setupLogging()
	defer closeLog()

	store, err := openStore()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	record, err := resolveWorkbook(store, workbookID)
	if err != nil {
		fatal(err)
	}

	// /new and /open retarget saves to a different record mid-run.
	var saveMu sync.Mutex
	saveTargetID := record.ID
	setSaveTarget := func(id string) {
		saveMu.Lock()
		saveTargetID = id
		saveMu.Unlock()
	}

	// The workbook handle starts pending; the first create_spreadsheet tool
	// call initializes it unless a persisted snapshot restores it first.
	workbook := sheet.NewPendingWorkbook()
	if len(record.Content) > 0 {
		if snap, err := sheet.UnmarshalSnapshot(record.Content); err == nil {
			workbook.Restore(snap)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: stored workbook content unreadable, starting fresh: %v\n", err)
		}
	}

	sess := session.New()

	registry := tools.NewRegistry()
	executor := tools.NewExecutor(registry, tools.Context{
		Handle:     workbook,
		OnArtifact: sess.AddArtifact,
	})

	client := stream.NewClient(cfg.Assistant.URL, cfg.Assistant.Model)

	// Each run logs its conversation to a fresh chat attached to the
	// workbook. Messages persist incrementally through the autosaver.
	chatRecord, err := store.CreateChat(record.ID, "Chat "+time.Now().Format("Jan 2 15:04"))
	if err != nil {
		fatal(fmt.Errorf("create chat log: %w", err))
	}
	persister := persist.NewMessagePersister(func(msg *model.Message) error {
		parts, err := json.Marshal(msg.Parts)
		if err != nil {
			return err
		}
		return store.AddMessage(&storage.ChatMessage{
			ID:        msg.ID,
			ChatID:    chatRecord.ID,
			Role:      string(msg.Role),
			Parts:     parts,
			CreatedAt: msg.Timestamp,
		})
	})

	saver := persist.NewAutoSaver(func() error {
		saveMu.Lock()
		targetID := saveTargetID
		saveMu.Unlock()
		if snap := workbook.WorkbookData(); snap != nil {
			content, err := snap.Marshal()
			if err != nil {
				return err
			}
			if err := store.UpdateWorkbookContent(targetID, content); err != nil {
				return err
			}
		}
		return persister.Sync(sess.Conversation())
	}, time.Duration(cfg.AutoSave.IntervalSecs)*time.Second)
	defer saver.Close()

	if cfg.AutoSave.Enabled {
		sess.SetOnChange(saver.Notify)
	}
	saver.SetOnResult(func(err error) {
		if err != nil {
			log.Printf("autosave failed: %v", err)
		}
		sendToProgram(chat.SaveResultMsg{Err: err, At: time.Now()})
	})

	// Live config reload. Edits to ~/.sheetrun/config.toml apply without a
	// restart; failures keep the running config.
	var watcher *config.Watcher
	if tomlPath, err := config.ConfigPathTOML(); err == nil {
		watcher, err = config.Watch(tomlPath,
			func(next *config.Config) {
				log.Printf("config reloaded from disk")
				sendToProgram(chat.ConfigReloadedMsg{Config: next})
			},
			func(err error) {
				log.Printf("config reload failed: %v", err)
				sendToProgram(commands.ErrMsg{
					Title:   "Config reload failed",
					Message: err.Error(),
					Tip:     "the previous configuration stays in effect",
				})
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: config watch disabled: %v\n", err)
			watcher = nil
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	theme := styles.NewTheme()

	m := chat.New(chat.Options{
		Theme:    theme,
		Config:   cfg,
		Session:  sess,
		Executor: executor,
		Client:   client,
		Store:    store,
		Workbook: workbook,
		Saver:    saver,
		Title:    record.Title,

		OnWorkbookSwitch: setSaveTarget,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	_, runErr := p.Run()

	programMu.Lock()
	programRef = nil
	programMu.Unlock()

	// Final flush; the quit path also force-saves but a crash of the UI
	// loop should not lose the document.
	if err := saver.ForceSave(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: final save failed: %v\n", err)
	}

	if runErr != nil {
		fatal(runErr)
	}
}

// resolveWorkbook picks the workbook to open: the requested ID, the most
// recently updated one, or a fresh untitled workbook.
func resolveWorkbook(store storage.Store, id string) (*storage.Workbook, error) {
	if id != "" {
		wb, err := store.GetWorkbook(id)
		if err != nil {
			return nil, fmt.Errorf("workbook %s: %w", id, err)
		}
		return wb, nil
	}

	books, err := store.ListWorkbooks()
	if err != nil {
		return nil, err
	}
	if len(books) > 0 {
		// List rows omit the content payload; fetch the full record.
		return store.GetWorkbook(books[0].ID)
	}
	return store.CreateWorkbook("Untitled", nil)
}
