// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/sheetrun-tui/internal/export"
	"github.com/jeranaias/sheetrun-tui/internal/model"
	"github.com/jeranaias/sheetrun-tui/internal/session"
	"github.com/jeranaias/sheetrun-tui/internal/sheet"
	"github.com/jeranaias/sheetrun-tui/internal/storage"
)

// =============================================================================
// PARSING
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"  /help", true},
		{"help", false},
		{"sum column B", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCommand(tt.input); got != tt.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/export csv")
	if !result.IsCommand {
		t.Fatal("IsCommand = false")
	}
	if result.Command == nil || result.Command.Name != "/export" {
		t.Fatalf("Command = %+v", result.Command)
	}
	if len(result.Args) != 1 || result.Args[0] != "csv" {
		t.Errorf("Args = %v", result.Args)
	}
}

func TestParse_Alias(t *testing.T) {
	p := NewParser(NewRegistry())
	if result := p.Parse("/q"); result.Command == nil || result.Command.Name != "/quit" {
		t.Errorf("alias /q did not resolve to /quit")
	}
}

func TestParse_Unknown(t *testing.T) {
	p := NewParser(NewRegistry())
	result := p.Parse("/frobnicate")
	if !result.IsCommand || result.Command != nil {
		t.Errorf("result = %+v", result)
	}
}

func TestParse_NotACommand(t *testing.T) {
	p := NewParser(NewRegistry())
	if result := p.Parse("make a budget sheet"); result.IsCommand {
		t.Error("plain text parsed as command")
	}
}

func TestSplitCommandLine_Quotes(t *testing.T) {
	tokens := splitCommandLine(`/use "Q3 Report"`)
	if len(tokens) != 2 || tokens[1] != "Q3 Report" {
		t.Errorf("tokens = %v", tokens)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateArgs(t *testing.T) {
	registry := NewRegistry()

	use := registry.Get("/use")
	if err := ValidateArgs(use, nil); err == nil {
		t.Error("/use without ID must fail validation")
	}
	if err := ValidateArgs(use, []string{"art-1"}); err != nil {
		t.Errorf("/use art-1: %v", err)
	}

	exp := registry.Get("/export")
	if err := ValidateArgs(exp, []string{"pdf"}); err == nil {
		t.Error("/export pdf must fail enum validation")
	}
	if err := ValidateArgs(exp, []string{"csv"}); err != nil {
		t.Errorf("/export csv: %v", err)
	}
	if err := ValidateArgs(exp, nil); err != nil {
		t.Errorf("/export with no args: %v", err)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func TestHandleUse_RestoresWorkbook(t *testing.T) {
	wb := sheet.NewWorkbook()
	if err := wb.CreateSheetWithData("Old", []string{"A"}, [][]string{{"1"}}); err != nil {
		t.Fatalf("CreateSheetWithData: %v", err)
	}

	// Snapshot of a different workbook becomes the artifact payload.
	other := sheet.NewWorkbook()
	other.CreateSheetWithData("Budget", []string{"Item"}, [][]string{{"Rent"}})
	data, err := other.WorkbookData().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	sess := session.New()
	sess.AddArtifact(model.NewArtifact("art-1", "Budget", model.ArtifactSheet, data))

	ctx := &Context{Session: sess, Workbook: wb}
	msg := HandleUse(ctx, []string{"art-1"})()

	restored, ok := msg.(ArtifactRestoredMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if restored.ID != "art-1" {
		t.Errorf("ID = %q", restored.ID)
	}
	if wb.ActiveSheet() != "Budget" {
		t.Errorf("active sheet = %q after restore", wb.ActiveSheet())
	}
}

func TestHandleUse_UnknownArtifact(t *testing.T) {
	ctx := &Context{Session: session.New(), Workbook: sheet.NewWorkbook()}
	msg := HandleUse(ctx, []string{"nope"})()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
}

func TestHandleArtifacts_Empty(t *testing.T) {
	msg := HandleArtifacts(&Context{Session: session.New()}, nil)()
	if _, ok := msg.(InfoMsg); !ok {
		t.Fatalf("msg = %T, want InfoMsg", msg)
	}
}

func TestHandleExport_EmptyWorkbook(t *testing.T) {
	msg := HandleExport(&Context{Workbook: sheet.NewPendingWorkbook()}, nil)()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
}

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "sheetrun.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHandleNew_StartsFreshWorkbook(t *testing.T) {
	store := newTestStore(t)
	wb := sheet.NewWorkbook()
	wb.CreateSheetWithData("Old", []string{"A"}, nil)

	var switched string
	ctx := &Context{
		Store:            store,
		Workbook:         wb,
		OnWorkbookSwitch: func(id string) { switched = id },
	}

	msg := HandleNew(ctx, nil)()
	sw, ok := msg.(WorkbookSwitchedMsg)
	if !ok {
		t.Fatalf("msg = %T, want WorkbookSwitchedMsg", msg)
	}
	if !sw.Created {
		t.Error("Created = false")
	}
	if switched != sw.ID {
		t.Errorf("switch callback got %q, msg carries %q", switched, sw.ID)
	}
	if wb.Ready() {
		t.Error("workbook should be pending after /new")
	}
	if _, err := store.GetWorkbook(sw.ID); err != nil {
		t.Errorf("GetWorkbook(%s): %v", sw.ID, err)
	}
}

func TestHandleOpen_RestoresStoredContent(t *testing.T) {
	store := newTestStore(t)

	src := sheet.NewWorkbook()
	src.CreateSheetWithData("Budget", []string{"Item"}, [][]string{{"Rent"}})
	content, _ := src.WorkbookData().Marshal()
	rec, err := store.CreateWorkbook("Q3", content)
	if err != nil {
		t.Fatalf("CreateWorkbook: %v", err)
	}

	wb := sheet.NewPendingWorkbook()
	ctx := &Context{Store: store, Workbook: wb}

	msg := HandleOpen(ctx, []string{rec.ID})()
	sw, ok := msg.(WorkbookSwitchedMsg)
	if !ok {
		t.Fatalf("msg = %T, want WorkbookSwitchedMsg", msg)
	}
	if sw.Title != "Q3" || sw.Created {
		t.Errorf("msg = %+v", sw)
	}
	if wb.ActiveSheet() != "Budget" {
		t.Errorf("active sheet = %q after open", wb.ActiveSheet())
	}
}

func TestHandleImport_CreatesWorkbookFromXLSX(t *testing.T) {
	src := sheet.NewWorkbook()
	src.CreateSheetWithData("Ventas", []string{"Mes", "Total"}, [][]string{{"Enero", "100"}})

	data, err := export.NewXLSXExporter().Export(src.WorkbookData())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ventas.xlsx")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := newTestStore(t)
	wb := sheet.NewPendingWorkbook()
	var switched string
	ctx := &Context{
		Store:            store,
		Workbook:         wb,
		OnWorkbookSwitch: func(id string) { switched = id },
	}

	msg := HandleImport(ctx, []string{path})()
	sw, ok := msg.(WorkbookSwitchedMsg)
	if !ok {
		t.Fatalf("msg = %T, want WorkbookSwitchedMsg", msg)
	}
	if sw.Title != "ventas" {
		t.Errorf("title = %q, want file basename", sw.Title)
	}
	if switched != sw.ID {
		t.Errorf("switch callback got %q, msg carries %q", switched, sw.ID)
	}
	if wb.ActiveSheet() != "Ventas" {
		t.Errorf("active sheet = %q after import", wb.ActiveSheet())
	}

	// The imported content is durably stored on the new record.
	rec, err := store.GetWorkbook(sw.ID)
	if err != nil {
		t.Fatalf("GetWorkbook: %v", err)
	}
	if len(rec.Content) == 0 {
		t.Error("imported workbook record should carry the snapshot")
	}
}

func TestHandleImport_MissingFile(t *testing.T) {
	ctx := &Context{Store: newTestStore(t), Workbook: sheet.NewPendingWorkbook()}
	msg := HandleImport(ctx, []string{filepath.Join(t.TempDir(), "absent.xlsx")})()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
}

func TestHandleOpen_NoArgsListsWorkbooks(t *testing.T) {
	store := newTestStore(t)
	store.CreateWorkbook("Q3", nil)

	msg := HandleOpen(&Context{Store: store}, nil)()
	infoMsg, ok := msg.(InfoMsg)
	if !ok {
		t.Fatalf("msg = %T, want InfoMsg", msg)
	}
	if !strings.Contains(infoMsg.Text, "Q3") {
		t.Errorf("listing missing workbook title: %q", infoMsg.Text)
	}
}

func TestHandleOpen_UnknownID(t *testing.T) {
	msg := HandleOpen(&Context{Store: newTestStore(t)}, []string{"nope"})()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
}

func TestHandleHelp_ListsCommands(t *testing.T) {
	msg := HandleHelp(&Context{}, nil)()
	infoMsg, ok := msg.(InfoMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	for _, want := range []string{"/export", "/artifacts", "/use", "/quit"} {
		if !strings.Contains(infoMsg.Text, want) {
			t.Errorf("help missing %s", want)
		}
	}
}
