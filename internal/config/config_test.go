// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/language"
)

// =============================================================================
// DEFAULTS AND NORMALIZATION
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.AutoSave.IntervalSecs != DefaultAutoSaveInterval {
		t.Errorf("interval = %d", cfg.AutoSave.IntervalSecs)
	}
}

func TestNormalize_ClampsAutoSaveInterval(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultAutoSaveInterval},
		{1, MinAutoSaveInterval},
		{5, 5},
		{300, 300},
		{9999, MaxAutoSaveInterval},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.AutoSave.IntervalSecs = tt.in
		cfg.Normalize()
		if cfg.AutoSave.IntervalSecs != tt.want {
			t.Errorf("interval %d -> %d, want %d", tt.in, cfg.AutoSave.IntervalSecs, tt.want)
		}
	}
}

func TestValidate_Rejections(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"
	if err := cfg.Validate(); err == nil {
		t.Error("bad theme must fail validation")
	}

	cfg = Default()
	cfg.UI.Language = "not a tag!"
	if err := cfg.Validate(); err == nil {
		t.Error("bad language must fail validation")
	}

	cfg = Default()
	cfg.Assistant.URL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("non-http URL must fail validation")
	}
}

func TestLanguageTag(t *testing.T) {
	cfg := Default()
	cfg.UI.Language = "es"
	if got := cfg.LanguageTag(); got != language.Spanish {
		t.Errorf("tag = %v", got)
	}

	cfg.UI.Language = "??"
	if got := cfg.LanguageTag(); got != language.English {
		t.Errorf("fallback tag = %v", got)
	}
}

// =============================================================================
// FILE ROUND TRIP
// =============================================================================

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Assistant.Model = "llama3.1:8b"
	cfg.UI.Theme = "light"
	cfg.AutoSave.IntervalSecs = 60

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.Assistant.Model != "llama3.1:8b" || got.UI.Theme != "light" || got.AutoSave.IntervalSecs != 60 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.UI.Language = "es"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.UI.Language != "es" {
		t.Errorf("language = %q", got.UI.Language)
	}
}

func TestLoadFromPath_FillsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600)

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.UI.Theme != "light" {
		t.Errorf("theme = %q", got.UI.Theme)
	}
	if got.Assistant.URL == "" || got.AutoSave.IntervalSecs != DefaultAutoSaveInterval {
		t.Errorf("defaults not filled: %+v", got)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHEETRUN_MODEL", "mistral:7b")
	t.Setenv("SHEETRUN_AUTOSAVE", "false")
	t.Setenv("SHEETRUN_AUTOSAVE_INTERVAL", "120")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Assistant.Model != "mistral:7b" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
	if cfg.AutoSave.Enabled {
		t.Error("autosave should be disabled via env")
	}
	if cfg.AutoSave.IntervalSecs != 120 {
		t.Errorf("interval = %d", cfg.AutoSave.IntervalSecs)
	}
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	var reloaded atomic.Pointer[Config]
	w, err := Watch(path, func(cfg *Config) { reloaded.Store(cfg) }, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got := reloaded.Load(); got != nil && got.UI.Theme == "light" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher did not deliver the reloaded config")
}

func TestWatcher_BadFileReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	SaveTOML(Default(), path)

	var errs atomic.Int32
	w, err := Watch(path, func(*Config) {}, func(error) { errs.Add(1) })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	os.WriteFile(path, []byte("theme = [broken"), 0600)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if errs.Load() > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher did not surface the reload failure")
}
