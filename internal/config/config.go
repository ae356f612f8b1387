// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for sheetrun.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.sheetrun/config.toml
//   - ~/.sheetrun/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/jeranaias/sheetrun-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sheetrun configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Assistant endpoint configuration
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`

	// Auto-save configuration
	AutoSave AutoSaveConfig `toml:"auto_save" json:"auto_save"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// AssistantConfig contains the chat endpoint configuration.
type AssistantConfig struct {
	// URL is the base URL of the assistant endpoint
	URL string `toml:"url" json:"url"`
	// Model is the model name sent with each request
	Model string `toml:"model" json:"model"`
}

// AutoSaveConfig controls the debounced document persistence.
type AutoSaveConfig struct {
	// Enabled controls whether changes are saved automatically
	Enabled bool `toml:"enabled" json:"enabled"`
	// IntervalSecs is the debounce window in seconds.
	// Valid range is 5-600; values outside are clamped.
	IntervalSecs int `toml:"interval_secs" json:"interval_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Language is a BCP 47 tag for display formatting (e.g. "en", "es")
	Language string `toml:"language" json:"language"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// ShowGrid displays the spreadsheet pane next to the chat
	ShowGrid bool `toml:"show_grid" json:"show_grid"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

const (
	// AutoSave interval bounds, seconds.
	MinAutoSaveInterval     = 5
	MaxAutoSaveInterval     = 600
	DefaultAutoSaveInterval = 30
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Assistant: AssistantConfig{
			URL:   "http://127.0.0.1:11434",
			Model: "qwen2.5-coder:14b",
		},
		AutoSave: AutoSaveConfig{
			Enabled:      true,
			IntervalSecs: DefaultAutoSaveInterval,
		},
		UI: UIConfig{
			Theme:    "dark",
			Language: "en",
			ShowGrid: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sheetrun configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sheetrun"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is selected by extension; anything else parses as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SHEETRUN_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SHEETRUN_ASSISTANT_URL"); v != "" {
		c.Assistant.URL = v
	}
	if v := os.Getenv("SHEETRUN_MODEL"); v != "" {
		c.Assistant.Model = v
	}
	if v := os.Getenv("SHEETRUN_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SHEETRUN_LANGUAGE"); v != "" {
		c.UI.Language = v
	}
	if v := os.Getenv("SHEETRUN_AUTOSAVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoSave.Enabled = b
		}
	}
	if v := os.Getenv("SHEETRUN_AUTOSAVE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AutoSave.IntervalSecs = n
		}
	}
}

// =============================================================================
// NORMALIZATION AND VALIDATION
// =============================================================================

// Normalize clamps out-of-range values and fills empty fields.
func (c *Config) Normalize() {
	defaults := Default()

	if c.Assistant.URL == "" {
		c.Assistant.URL = defaults.Assistant.URL
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = defaults.Assistant.Model
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.Language == "" {
		c.UI.Language = defaults.UI.Language
	}

	if c.AutoSave.IntervalSecs == 0 {
		c.AutoSave.IntervalSecs = DefaultAutoSaveInterval
	}
	if c.AutoSave.IntervalSecs < MinAutoSaveInterval {
		c.AutoSave.IntervalSecs = MinAutoSaveInterval
	}
	if c.AutoSave.IntervalSecs > MaxAutoSaveInterval {
		c.AutoSave.IntervalSecs = MaxAutoSaveInterval
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return fmt.Errorf("ui.theme: must be dark, light or auto, got %q", c.UI.Theme)
	}

	if _, err := language.Parse(c.UI.Language); err != nil {
		return fmt.Errorf("ui.language: not a valid language tag: %q", c.UI.Language)
	}

	if !strings.HasPrefix(c.Assistant.URL, "http://") && !strings.HasPrefix(c.Assistant.URL, "https://") {
		return fmt.Errorf("assistant.url: must be an http(s) URL, got %q", c.Assistant.URL)
	}

	return nil
}

// LanguageTag returns the parsed UI language, falling back to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.UI.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# sheetrun configuration file\n")
	sb.WriteString("# Generated by sheetrun - edit with care\n\n")

	encoder := toml.NewEncoder(&sb)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
