// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/aichat-tui/internal/util"
)

// AppDirName is the per-user directory holding config and history.
const AppDirName = ".aichat"

// ConfigFileName is the TOML config file under the app directory.
const ConfigFileName = "config.toml"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete application configuration.
type Config struct {
	// API contains endpoint credentials and model selection.
	API APIConfig `toml:"api"`

	// Chat contains conversation behavior settings.
	Chat ChatConfig `toml:"chat"`

	// UI contains display settings.
	UI UIConfig `toml:"ui"`
}

// APIConfig contains endpoint credentials and model selection.
type APIConfig struct {
	// Key is the bearer token sent with every request.
	Key string `toml:"key"`
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string `toml:"base_url"`
	// Model is the model name sent in requests.
	Model string `toml:"model"`
	// SupportsVision marks the model as accepting image content.
	SupportsVision bool `toml:"supports_vision"`
	// SkipVisionWarning suppresses the prompt shown when attaching an
	// image to a model not marked vision-capable.
	SkipVisionWarning bool `toml:"skip_vision_warning"`
}

// ChatConfig contains conversation behavior settings.
type ChatConfig struct {
	// SystemPrompt is prepended to every request when enabled. It is
	// never written into conversation history.
	SystemPrompt string `toml:"system_prompt"`
	// SystemPromptEnabled toggles the system prompt without losing it.
	SystemPromptEnabled bool `toml:"system_prompt_enabled"`
}

// UIConfig contains display settings.
type UIConfig struct {
	// Theme selects the syntax highlighting style for code blocks.
	Theme string `toml:"theme"`
	// ShowTimestamps toggles per-message timestamps in the transcript.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Chat: ChatConfig{
			SystemPromptEnabled: true,
		},
		UI: UIConfig{
			Theme: "monokai",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the app directory (~/.aichat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// EnsureDir creates the app directory if missing.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, layering it over defaults and applying
// environment overrides last. A missing file is not an error; defaults
// plus environment apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a config file at an explicit location.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Save writes the config atomically to the default location. The file
// holds the API key, so it is written owner-only.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the config atomically to an explicit location.
func SaveToPath(cfg *Config, path string) error {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0o600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides layers AICHAT_* environment variables over the
// loaded values. Environment wins over file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AICHAT_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("AICHAT_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("AICHAT_MODEL"); v != "" {
		c.API.Model = v
	}
	if v := os.Getenv("AICHAT_SUPPORTS_VISION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.API.SupportsVision = b
		}
	}
	if v := os.Getenv("AICHAT_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
		c.Chat.SystemPromptEnabled = true
	}
	if v := os.Getenv("AICHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that the configuration can produce working requests.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.API.Key) == "" {
		errs = append(errs, "api.key is required (or set AICHAT_API_KEY)")
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if strings.TrimSpace(c.API.Model) == "" {
		errs = append(errs, "api.model is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// SystemPrompt returns the effective system prompt, or "" when disabled.
func (c *Config) SystemPrompt() string {
	if !c.Chat.SystemPromptEnabled {
		return ""
	}
	return strings.TrimSpace(c.Chat.SystemPrompt)
}
