/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"lumina/internal/domain"
	"lumina/internal/greeting"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

type GreetingConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// The API key is not stored on disk; it lives in the OS keychain.
}

type EditorConfig struct {
	Layout          string  `yaml:"layout"`
	Background      string  `yaml:"background"`
	Border          string  `yaml:"border"`
	ViewportPadding float64 `yaml:"viewport_padding"`
}

type ExportConfig struct {
	Dir          string  `yaml:"dir"`
	PixelScale   float64 `yaml:"pixel_scale"`
	PrintDelayMs int     `yaml:"print_delay_ms"`
	// PrintCommand, when set, spools a PDF to this command instead of writing a file.
	PrintCommand string `yaml:"print_command"`
}

type HistoryConfig struct {
	// DSN is a SQLite path or a postgres:// URL. Empty means the per-user default file.
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Greeting      GreetingConfig `yaml:"greeting"`
	Editor        EditorConfig   `yaml:"editor"`
	Export        ExportConfig   `yaml:"export"`
	History       HistoryConfig  `yaml:"history"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	st := domain.DefaultSettings()
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Greeting: GreetingConfig{
			BaseURL:   greeting.DefaultBaseURL,
			Model:     greeting.DefaultModel,
			TimeoutMs: int(greeting.DefaultTimeout / time.Millisecond),
		},
		Editor: EditorConfig{
			Layout:          string(st.Layout),
			Background:      st.Background,
			Border:          string(st.Border),
			ViewportPadding: 64,
		},
		Export:  ExportConfig{Dir: "exports", PixelScale: 1, PrintDelayMs: 100},
		History: HistoryConfig{},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "LUMINA_CONFIG"
	EnvGreetingURL     = "LUMINA_GREETING_URL"
	EnvGreetingModel   = "LUMINA_GREETING_MODEL"
	EnvGreetingTimeout = "LUMINA_GREETING_TIMEOUT_MS"
	EnvTelemetryOptIn  = "LUMINA_TELEMETRY_OPT_IN"
	EnvHistoryDSN      = "LUMINA_HISTORY_DSN"
	EnvExportDir       = "LUMINA_EXPORT_DIR"
	EnvPrintCommand    = "LUMINA_PRINT_COMMAND"
	// EnvAPIKey takes precedence over the keychain; EnvAPIKeyShort is the bare name
	// most hosted setups inject.
	EnvAPIKey      = "LUMINA_API_KEY"
	EnvAPIKeyShort = "API_KEY"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LUMINA_LOG_LEVEL"
	EnvLogFormat = "LUMINA_LOG_FORMAT"
	EnvLogSource = "LUMINA_LOG_SOURCE"
	EnvLogFile   = "LUMINA_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "Lumina"
	keyringAPIKey  = "greeting_api_key"
)

// tokenStore abstracts the keyring so tests can swap it.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}
func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error {
	if err := keyring.Delete(service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Lumina")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Lumina")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "lumina")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. The greeting API key is returned separately; it comes
// from the environment first, then the keychain.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, apiKey(), nil
}

func apiKey() string {
	for _, name := range []string{EnvAPIKey, EnvAPIKeyShort} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	key, _ := tokenStore.Get(keyringService, keyringAPIKey)
	return key
}

// Save writes the user config YAML and persists the API key into the OS keyring (if non-empty).
func Save(cfg AppConfig, key string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if key != "" {
		if err := tokenStore.Set(keyringService, keyringAPIKey, key); err != nil {
			return err
		}
	}
	return nil
}

// ForgetAPIKey removes the stored key from the keychain.
func ForgetAPIKey() error { return tokenStore.Delete(keyringService, keyringAPIKey) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Greeting.BaseURL != "" {
		dst.Greeting.BaseURL = strings.TrimRight(src.Greeting.BaseURL, "/")
	}
	if src.Greeting.Model != "" {
		dst.Greeting.Model = src.Greeting.Model
	}
	if src.Greeting.TimeoutMs > 0 {
		dst.Greeting.TimeoutMs = src.Greeting.TimeoutMs
	}
	if src.Editor.Layout != "" {
		dst.Editor.Layout = src.Editor.Layout
	}
	if src.Editor.Background != "" {
		dst.Editor.Background = src.Editor.Background
	}
	if src.Editor.Border != "" {
		dst.Editor.Border = src.Editor.Border
	}
	if src.Editor.ViewportPadding > 0 {
		dst.Editor.ViewportPadding = src.Editor.ViewportPadding
	}
	if strings.TrimSpace(src.Export.Dir) != "" {
		dst.Export.Dir = strings.TrimSpace(src.Export.Dir)
	}
	if src.Export.PixelScale > 0 {
		dst.Export.PixelScale = src.Export.PixelScale
	}
	if src.Export.PrintDelayMs > 0 {
		dst.Export.PrintDelayMs = src.Export.PrintDelayMs
	}
	if strings.TrimSpace(src.Export.PrintCommand) != "" {
		dst.Export.PrintCommand = strings.TrimSpace(src.Export.PrintCommand)
	}
	if strings.TrimSpace(src.History.DSN) != "" {
		dst.History.DSN = strings.TrimSpace(src.History.DSN)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGreetingURL)); v != "" {
		cfg.Greeting.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(EnvGreetingModel)); v != "" {
		cfg.Greeting.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGreetingTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Greeting.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDSN)); v != "" {
		cfg.History.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPrintCommand)); v != "" {
		cfg.Export.PrintCommand = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"greeting.base_url":        EnvGreetingURL,
	"greeting.model":           EnvGreetingModel,
	"greeting.timeout_ms":      EnvGreetingTimeout,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"history.dsn":              EnvHistoryDSN,
	"export.dir":               EnvExportDir,
	"export.print_command":     EnvPrintCommand,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the request timeout, falling back to the default.
func (g GreetingConfig) Timeout() time.Duration {
	if g.TimeoutMs <= 0 {
		return greeting.DefaultTimeout
	}
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

// Client builds the greeting client configuration.
func (g GreetingConfig) Client(apiKey string) greeting.Config {
	return greeting.Config{BaseURL: g.BaseURL, Model: g.Model, APIKey: apiKey, Timeout: g.Timeout()}
}

// PrintDelay is the pause between clearing the selection and printing.
func (e ExportConfig) PrintDelay() time.Duration {
	if e.PrintDelayMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(e.PrintDelayMs) * time.Millisecond
}

// Settings converts the editor section into card settings. Unknown tokens are
// reported; the returned settings fall back to defaults for those fields.
func (e EditorConfig) Settings() (domain.Settings, error) {
	st := domain.DefaultSettings()
	var errs []error
	if e.Layout != "" {
		if l, err := domain.ParseLayout(e.Layout); err == nil {
			st.Layout = l
		} else {
			errs = append(errs, err)
		}
	}
	if e.Border != "" {
		if b, err := domain.ParseBorder(e.Border); err == nil {
			st.Border = b
		} else {
			errs = append(errs, err)
		}
	}
	if e.Background != "" {
		if _, err := domain.ParseBackground(e.Background); err == nil {
			st.Background = e.Background
		} else {
			errs = append(errs, err)
		}
	}
	return st, errors.Join(errs...)
}
