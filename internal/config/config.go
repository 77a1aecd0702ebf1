/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable configuration, persisted as YAML
// in the per-user config directory. Environment variables act as read-only
// overrides at runtime, and the relay join token never touches the disk:
// it lives in the OS keyring.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "corkboard/internal/log"
)

// RelayConfig points peers at the shared relay daemon.
type RelayConfig struct {
	URL         string `yaml:"url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// The join token is not stored on disk; it lives in the OS keyring.
}

// StoreConfig selects the flag/settings backend. An empty DSN means the
// embedded SQLite store under the data directory; "memory" keeps state
// in-process; postgres:// selects the shared server store.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// ResolveDSN maps the configured DSN onto one the store dispatcher
// understands: empty becomes the embedded SQLite file under dataDir, or
// the in-process store when no data dir is available.
func (s StoreConfig) ResolveDSN(dataDir string) string {
	if s.DSN != "" {
		return s.DSN
	}
	if dataDir == "" {
		return "memory"
	}
	return filepath.Join(dataDir, "corkboard.db")
}

type GeneralConfig struct {
	DisplayName    string `yaml:"display_name"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the root of the config file.
//
// config_version: bump when the structure changes in a backward-incompatible
// way. Unknown fields are ignored on unmarshal, so older binaries tolerate
// newer files.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Relay         RelayConfig   `yaml:"relay"`
	Store         StoreConfig   `yaml:"store"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DisplayName: "", Theme: "system", TelemetryOptIn: false},
		Relay:         RelayConfig{URL: "ws://localhost:8750/ws", TimeoutMs: 15000, TLSInsecure: false},
		Store:         StoreConfig{DSN: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir      = "CKB_CONFIG_DIR"
	EnvDataDir        = "CKB_DATA_DIR"
	EnvRelayURL       = "CKB_RELAY_URL"
	EnvRelayTimeoutMs = "CKB_RELAY_TIMEOUT_MS"
	EnvTLSInsecure    = "CKB_TLS_INSECURE"
	EnvStoreDSN       = "CKB_STORE_DSN"
	EnvDisplayName    = "CKB_DISPLAY_NAME"
	EnvTelemetryOptIn = "CKB_TELEMETRY_OPT_IN"
	EnvLogLevel       = "CKB_LOG_LEVEL"
	EnvLogFormat      = "CKB_LOG_FORMAT"
	EnvLogSource      = "CKB_LOG_SOURCE"
	EnvLogFile        = "CKB_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "Corkboard"
	keyringToken   = "relay_token"
)

// tokenStore abstracts the keyring so tests can stub it.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring forwards to the keyring functions wired up in keyring_real.go
// or keyring_stub.go depending on build tags.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) {
	return keyringGet(service, key)
}

func (k *osKeyring) Set(service, key, value string) error {
	return keyringSet(service, key, value)
}

func (k *osKeyring) Delete(service, key string) error {
	return keyringDelete(service, key)
}

// ConfigPath returns the per-user config file path. CKB_CONFIG_DIR wins for
// portable installs and tests.
func ConfigPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Join(dir, "config.yaml"), nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Corkboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Corkboard")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "corkboard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir returns the per-user data directory holding the embedded store
// and crash reports. CKB_DATA_DIR overrides it.
func DataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		return dir, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LocalAppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		base = filepath.Join(base, "Corkboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Corkboard")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = filepath.Join(xdg, "corkboard")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".local", "share", "corkboard")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve data directory")
	}
	return base, nil
}

// Load reads the user config file (if present), applies defaults, and
// merges environment overrides. The relay token comes from the keyring and
// is returned separately so it never sits in the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the config YAML and persists the token into the OS keyring
// when non-empty.
func Save(cfg AppConfig, token string) error {
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
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the relay token from the keyring.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.DisplayName) != "" {
		dst.General.DisplayName = strings.TrimSpace(src.General.DisplayName)
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Relay.URL != "" {
		dst.Relay.URL = src.Relay.URL
	}
	if src.Relay.TimeoutMs != 0 {
		dst.Relay.TimeoutMs = src.Relay.TimeoutMs
	}
	dst.Relay.TLSInsecure = src.Relay.TLSInsecure
	if strings.TrimSpace(src.Store.DSN) != "" {
		dst.Store.DSN = strings.TrimSpace(src.Store.DSN)
	}
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

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRelayURL)); v != "" {
		cfg.Relay.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRelayTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Relay.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTLSInsecure)); v != "" {
		cfg.Relay.TLSInsecure = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreDSN)); v != "" {
		cfg.Store.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDisplayName)); v != "" {
		cfg.General.DisplayName = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// EnvOverrideFor reports the env var name when the field is currently
// overridden by the environment. Keys use the YAML dotted path.
func EnvOverrideFor(key string) (string, bool) {
	byKey := map[string]string{
		"relay.url":                EnvRelayURL,
		"relay.timeout_ms":         EnvRelayTimeoutMs,
		"relay.tls_insecure":       EnvTLSInsecure,
		"store.dsn":                EnvStoreDSN,
		"general.display_name":     EnvDisplayName,
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}
	name, ok := byKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// DialTimeout converts the configured relay timeout to a duration, falling
// back to the default for zero or negative values.
func (r RelayConfig) DialTimeout() time.Duration {
	ms := r.TimeoutMs
	if ms <= 0 {
		ms = Defaults().Relay.TimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// LogOptions maps the logging section onto the logger's option struct.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     l.Level,
		Format:    l.Format,
		AddSource: l.Source,
		File:      l.File,
	}
}
