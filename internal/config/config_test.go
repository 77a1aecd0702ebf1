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
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeTokenStore struct{ m map[string]string }

func (f *fakeTokenStore) Get(service, key string) (string, error) {
	v, ok := f.m[service+"/"+key]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func (f *fakeTokenStore) Set(service, key, value string) error {
	f.m[service+"/"+key] = value
	return nil
}

func (f *fakeTokenStore) Delete(service, key string) error {
	delete(f.m, service+"/"+key)
	return nil
}

// isolate points the config dir at a temp dir and swaps the keyring for an
// in-memory fake so tests never touch the user's machine state.
func isolate(t *testing.T) *fakeTokenStore {
	t.Helper()
	t.Setenv(EnvConfigDir, t.TempDir())
	orig := tokenStore
	f := &fakeTokenStore{m: map[string]string{}}
	tokenStore = f
	t.Cleanup(func() { tokenStore = orig })
	return f
}

func TestEnvOverridesRelayURL(t *testing.T) {
	isolate(t)
	t.Setenv(EnvRelayURL, "wss://example.test:8443/ws")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Relay.URL, "wss://example.test:8443/ws"; got != want {
		t.Fatalf("Relay.URL = %q, want %q", got, want)
	}
}

func TestEnvOverridesStoreAndGeneral(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStoreDSN, "postgres://ckb@db/corkboard")
	t.Setenv(EnvDisplayName, "Alex")
	t.Setenv(EnvTelemetryOptIn, "true")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.DSN != "postgres://ckb@db/corkboard" {
		t.Fatalf("Store.DSN = %q", cfg.Store.DSN)
	}
	if cfg.General.DisplayName != "Alex" || !cfg.General.TelemetryOptIn {
		t.Fatalf("general overrides not applied: %#v", cfg.General)
	}
}

func TestMergeKeepsFileValues(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.General.DisplayName = "  Sam  "
	src.Relay.URL = "ws://hub.local:8750/ws"
	src.Relay.TimeoutMs = 4000
	src.Store.DSN = "memory"
	mergeInto(&dst, &src)

	if dst.General.DisplayName != "Sam" {
		t.Fatalf("DisplayName = %q, want trimmed Sam", dst.General.DisplayName)
	}
	if dst.Relay.URL != "ws://hub.local:8750/ws" || dst.Relay.TimeoutMs != 4000 {
		t.Fatalf("relay fields not merged: %#v", dst.Relay)
	}
	if dst.Store.DSN != "memory" {
		t.Fatalf("Store.DSN = %q", dst.Store.DSN)
	}
}

func TestMergeNormalizesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = " DEBUG "
	src.Logging.Format = "JSON"
	src.Logging.Source = true
	src.Logging.File = "/tmp/ckb.log"
	mergeInto(&dst, &src)

	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/ckb.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/ckb-test.log")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/ckb-test.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveLoadRoundTripWithToken(t *testing.T) {
	store := isolate(t)

	cfg := Defaults()
	cfg.General.DisplayName = "Kim"
	cfg.Relay.URL = "ws://hub.local:8750/ws"
	cfg.Store.DSN = "postgres://ckb@db/corkboard"
	if err := Save(cfg, "join-token-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.General.DisplayName != "Kim" || loaded.Relay.URL != cfg.Relay.URL || loaded.Store.DSN != cfg.Store.DSN {
		t.Fatalf("loaded config does not match saved: %#v", loaded)
	}
	if tok != "join-token-123" {
		t.Fatalf("token = %q, want the saved one", tok)
	}

	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if len(store.m) != 0 {
		t.Fatalf("token still in keyring after clear")
	}
}

func TestEnvOverrideFor(t *testing.T) {
	isolate(t)
	t.Setenv(EnvRelayURL, "ws://elsewhere/ws")
	t.Setenv(EnvStoreDSN, "")

	if name, ok := EnvOverrideFor("relay.url"); !ok || name != EnvRelayURL {
		t.Fatalf("EnvOverrideFor(relay.url) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("store.dsn"); ok {
		t.Fatalf("store.dsn reported overridden without env")
	}
	if _, ok := EnvOverrideFor("no.such.key"); ok {
		t.Fatalf("unknown key reported overridden")
	}
}

func TestDialTimeout(t *testing.T) {
	if d := (RelayConfig{TimeoutMs: 2000}).DialTimeout(); d != 2*time.Second {
		t.Fatalf("DialTimeout = %v, want 2s", d)
	}
	if d := (RelayConfig{}).DialTimeout(); d != 15*time.Second {
		t.Fatalf("zero timeout = %v, want the 15s default", d)
	}
}

func TestResolveDSN(t *testing.T) {
	if got := (StoreConfig{DSN: "postgres://x"}).ResolveDSN("/data"); got != "postgres://x" {
		t.Fatalf("explicit DSN rewritten to %q", got)
	}
	if got := (StoreConfig{}).ResolveDSN("/data"); got != filepath.Join("/data", "corkboard.db") {
		t.Fatalf("empty DSN = %q, want the embedded sqlite file", got)
	}
	if got := (StoreConfig{}).ResolveDSN(""); got != "memory" {
		t.Fatalf("no data dir = %q, want memory", got)
	}
}

func TestDataDirHonorsEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "data")
	t.Setenv(EnvDataDir, want)

	got, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if got != want {
		t.Fatalf("DataDir = %q, want %q", got, want)
	}
}
