/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry is a small opt-in event sender for anonymous usage
// counters and optional crash report uploads. Everything is disabled by
// default; with no endpoint configured every call is a no-op even when the
// opt-in flag is set.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "corkboard/internal/log"
	"corkboard/internal/version"
)

// Config holds the runtime telemetry settings.
//
// Environment variables (read by FromEnv):
//   - CKB_TELEMETRY_OPT_IN: "1", "true", "yes", "on" enables metrics
//   - CKB_TELEMETRY_URL: base URL to POST JSON events to
//   - CKB_CRASH_UPLOAD_URL: URL to POST crash reports to
//   - CKB_TELEMETRY_TIMEOUT_MS: request timeout, default 1500ms
//   - CKB_TELEMETRY_DEBUG: if set, logs send attempts
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

// FromEnv reads the telemetry configuration from the environment.
func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("CKB_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("CKB_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("CKB_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("CKB_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("CKB_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Client sends events asynchronously over a bounded queue and drops them
// silently when the queue is full or a send fails. It never blocks the
// caller.
type Client struct {
	cfg   Config
	log   *slog.Logger
	httpc *http.Client
	queue chan any
	once  sync.Once
	done  chan struct{}
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault initializes the package-level default client from env on
// first use.
func InitDefault() {
	defaultOnce.Do(func() {
		NewDefault(FromEnv())
	})
}

// NewDefault installs cfg as the default client.
func NewDefault(cfg Config) {
	defaultClient = New(cfg)
}

// New constructs a client and starts its sender goroutine.
func New(cfg Config) *Client {
	c := &Client{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		httpc: &http.Client{Timeout: cfg.Timeout},
		queue: make(chan any, 64),
		done:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether metrics are opted in and an endpoint is set.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports the default client's state.
func Enabled() bool {
	InitDefault()
	return defaultClient.Enabled()
}

// Event enqueues a small JSON event if enabled. Props must not carry
// personal data; they are merged into the payload as-is.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		payload[k] = v
	}
	select {
	case c.queue <- payload:
	default:
		// drop if queue full
	}
}

// Event enqueues through the default client.
func Event(name string, props map[string]any) { InitDefault(); defaultClient.Event(name, props) }

// Flush waits briefly for the queue to drain.
func (c *Client) Flush(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		if len(c.queue) == 0 || time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the sender goroutine.
func (c *Client) Close() { c.once.Do(func() { close(c.done) }) }

func (c *Client) loop() {
	for {
		select {
		case <-c.done:
			return
		case item := <-c.queue:
			c.send(item)
		}
	}
}

func (c *Client) send(item any) {
	buf, _ := json.Marshal(item)
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry event sent")
	}
}

// UploadCrash posts an already serialized crash report to the crash URL.
// Requires opt-in plus a configured URL, otherwise a no-op.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	go func(b []byte) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.httpc.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
		if c.cfg.DebugLogging {
			c.log.Debug("crash report uploaded")
		}
	}(append([]byte(nil), report...))
}

// UploadCrash posts through the default client.
func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }
