/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics into artifacts: a logged stack trace, a crash
// report file, and a best-effort autosave of the open board.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"corkboard/internal/boardfile"
	"corkboard/internal/domain"
	applog "corkboard/internal/log"
	"corkboard/internal/telemetry"
	"corkboard/internal/version"
)

// CrashesDirName is the subdirectory of the data dir that holds crash
// reports and autosaves.
const CrashesDirName = "crashes"

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Handle tells Recover where crash artifacts go and how to capture the
// open board. A nil Handle still produces a report in the system temp dir.
type Handle struct {
	// Dir is the application data directory.
	Dir string
	// Name labels the autosaved board.
	Name string
	// Snapshot returns the open board, or nil when none is open.
	Snapshot func() *domain.Board
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe autosave
// of the open board (if a snapshot function is provided).
//
// Usage: defer func(){ crash.Recover(h) }()
func Recover(h *Handle) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(h, r, stack)
		if path, err := autosaveBoard(h); err != nil {
			l.Error("crash autosave failed", slog.Any("err", err))
		} else if path != "" {
			l.Info("crash autosave written", slog.String("path", path))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// crashDir resolves the directory crash artifacts land in, creating it
// when it lives under the handle's data dir.
func crashDir(h *Handle) string {
	if h != nil && h.Dir != "" {
		dir := filepath.Join(h.Dir, CrashesDirName)
		_ = os.MkdirAll(dir, 0o755)
		return dir
	}
	return os.TempDir()
}

func writeReport(h *Handle, panicVal any, stack []byte) (string, error) {
	dir := crashDir(h)
	stamp := time.Now().Format("20060102-150405")
	fname := fmt.Sprintf("crash-%s.log", stamp)
	path := filepath.Join(dir, fname)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Corkboard Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if h != nil {
		if h.Name != "" {
			_, _ = fmt.Fprintf(&buf, "Board: %s\n", h.Name)
		}
		if h.Dir != "" {
			_, _ = fmt.Fprintf(&buf, "DataDir: %s\n", h.Dir)
		}
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	// write to file
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	// optionally upload anonymized crash report (opt-in via env)
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// autosaveBoard writes the open board as a regular board file next to the
// report so it can be reopened after a restart. Returns "" when no board
// is open.
func autosaveBoard(h *Handle) (string, error) {
	if h == nil || h.Snapshot == nil {
		return "", nil
	}
	b := h.Snapshot()
	if b == nil {
		return "", nil
	}
	name := h.Name
	if name == "" {
		name = "Recovered board"
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(crashDir(h), fmt.Sprintf("autosave-%s.board.json", stamp))
	if err := boardfile.Save(path, name, b); err != nil {
		return "", err
	}
	return path, nil
}
