/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"corkboard/internal/boardfile"
	"corkboard/internal/domain"
)

// TestRecover_PanickingCall ensures Recover handles a panic, writes a report,
// autosaves the board, and does not terminate the test process due to injected exitFn.
func TestRecover_PanickingCall(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(os.Stderr, r) // drain pipe
	}()

	// Override exitFn to avoid os.Exit during test and to assert it was called
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	h := &Handle{
		Dir:  root,
		Name: "My case wall",
		Snapshot: func() *domain.Board {
			return &domain.Board{Items: []domain.Item{{ID: "n1", Type: domain.ItemNote, X: 10, Y: 20}}}
		},
	}

	// Trigger a panic that Recover will catch
	func() {
		defer Recover(h)
		panic("boom")
	}()

	// Allow time for filesystem writes
	time.Sleep(50 * time.Millisecond)

	dir := filepath.Join(root, CrashesDirName)
	var report, autosave string
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(dir, f.Name())
		case strings.HasPrefix(f.Name(), "autosave-") && strings.HasSuffix(f.Name(), ".board.json"):
			autosave = filepath.Join(dir, f.Name())
		}
	}
	if report == "" {
		t.Fatalf("expected crash report file under crashes dir")
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}

	if autosave == "" {
		t.Fatalf("expected autosave board file under crashes dir")
	}
	bf, err := boardfile.Load(autosave)
	if err != nil {
		t.Fatalf("load autosave: %v", err)
	}
	if bf.Name != "My case wall" {
		t.Fatalf("autosave name = %q, want %q", bf.Name, "My case wall")
	}
	if len(bf.Board.Items) != 1 || bf.Board.Items[0].ID != "n1" {
		t.Fatalf("autosave board items = %+v", bf.Board.Items)
	}

	// Ensure exit was attempted with code 2 (but intercepted)
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestAutosaveWithoutSnapshotIsSkipped(t *testing.T) {
	path, err := autosaveBoard(&Handle{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("autosaveBoard error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no autosave path, got %q", path)
	}
}
