/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"corkboard/internal/boardfile"
)

func TestExportBoardBundle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall")
	if err := ExportBoardBundle(sampleBoard(), "Case wall", out, Options{}); err != nil {
		t.Fatalf("export bundle: %v", err)
	}

	rd, err := zip.OpenReader(out + ".zip")
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = rd.Close() }()

	entries := map[string][]byte{}
	for _, f := range rd.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		entries[f.Name] = data
	}

	for _, name := range []string{BundleBoardEntry, BundleSnapshotEntry, BundleManifestEntry} {
		if len(entries[name]) == 0 {
			t.Fatalf("%s missing or empty", name)
		}
	}

	var doc boardfile.File
	if err := json.Unmarshal(entries[BundleBoardEntry], &doc); err != nil {
		t.Fatalf("unmarshal board.json: %v", err)
	}
	if doc.Name != "Case wall" {
		t.Fatalf("board name = %q, want %q", doc.Name, "Case wall")
	}
	if doc.FormatVersion != boardfile.FormatVersion {
		t.Fatalf("format version = %d", doc.FormatVersion)
	}
	if len(doc.Board.Items) != 2 || len(doc.Board.Connections) != 1 {
		t.Fatalf("board content = %d items %d connections", len(doc.Board.Items), len(doc.Board.Connections))
	}

	var m bundleManifest
	if err := json.Unmarshal(entries[BundleManifestEntry], &m); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if m.Items != 2 || m.Connections != 1 {
		t.Fatalf("manifest counts = %d/%d", m.Items, m.Connections)
	}
}

func TestExportBoardBundleRespectsExistingExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall.ZIP")
	if err := ExportBoardBundle(sampleBoard(), "x", out, Options{}); err != nil {
		t.Fatalf("export bundle: %v", err)
	}
	rd, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("expected archive at %s: %v", out, err)
	}
	_ = rd.Close()
}
