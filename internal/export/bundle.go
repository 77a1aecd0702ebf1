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
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"corkboard/internal/boardfile"
	"corkboard/internal/domain"
	"corkboard/internal/version"
)

// Bundle entry names.
const (
	BundleBoardEntry    = "board.json"
	BundleSnapshotEntry = "snapshot.png"
	BundleManifestEntry = "manifest.json"
)

// bundleManifest describes the archive for tools that do not want to parse
// the full board document.
type bundleManifest struct {
	App         string `json:"app"`
	SavedAt     string `json:"savedAt"`
	Name        string `json:"name,omitempty"`
	Items       int    `json:"items"`
	Connections int    `json:"connections"`
}

// ExportBoardBundle packages the board document and a PNG snapshot into a
// single zip archive for sharing. The board.json entry is the same document
// boardfile writes, so the bundle can be unpacked and opened directly.
func ExportBoardBundle(b *domain.Board, name, outPath string, opt Options) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath = outPath + ".zip"
	}

	doc := boardfile.File{
		FormatVersion: boardfile.FormatVersion,
		App:           "corkboard " + version.String(),
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
		Name:          name,
		Board:         *b,
	}
	if doc.Board.Items == nil {
		doc.Board.Items = []domain.Item{}
	}
	if doc.Board.Connections == nil {
		doc.Board.Connections = []domain.Connection{}
	}
	boardJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	boardJSON = append(boardJSON, '\n')

	img, err := RenderSnapshot(b, opt)
	if err != nil {
		return err
	}
	imgBuf := &bytes.Buffer{}
	if err := png.Encode(imgBuf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	manifest, err := json.MarshalIndent(bundleManifest{
		App:         doc.App,
		SavedAt:     doc.SavedAt,
		Name:        name,
		Items:       len(doc.Board.Items),
		Connections: len(doc.Board.Connections),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	manifest = append(manifest, '\n')

	zw, f, err := createZip(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := addZipFile(zw, BundleBoardEntry, boardJSON); err != nil {
		return fmt.Errorf("zip add board: %w", err)
	}
	if err := addZipFile(zw, BundleSnapshotEntry, imgBuf.Bytes()); err != nil {
		return fmt.Errorf("zip add snapshot: %w", err)
	}
	if err := addZipFile(zw, BundleManifestEntry, manifest); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
