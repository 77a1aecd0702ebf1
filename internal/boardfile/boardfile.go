/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package boardfile reads and writes standalone board documents: a board
// exported to (or imported from) a pretty-printed JSON file, with
// transactional writes, timestamped backups next to the file, and recovery
// from the latest backup when the main file is unreadable. The on-disk shape
// is validated by docs/board.schema.json.
package boardfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/version"
)

const (
	// FormatVersion is bumped on breaking changes to the file shape.
	FormatVersion = 1

	// BackupsDirName is created next to the board file.
	BackupsDirName = "backups"
)

// File is the on-disk board document.
type File struct {
	FormatVersion int          `json:"formatVersion"`
	App           string       `json:"app,omitempty"`
	SavedAt       string       `json:"savedAt,omitempty"`
	Name          string       `json:"name,omitempty"`
	Board         domain.Board `json:"board"`

	// Migrated reports that Load rewrote legacy items in memory; callers
	// that own the file should Save to persist the rewrite.
	Migrated bool `json:"-"`
}

// Save writes the board to path with transactional semantics and a
// timestamped backup of the previous file (if present).
func Save(path, name string, b *domain.Board) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("board file path is required")
	}
	if b == nil {
		return errors.New("nil board")
	}
	doc := File{
		FormatVersion: FormatVersion,
		App:           "corkboard " + version.String(),
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
		Name:          name,
		Board:         *b,
	}
	// The file format always carries arrays, never null.
	if doc.Board.Items == nil {
		doc.Board.Items = []domain.Item{}
	}
	if doc.Board.Connections == nil {
		doc.Board.Connections = []domain.Connection{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board file: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp)
		if cerr := copyFile(path, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current board file: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, then rename.
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp board file: %w", werr)
	}
	// On Windows, replace by removing the destination first if needed.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace board file: %w", rerr)
	}
	return nil
}

// Load reads a board document from path. If the main file cannot be read or
// parsed it falls back to the latest backup. Legacy image items are migrated
// forward in memory; File.Migrated reports whether that happened.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		f, berr := loadFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open board file: %w; backup attempt: %v", err, berr)
		}
		return f, nil
	}
	var f File
	if uerr := json.Unmarshal(data, &f); uerr != nil {
		bf, berr := loadFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse board file: %w; backup attempt: %v", uerr, berr)
		}
		return bf, nil
	}
	f.Migrated = board.MigrateItems(&f.Board)
	return &f, nil
}

// loadFromLatestBackup tries the newest timestamped backup next to path.
func loadFromLatestBackup(path string) (*File, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	base := filepath.Base(path)
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	data, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	f.Migrated = board.MigrateItems(&f.Board)
	return &f, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies src to dst, overwriting dst if it exists.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}
