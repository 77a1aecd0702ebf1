/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"corkboard/internal/domain"
)

func TestExportBoardPDF_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall.pdf")
	if err := ExportBoardPDF(sampleBoard(), "Case wall", out, Options{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("pdf file empty")
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", data[:8])
	}
}

func TestExportBoardPDFRejectsNilBoard(t *testing.T) {
	if err := ExportBoardPDF(nil, "x", filepath.Join(t.TempDir(), "x.pdf"), Options{}); err == nil {
		t.Fatalf("expected error for nil board")
	}
}

func TestExportBoardPDFWithRotatedAndImageItems(t *testing.T) {
	b := sampleBoard()
	b.Items = append(b.Items,
		domain.Item{ID: "c", Type: domain.ItemImage, X: 100, Y: 300, Label: "Suspect", ZIndex: 3,
			Data: domain.ItemData{Width: fptr(80), Height: fptr(100)}},
		domain.Item{ID: "d", Type: domain.ItemText, X: 500, Y: 100, ZIndex: 4,
			Data: domain.ItemData{Width: fptr(160), Height: fptr(40), Text: "Follow the money"}},
	)
	out := filepath.Join(t.TempDir(), "wall.pdf")
	if err := ExportBoardPDF(b, "Case wall", out, Options{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf file empty")
	}
}
