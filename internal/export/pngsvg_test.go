/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"corkboard/internal/domain"
	"corkboard/internal/geom"
)

func fptr(v float64) *float64 { return &v }

// sampleBoard spans world (40,40)..(440,290); with the default 40 margin
// the content bounds come out at (0,0) 480x330.
func sampleBoard() *domain.Board {
	return &domain.Board{
		Items: []domain.Item{
			{ID: "a", Type: domain.ItemNote, X: 40, Y: 40, ZIndex: 1,
				Data: domain.ItemData{Width: fptr(120), Height: fptr(90), Text: "Check the alibi"}},
			{ID: "b", Type: domain.ItemNote, X: 320, Y: 200, ZIndex: 2, Rotation: 8, Color: "#80cbc4",
				Data: domain.ItemData{Width: fptr(120), Height: fptr(90), Text: "Phone records"}},
		},
		Connections: []domain.Connection{{ID: "ab", FromItem: "a", ToItem: "b"}},
	}
}

func TestContentBounds(t *testing.T) {
	got := ContentBounds(sampleBoard(), 40)
	want := geom.R(0, 0, 480, 330)
	if got != want {
		t.Fatalf("bounds = %+v, want %+v", got, want)
	}
}

func TestContentBoundsEmptyBoard(t *testing.T) {
	got := ContentBounds(&domain.Board{}, 40)
	want := geom.R(-40, -40, 880, 680)
	if got != want {
		t.Fatalf("bounds = %+v, want %+v", got, want)
	}
}

func TestExportBoardPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall.png")
	if err := ExportBoardPNG(sampleBoard(), out, Options{}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != 480 || cfg.Height != 330 {
		t.Fatalf("png size = %dx%d, want 480x330", cfg.Width, cfg.Height)
	}
}

func TestExportBoardPNGScales(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall@2x.png")
	if err := ExportBoardPNG(sampleBoard(), out, Options{Scale: 2}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != 960 || cfg.Height != 660 {
		t.Fatalf("png size = %dx%d, want 960x660", cfg.Width, cfg.Height)
	}
}

func TestExportBoardSVG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall.svg")
	if err := ExportBoardSVG(sampleBoard(), out, Options{}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "<svg") {
		t.Fatalf("svg root missing")
	}
	if !strings.Contains(s, "Check the alibi") {
		t.Fatalf("note text missing: %s", s)
	}
	if !strings.Contains(s, "<path d=\"M ") {
		t.Fatalf("connection path missing")
	}
	if !strings.Contains(s, "rotate(8 ") {
		t.Fatalf("rotation transform missing")
	}
}

func TestExportBoardSVGEscapesText(t *testing.T) {
	b := sampleBoard()
	b.Items[0].Data.Text = "a < b & c"
	out := filepath.Join(t.TempDir(), "esc.svg")
	if err := ExportBoardSVG(b, out, Options{}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "a &lt; b &amp; c") {
		t.Fatalf("text not escaped: %s", string(data))
	}
}
