//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
//
// Ensure you have the Fyne dependencies installed and a working OS driver.
package ui

import (
	"context"
	"errors"
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/interact"
	"corkboard/internal/script"
)

func TestBoardCanvas_Defaults(t *testing.T) {
	bc := NewBoardCanvas()
	if bc.img == nil {
		t.Fatal("viewport image not created")
	}
	r, ok := bc.CreateRenderer().(*boardCanvasRenderer)
	if !ok {
		t.Fatalf("expected boardCanvasRenderer, got %T", bc.CreateRenderer())
	}
	min := r.MinSize()
	if min.Width != 320 || min.Height != 240 {
		t.Fatalf("unexpected MinSize: %v", min)
	}
	objs := r.Objects()
	if len(objs) != 1 || objs[0] != bc.img {
		t.Fatalf("renderer should expose exactly the raster image, got %d objects", len(objs))
	}
}

func TestBoardCanvas_LayoutTracksSize(t *testing.T) {
	bc := NewBoardCanvas()
	r := bc.CreateRenderer().(*boardCanvasRenderer)
	size := fyne.NewSize(1000, 800)
	r.Layout(size)
	if bc.img.Size() != size {
		t.Fatalf("image should fill the widget: got %v, want %v", bc.img.Size(), size)
	}
}

func TestToButton(t *testing.T) {
	cases := []struct {
		in   desktop.MouseButton
		want interact.Button
	}{
		{desktop.MouseButtonPrimary, interact.ButtonLeft},
		{desktop.MouseButtonSecondary, interact.ButtonRight},
		{desktop.MouseButtonTertiary, interact.ButtonMiddle},
	}
	for _, c := range cases {
		if got := toButton(c.in); got != c.want {
			t.Fatalf("toButton(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestBoardCanvas_ModifierMapping(t *testing.T) {
	bc := NewBoardCanvas()
	m := bc.mods(fyne.KeyModifierControl | fyne.KeyModifierShift)
	if !m.Ctrl || !m.Shift || m.Alt || m.Space {
		t.Fatalf("unexpected modifiers: %+v", m)
	}
	bc.spaceHeld = true
	if !bc.mods(0).Space {
		t.Fatal("space bar state should reach the modifier set")
	}
}

func TestExportFileName(t *testing.T) {
	cases := []struct {
		name, ext, want string
	}{
		{"Case wall", ".png", "case-wall.png"},
		{"  ", ".pdf", "board.pdf"},
		{"Untitled board", ".board.json", "untitled-board.board.json"},
	}
	for _, c := range cases {
		if got := exportFileName(c.name, c.ext); got != c.want {
			t.Fatalf("exportFileName(%q, %q) = %q, want %q", c.name, c.ext, got, c.want)
		}
	}
}

type recordingMutator struct {
	adds    int
	deletes int
	fail    bool
}

func (m *recordingMutator) err() error {
	if m.fail {
		return errors.New("boom")
	}
	return nil
}

func (m *recordingMutator) AddItem(context.Context, string, domain.Item) error {
	m.adds++
	return m.err()
}
func (m *recordingMutator) UpdateItem(context.Context, string, string, map[string]any) error {
	return m.err()
}
func (m *recordingMutator) UpdateItems(context.Context, string, []board.ItemUpdate) error {
	return m.err()
}
func (m *recordingMutator) AddConnection(context.Context, string, string, string) error {
	return m.err()
}
func (m *recordingMutator) DeleteItem(context.Context, string, string) error {
	m.deletes++
	return m.err()
}
func (m *recordingMutator) DuplicateItems(context.Context, string, []string, float64, float64) error {
	return m.err()
}

func TestMarkingMutator_MarksOnlyOnSuccess(t *testing.T) {
	rec := &recordingMutator{}
	marks := 0
	mm := &markingMutator{inner: rec, mark: func() { marks++ }}

	if err := mm.AddItem(context.Background(), sceneID, domain.Item{}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if marks != 1 || rec.adds != 1 {
		t.Fatalf("expected one forwarded call and one mark, got adds=%d marks=%d", rec.adds, marks)
	}

	rec.fail = true
	if err := mm.DeleteItem(context.Background(), sceneID, "x"); err == nil {
		t.Fatal("expected forwarded error")
	}
	if marks != 1 {
		t.Fatalf("failed mutation must not mark dirty, marks=%d", marks)
	}
}

// The solo session runs the full loopback relay stack without a window, so
// the wiring is testable headless.
func TestSessionSoloMutationFlow(t *testing.T) {
	b := &domain.Board{BoardType: domain.BoardCork}
	s, err := newSession(b, "Case wall", "", 640, 480, func(image.Image) {})
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	defer s.close()

	if s.dirty {
		t.Fatal("fresh session must start clean")
	}
	it := domain.Item{ID: domain.NewID(), Type: domain.ItemNote, X: 10, Y: 20, Data: domain.ItemData{Text: "lead"}}
	if err := s.mut.AddItem(context.Background(), sceneID, it); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !s.dirty {
		t.Fatal("mutation should mark the session dirty")
	}
	snap := s.eng.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != it.ID {
		t.Fatalf("item did not reach the engine: %+v", snap.Items)
	}
	if snap.BoardType != domain.BoardCork {
		t.Fatalf("board surface lost in the round trip: %q", snap.BoardType)
	}
}

func TestOutlineProblems(t *testing.T) {
	if msg := outlineProblems(nil, nil); msg != "" {
		t.Fatalf("no diagnostics should give an empty message, got %q", msg)
	}
	msg := outlineProblems(
		[]script.Error{{Line: 2, Message: "read outline: boom"}},
		[]script.Error{{Line: 5, Message: `unknown item label "car"`}},
	)
	want := "line 2: read outline: boom\nline 5: unknown item label \"car\""
	if msg != want {
		t.Fatalf("diagnostics = %q, want %q", msg, want)
	}
}
