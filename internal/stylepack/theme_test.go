/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"os"
	"path/filepath"
	"testing"

	"corkboard/internal/domain"
)

func TestGroupColorIsDeterministic(t *testing.T) {
	th := Theme{GroupColors: []string{"#111111", "#222222", "#333333"}}
	c := th.GroupColor("group-a")
	for i := 0; i < 10; i++ {
		if got := th.GroupColor("group-a"); got != c {
			t.Fatalf("group color changed between calls: %q vs %q", got, c)
		}
	}
	found := false
	for _, p := range th.GroupColors {
		if p == c {
			found = true
		}
	}
	if !found {
		t.Fatalf("color %q not from theme palette", c)
	}

	// A theme without a palette falls back to the default one
	d := Theme{}.GroupColor("group-a")
	found = false
	for _, p := range DefaultGroupPalette {
		if p == d {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback color %q not from default palette", d)
	}
}

func TestApplyChangesSurfaceOnly(t *testing.T) {
	b := &domain.Board{
		CanvasColor: "#c19a6b",
		Items:       []domain.Item{{ID: "n1", Type: domain.ItemNote, Color: "#ffeb3b"}},
	}
	Theme{Name: "Midnight", BoardType: domain.BoardLegal, CanvasColor: "#2f2a26"}.Apply(b)
	if b.BoardType != domain.BoardLegal || b.CanvasColor != "#2f2a26" {
		t.Fatalf("surface not applied: %+v", b)
	}
	if b.Items[0].Color != "#ffeb3b" {
		t.Fatalf("item color must not change, got %q", b.Items[0].Color)
	}
	// Applying to nil must not panic
	Theme{Name: "Midnight"}.Apply(nil)
}

func TestSaveAndLoadThemes(t *testing.T) {
	dir := t.TempDir()
	if _, err := SaveTheme(dir, Theme{Name: "Zebra", CanvasColor: "#ffffff"}); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	path, err := SaveTheme(dir, Theme{Name: "Autumn Cork", NoteColor: "#ffcc80"})
	if err != nil {
		t.Fatalf("save theme: %v", err)
	}
	if filepath.Base(path) != "autumn-cork.theme.yaml" {
		t.Fatalf("unexpected theme file name: %q", path)
	}
	// A broken file is skipped, not fatal
	if err := os.WriteFile(filepath.Join(dir, "broken.theme.yaml"), []byte("{ broken"), 0o644); err != nil {
		t.Fatalf("write broken theme: %v", err)
	}

	themes, err := LoadThemes(dir)
	if err != nil {
		t.Fatalf("load themes: %v", err)
	}
	if len(themes) != 2 || themes[0].Name != "Autumn Cork" || themes[1].Name != "Zebra" {
		t.Fatalf("unexpected themes: %+v", themes)
	}
	if themes[0].NoteColor != "#ffcc80" {
		t.Fatalf("theme fields lost on roundtrip: %+v", themes[0])
	}

	// Missing dir yields no themes and no error
	none, err := LoadThemes(filepath.Join(dir, "missing"))
	if err != nil || none != nil {
		t.Fatalf("expected empty result for missing dir, got %+v %v", none, err)
	}
}

func TestSaveThemeRequiresName(t *testing.T) {
	if _, err := SaveTheme(t.TempDir(), Theme{}); err == nil {
		t.Fatalf("expected error for unnamed theme")
	}
}

func TestBuiltinThemesAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, th := range Builtin() {
		if th.Name == "" || th.CanvasColor == "" || th.BoardType == "" {
			t.Fatalf("incomplete builtin theme: %+v", th)
		}
		if seen[th.Name] {
			t.Fatalf("duplicate builtin theme name %q", th.Name)
		}
		seen[th.Name] = true
	}
}
