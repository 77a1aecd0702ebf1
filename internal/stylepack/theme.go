/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package stylepack

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"corkboard/internal/domain"
	applog "corkboard/internal/log"
)

// Theme is a reusable board appearance: the surface texture and color, the
// default sticky-note tint, and the palette used for group borders. Themes
// serialize as YAML files inside the themes directory.
type Theme struct {
	Name        string   `yaml:"name"`
	BoardType   string   `yaml:"boardType,omitempty"`
	CanvasColor string   `yaml:"canvasColor,omitempty"`
	NoteColor   string   `yaml:"noteColor,omitempty"`
	TextColor   string   `yaml:"textColor,omitempty"`
	GroupColors []string `yaml:"groupColors,omitempty"`
}

// ThemeFileSuffix marks theme files inside the themes directory.
const ThemeFileSuffix = ".theme.yaml"

// DefaultGroupPalette colors group borders when a theme does not carry its
// own palette. Mid-saturation pastels that read on cork and paper alike.
var DefaultGroupPalette = []string{
	"#ef9a9a", "#90caf9", "#a5d6a7", "#ffcc80", "#f48fb1", "#ce93d8",
}

// Builtin returns the themes shipped with the app. Saved theme files may
// shadow them by name.
func Builtin() []Theme {
	return []Theme{
		{Name: "Cork", BoardType: domain.BoardCork, CanvasColor: "#c19a6b", NoteColor: "#ffeb3b"},
		{Name: "Legal pad", BoardType: domain.BoardLegal, CanvasColor: "#fdf6c9", NoteColor: "#ffffff"},
		{Name: "Midnight", BoardType: domain.BoardCork, CanvasColor: "#2f2a26", NoteColor: "#ffeb3b", TextColor: "#ffffff"},
		{Name: "Spiral notebook", BoardType: domain.BoardSpiral, CanvasColor: "#faf8f0", NoteColor: "#ffeb3b"},
	}
}

// GroupColor picks a stable palette color for a group ID. The same ID always
// maps to the same color so every collaborator sees identical group borders.
func (t Theme) GroupColor(groupID string) string {
	pal := t.GroupColors
	if len(pal) == 0 {
		pal = DefaultGroupPalette
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(groupID))
	return pal[h.Sum32()%uint32(len(pal))]
}

// Apply stamps the theme's surface settings onto a board. Item colors are
// untouched; only board-level appearance changes.
func (t Theme) Apply(b *domain.Board) {
	if b == nil {
		return
	}
	if t.BoardType != "" {
		b.BoardType = t.BoardType
	}
	if t.CanvasColor != "" {
		b.CanvasColor = t.CanvasColor
	}
}

// SaveTheme writes a theme file into dir and returns its path. The file name
// is derived from the theme name.
func SaveTheme(dir string, t Theme) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", errors.New("theme name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure themes dir: %w", err)
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal theme: %w", err)
	}
	path := filepath.Join(dir, themeFileName(t.Name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write theme: %w", err)
	}
	return path, nil
}

// LoadThemes reads every theme file in dir, sorted by theme name. A missing
// directory yields no themes. Unreadable or invalid files are skipped with a
// warning so one bad file does not hide the rest.
func LoadThemes(dir string) ([]Theme, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read themes dir: %w", err)
	}
	l := applog.WithComponent("stylepack")
	var themes []Theme
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ThemeFileSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			l.Warn("skip unreadable theme", slog.String("file", e.Name()), slog.Any("err", err))
			continue
		}
		var t Theme
		if err := yaml.Unmarshal(data, &t); err != nil {
			l.Warn("skip invalid theme", slog.String("file", e.Name()), slog.Any("err", err))
			continue
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = strings.TrimSuffix(e.Name(), ThemeFileSuffix)
		}
		themes = append(themes, t)
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].Name < themes[j].Name })
	return themes, nil
}

func themeFileName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		s = "theme"
	}
	return s + ThemeFileSuffix
}
