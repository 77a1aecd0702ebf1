/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "corkboard/internal/log"
	"corkboard/internal/version"
)

// ThemesDirName is the themes folder under the app data directory.
const ThemesDirName = "themes"

// PackManifestName is the YAML manifest at the root of a style pack.
const PackManifestName = "stylepack.yaml"

type packManifest struct {
	App     string   `yaml:"app"`
	Created string   `yaml:"created"`
	Themes  []string `yaml:"themes,omitempty"`
}

// ExportThemes zips the data directory's themes folder (<dataDir>/themes)
// into a single .zip style pack. The archive preserves the directory
// structure and adds a YAML manifest at the root listing the packed theme
// names. If the themes directory does not exist or is empty, the archive is
// still created with only the manifest.
func ExportThemes(dataDir string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("dir", dataDir))
	if strings.TrimSpace(dataDir) == "" {
		return errors.New("dataDir is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	themesDir := filepath.Join(dataDir, ThemesDirName)
	if _, err := os.Stat(themesDir); os.IsNotExist(err) {
		// Create empty dir semantics
		if err := os.MkdirAll(themesDir, 0o755); err != nil {
			return fmt.Errorf("ensure themes dir: %w", err)
		}
	}
	themes, err := LoadThemes(themesDir)
	if err != nil {
		return fmt.Errorf("scan themes: %w", err)
	}

	// Ensure target directory exists
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	m := packManifest{
		App:     "corkboard " + version.String(),
		Created: time.Now().Format(time.RFC3339),
	}
	for _, t := range themes {
		m.Themes = append(m.Themes, t.Name)
	}
	manifest, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	w, err := zw.Create(PackManifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write(manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	// Walk themes folder and add files
	added := 0
	err = filepath.Walk(themesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}
		// Normalize to forward slashes inside the archive
		zipName := filepath.ToSlash(rel)
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts the given .zip style pack into the data directory's
// themes folder. Entries without a themes/ prefix are placed under it;
// entries that would resolve outside the themes folder are refused. Existing
// files are never overwritten, they are skipped. Returns the count of files
// installed (skipped files are not counted).
func InstallPack(dataDir string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("dir", dataDir))
	if strings.TrimSpace(dataDir) == "" {
		return 0, errors.New("dataDir is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	themesDir := filepath.Join(dataDir, ThemesDirName)
	if err := os.MkdirAll(themesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure themes dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		// Skip top-level manifest file
		if name == PackManifestName {
			continue
		}
		targetRel := name
		if !strings.HasPrefix(targetRel, ThemesDirName+"/") {
			targetRel = filepath.ToSlash(filepath.Join(ThemesDirName, targetRel))
		}
		targetPath := filepath.Join(dataDir, filepath.FromSlash(targetRel))
		// Refuse entries that escape the themes folder after cleaning.
		if rel, err := filepath.Rel(themesDir, targetPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			l.Warn("skip entry outside themes dir", slog.String("name", name))
			continue
		}
		// If file exists, skip
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}
