/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"corkboard/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetShare favors files that travel well: 1x PNG plus the bundle.
	PresetShare PresetName = "share"
	// PresetPrint favors vector and high-resolution output.
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across multiple formats.
//
// Path semantics:
//   - Outputs land in <OutDir>/<format>/<slug>.<ext>; OutDir defaults to
//     "exports" relative to the working directory.
//   - The slug is derived from the board name, or "board" when empty.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: png, svg, pdf, bundle; empty means preset defaults
	Scale   float64  // when > 0 overrides the preset's snapshot scale
	OutDir  string
}

// BatchExport renders the board into every requested format.
func BatchExport(b *domain.Board, name string, opt BatchOptions) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = "exports"
	}

	scale := presetScale(opt.Preset)
	if opt.Scale > 0 {
		scale = opt.Scale
	}
	ro := Options{Scale: scale}

	slug := fileSlug(name)
	for _, f := range formats {
		switch f {
		case "png":
			out := filepath.Join(baseOut, "png", slug+".png")
			if err := ExportBoardPNG(b, out, ro); err != nil {
				return fmt.Errorf("png %s: %w", slug, err)
			}
		case "svg":
			out := filepath.Join(baseOut, "svg", slug+".svg")
			if err := ExportBoardSVG(b, out, ro); err != nil {
				return fmt.Errorf("svg %s: %w", slug, err)
			}
		case "pdf":
			out := filepath.Join(baseOut, "pdf", slug+".pdf")
			if err := ExportBoardPDF(b, name, out, ro); err != nil {
				return fmt.Errorf("pdf %s: %w", slug, err)
			}
		case "bundle":
			out := filepath.Join(baseOut, "bundle", slug+".zip")
			if err := ExportBoardBundle(b, name, out, ro); err != nil {
				return fmt.Errorf("bundle %s: %w", slug, err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetShare:
		return []string{"png", "bundle"}
	case PresetPrint:
		return []string{"pdf", "svg"}
	default:
		return []string{"png"}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2.0
	}
	return 1.0
}

// fileSlug turns a board name into a safe file stem.
func fileSlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var sb strings.Builder
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "board"
	}
	return out
}
