/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"corkboard/internal/boardfile"
	"corkboard/internal/config"
	"corkboard/internal/crash"
	"corkboard/internal/domain"
	"corkboard/internal/export"
	applog "corkboard/internal/log"
	"corkboard/internal/ui"
	"corkboard/internal/version"
)

func usage() {
	fmt.Println("Corkboard — collaborative corkboards")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  corkboard version|-v|--version        Show version")
	fmt.Println("  corkboard new <file> [name]            Create an empty board file")
	fmt.Println("  corkboard info <file>                  Print a board file summary")
	fmt.Println("  corkboard export <file> <out>          Export a board file to png, svg, pdf or zip")
	fmt.Println("  corkboard ui [<file>]                  Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var h *crash.Handle
	defer func() { crash.Recover(h) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Corkboard — collaborative corkboards")
			fmt.Println(version.String())
			return
		case "new":
			if len(args) < 3 {
				fmt.Println("new requires <file>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
			if len(args) >= 4 {
				name = args[3]
			}
			l.Info("new board", slog.String("path", abs), slog.String("name", name))
			b := &domain.Board{BoardType: domain.BoardCork}
			if err := boardfile.Save(abs, name, b); err != nil {
				l.Error("new failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Created board at", abs)
			return
		case "info":
			if len(args) < 3 {
				fmt.Println("info requires <file>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("inspect board", slog.String("path", abs))
			f, err := boardfile.Load(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = crashHandle(f)
			name := f.Name
			if name == "" {
				name = "(unnamed)"
			}
			surface := f.Board.BoardType
			if surface == "" {
				surface = domain.BoardCork
			}
			fmt.Printf("Board: %s\n", name)
			fmt.Printf("Surface: %s\n", surface)
			fmt.Printf("Items: %d  Connections: %d  Groups: %d\n",
				len(f.Board.Items), len(f.Board.Connections), len(f.Board.Groups))
			if f.SavedAt != "" {
				fmt.Println("Saved:", f.SavedAt)
			}
			if f.Migrated {
				fmt.Println("Legacy items were migrated on load; saving will persist the new shape.")
			}
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <file> and <out>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			out := args[3]
			l.Info("export board", slog.String("path", abs), slog.String("out", out))
			f, err := boardfile.Load(abs)
			if err != nil {
				l.Error("open before export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = crashHandle(f)
			name := f.Name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
			}
			if err := exportTo(&f.Board, name, out); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "ui":
			var path string
			if len(args) >= 3 {
				path = args[2]
			}
			if err := ui.Run(path); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		default:
			// Double-clicking a board file hands its path over as the only
			// argument; open the UI on it.
			if _, err := os.Stat(args[1]); err == nil {
				if err := ui.Run(args[1]); err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				return
			}
		}
	}

	usage()
}

func crashHandle(f *boardfile.File) *crash.Handle {
	dir, err := config.DataDir()
	if err != nil {
		dir = ""
	}
	b := f.Board
	return &crash.Handle{Dir: dir, Name: f.Name, Snapshot: func() *domain.Board { return &b }}
}

func exportTo(b *domain.Board, name, out string) error {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		return export.ExportBoardPNG(b, out, export.Options{})
	case ".svg":
		return export.ExportBoardSVG(b, out, export.Options{})
	case ".pdf":
		return export.ExportBoardPDF(b, name, out, export.Options{})
	case ".zip":
		return export.ExportBoardBundle(b, name, out, export.Options{})
	default:
		return fmt.Errorf("unsupported export format %q (png, svg, pdf, zip)", filepath.Ext(out))
	}
}
