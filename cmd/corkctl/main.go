/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Corkctl is the scriptable console for Corkboard. It speaks the same
// protocol as the desktop shell, either directly against a local store
// (acting as the GM) or as a regular peer on a relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"corkboard/internal/config"
	"corkboard/internal/console"
	applog "corkboard/internal/log"
	"corkboard/internal/version"
)

func usage() {
	fmt.Println("Corkboard console — scriptable board editing")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  corkctl [flags]                Start an interactive session")
	fmt.Println("  corkctl version|-v|--version   Show version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Without -relay the console opens the store directly and acts as the GM.")
	fmt.Println("With -relay it joins that hub as a regular peer; point -store at the")
	fmt.Println("same database the GM side uses so reads see the shared state.")
}

func main() {
	relayURL := flag.String("relay", "", "relay websocket URL, e.g. ws://localhost:8750/ws")
	storeDSN := flag.String("store", "", "store DSN (memory, sqlite path or postgres://)")
	scene := flag.String("scene", console.DefaultScene, "scene to open")
	user := flag.String("user", "", "name announced to other peers")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 0 {
		switch flag.Arg(0) {
		case "version", "--version", "-v":
			fmt.Println("Corkboard console")
			fmt.Println(version.String())
			return
		default:
			usage()
			os.Exit(2)
		}
	}

	// Default to warn so log lines do not garble the prompt; CKB_LOG_LEVEL
	// still overrides.
	logOpts := applog.FromEnv()
	if os.Getenv(config.EnvLogLevel) == "" {
		logOpts.Level = "warn"
	}
	applog.Init(logOpts)
	l := applog.WithComponent("corkctl")

	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	opts := console.Options{
		RelayURL:    *relayURL,
		Token:       token,
		TLSInsecure: cfg.Relay.TLSInsecure,
		User:        cfg.General.DisplayName,
		Scene:       *scene,
	}
	if *user != "" {
		opts.User = *user
	}
	dataDir, err := config.DataDir()
	if err != nil {
		l.Warn("no data directory", slog.Any("err", err))
		dataDir = ""
	}
	if dataDir != "" {
		opts.HistoryFile = filepath.Join(dataDir, "corkctl_history")
	}
	opts.StoreDSN = *storeDSN
	if opts.StoreDSN == "" {
		opts.StoreDSN = cfg.Store.ResolveDSN(dataDir)
	}

	if err := console.Run(context.Background(), opts); err != nil {
		l.Error("console failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
