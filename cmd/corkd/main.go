/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	applog "corkboard/internal/log"
	"corkboard/internal/relayd"
	"corkboard/internal/version"
)

func usage() {
	fmt.Println("Corkboard relay daemon")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  corkd                                       Run the relay hub")
	fmt.Println("  corkd version|-v|--version                  Show version")
	fmt.Println("  corkd token -user <name> [-gm] [-ttl <dur>] Mint a join token")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CKB_ADDR          bind address (default :8750; PORT is honored too)")
	fmt.Println("  CKB_STORE_DSN     store DSN (memory, sqlite file path, or postgres://)")
	fmt.Println("  CKB_RELAY_SECRET  join token secret; unset leaves the hub open")
	fmt.Println("  CKB_HOST_GM       set to false to disable the resident GM peer")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("corkd")

	args := os.Args
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Corkboard relay daemon")
			fmt.Println(version.String())
			return
		case "token":
			fs := flag.NewFlagSet("token", flag.ExitOnError)
			user := fs.String("user", "", "subject the token names")
			gm := fs.Bool("gm", false, "grant GM authority")
			ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
			_ = fs.Parse(args[2:])
			secret := os.Getenv(relayd.EnvRelaySecret)
			if secret == "" {
				fmt.Println("token minting requires " + relayd.EnvRelaySecret)
				os.Exit(2)
			}
			tok, err := relayd.SignToken(secret, *user, *gm, time.Now().Add(*ttl))
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println(tok)
			return
		case "help", "-h", "--help":
			usage()
			return
		default:
			usage()
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := relayd.Start(ctx, relayd.LoadConfig()); err != nil {
		l.Error("daemon failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
