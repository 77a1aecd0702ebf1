/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package console implements the corkctl REPL. A console is one protocol
// peer: against a local store it runs the loopback socket and acts as the
// GM, against a relay it joins as a regular peer and routes every
// mutation to whoever holds authority there.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/chzyer/readline"

	applog "corkboard/internal/log"
	"corkboard/internal/domain"
	"corkboard/internal/relay"
	"corkboard/internal/store"
	"corkboard/internal/version"
)

// DefaultScene is the scene a console starts on; it matches the scene id
// the desktop shell uses for solo sessions.
const DefaultScene = "desktop"

// Options configures a console session.
type Options struct {
	// StoreDSN selects the store (memory, sqlite path, postgres://).
	StoreDSN string
	// RelayURL, when set, joins the hub there as a non-GM peer. Reads
	// still come from the store, so point both ends at the same DSN.
	RelayURL    string
	Token       string
	TLSInsecure bool
	User        string
	Scene       string
	HistoryFile string
}

type console struct {
	st       store.Store
	sock     relay.Socket
	svc      *relay.Service
	client   *relay.Client
	ident    relay.Identity
	scene    string
	relayURL string
	out      io.Writer
}

// Run opens the store and socket, registers the protocol endpoint, and
// reads commands until exit or EOF.
func Run(ctx context.Context, opts Options) error {
	l := applog.WithComponent("console")
	if opts.Scene == "" {
		opts.Scene = DefaultScene
	}
	if opts.User == "" {
		opts.User = "corkctl"
	}

	st, err := store.Open(ctx, opts.StoreDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Warn("store close", "error", err)
		}
	}()

	ident := relay.Identity{UserID: opts.User, IsGM: true}
	var sock relay.Socket
	if opts.RelayURL != "" {
		ident.IsGM = false
		ws, err := relay.DialWith(ctx, opts.RelayURL, ident, relay.DialOptions{
			Token:       opts.Token,
			TLSInsecure: opts.TLSInsecure,
		})
		if err != nil {
			return fmt.Errorf("join relay: %w", err)
		}
		defer ws.Close()
		sock = ws
	} else {
		sock = relay.NewLoopback()
	}

	svc := relay.NewService(sock, st, ident)
	svc.Register()
	defer svc.Close()
	relay.InitGlobals(sock)
	defer relay.TeardownGlobals()
	if err := svc.LoadGlobals(ctx); err != nil {
		l.Warn("loading global boards failed", "error", err)
	}

	c := &console{
		st:       st,
		sock:     sock,
		svc:      svc,
		client:   relay.NewClient(sock),
		ident:    ident,
		scene:    opts.Scene,
		relayURL: opts.RelayURL,
		out:      os.Stdout,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.prompt(),
		HistoryFile:     opts.HistoryFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()
	c.out = rl.Stdout()

	fmt.Fprintf(c.out, "Corkboard console %s — type help for commands\n", version.String())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		quit, err := c.dispatch(ctx, line)
		if err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}
		if quit {
			break
		}
		rl.SetPrompt(c.prompt())
	}
	return nil
}

func (c *console) prompt() string {
	return c.scene + "> "
}

// board returns the scene's current board. Non-GM consoles drop the
// cached engine first: their mutations are applied remotely, so only the
// shared store is authoritative.
func (c *console) board(ctx context.Context) (*domain.Board, error) {
	if !c.ident.IsGM {
		c.svc.Invalidate(c.scene)
	}
	eng, err := c.svc.Engine(ctx, c.scene)
	if err != nil {
		return nil, err
	}
	return eng.Snapshot(), nil
}

// splitArgs tokenizes a command line, honoring double quotes so values
// may contain spaces.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	flush()
	return args, nil
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("status"),
		readline.PcItem("list"),
		readline.PcItem("use"),
		readline.PcItem("boards",
			readline.PcItem("add"),
			readline.PcItem("use"),
			readline.PcItem("del"),
		),
		readline.PcItem("item",
			readline.PcItem("add",
				readline.PcItem("note"),
				readline.PcItem("text"),
				readline.PcItem("image"),
				readline.PcItem("document"),
			),
			readline.PcItem("set"),
			readline.PcItem("del"),
			readline.PcItem("ls"),
		),
		readline.PcItem("conn",
			readline.PcItem("add"),
			readline.PcItem("del"),
			readline.PcItem("ls"),
		),
		readline.PcItem("group",
			readline.PcItem("front"),
			readline.PcItem("back"),
		),
		readline.PcItem("ungroup"),
		readline.PcItem("front"),
		readline.PcItem("forward"),
		readline.PcItem("backward"),
		readline.PcItem("back"),
		readline.PcItem("dup"),
		readline.PcItem("clear"),
		readline.PcItem("search"),
		readline.PcItem("export"),
		readline.PcItem("import"),
		readline.PcItem("thumb"),
		readline.PcItem("login"),
		readline.PcItem("logout"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}
