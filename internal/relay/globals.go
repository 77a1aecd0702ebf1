/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"corkboard/internal/domain"
	"corkboard/internal/log"
)

// applyWindow is how long the reentrancy flag stays up after an incoming
// snapshot lands, so change listeners firing during the apply do not echo
// the snapshot back out.
const applyWindow = 100 * time.Millisecond

// Globals is the process-wide home of the cross-scene mutable state: the
// global boards collection and the current-board selector. It is created
// once the transport is ready and torn down with it; every local write
// passes through the GM channel like any other mutation.
type Globals struct {
	mu       sync.Mutex
	sock     Socket
	logger   *slog.Logger
	boards   []NamedBoard
	current  string
	applying bool
	applyT   *time.Timer
	onChange []func()
}

var (
	globalsMu sync.Mutex
	globals   *Globals
)

// InitGlobals installs the singleton on transport-ready and returns it.
// A previous instance is torn down first.
func InitGlobals(sock Socket) *Globals {
	globalsMu.Lock()
	defer globalsMu.Unlock()
	if globals != nil {
		globals.teardown()
	}
	globals = &Globals{sock: sock, logger: log.WithComponent("globals")}
	return globals
}

// GlobalState returns the live singleton, or nil before InitGlobals.
func GlobalState() *Globals {
	globalsMu.Lock()
	defer globalsMu.Unlock()
	return globals
}

// TeardownGlobals drops the singleton and stops its timers.
func TeardownGlobals() {
	globalsMu.Lock()
	defer globalsMu.Unlock()
	if globals != nil {
		globals.teardown()
		globals = nil
	}
}

func (g *Globals) teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.applyT != nil {
		g.applyT.Stop()
	}
	g.onChange = nil
}

// OnChange registers a listener fired after the collection or selector
// changes, from either side of the protocol.
func (g *Globals) OnChange(fn func()) {
	g.mu.Lock()
	g.onChange = append(g.onChange, fn)
	g.mu.Unlock()
}

// Boards returns a copy of the collection.
func (g *Globals) Boards() []NamedBoard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]NamedBoard(nil), g.boards...)
}

// BoardList returns the listing entries of the collection.
func (g *Globals) BoardList() []domain.BoardInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	infos := make([]domain.BoardInfo, len(g.boards))
	for i, b := range g.boards {
		infos[i] = b.Info()
	}
	return infos
}

// CurrentBoard returns the active board id, or empty.
func (g *Globals) CurrentBoard() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// BoardByID returns the named board from the collection, or nil.
func (g *Globals) BoardByID(id string) *NamedBoard {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.boards {
		if g.boards[i].ID == id {
			nb := g.boards[i]
			return &nb
		}
	}
	return nil
}

// SetBoards replaces the collection locally and forwards the write to the
// GM. While an incoming snapshot is being applied the forward is
// suppressed; an unreachable transport is logged and the write stays
// local-only.
func (g *Globals) SetBoards(ctx context.Context, boards []NamedBoard) {
	g.mu.Lock()
	g.boards = append([]NamedBoard(nil), boards...)
	suppress := g.applying
	current := g.current
	g.mu.Unlock()
	g.fireChange()

	if suppress {
		return
	}
	err := g.sock.ExecuteAsGM(ctx, ActionSetGlobalBoards, GlobalBoardsPayload{
		Boards:  boards,
		Current: current,
	})
	if errors.Is(err, ErrTransportUnavailable) {
		g.logger.Warn("dropping boards write, transport unavailable")
	} else if err != nil {
		g.logger.Error("boards write failed", "error", err)
	}
}

// SetCurrentBoard switches the active board and forwards the selection.
func (g *Globals) SetCurrentBoard(ctx context.Context, id string) {
	g.mu.Lock()
	g.current = id
	suppress := g.applying
	g.mu.Unlock()
	g.fireChange()

	if suppress {
		return
	}
	err := g.sock.ExecuteAsGM(ctx, ActionSetCurrentBoard, CurrentBoardPayload{BoardID: id})
	if errors.Is(err, ErrTransportUnavailable) {
		g.logger.Warn("dropping board selection, transport unavailable")
	} else if err != nil {
		g.logger.Error("board selection failed", "error", err)
	}
}

// applySnapshot installs an incoming collection. The reentrancy flag goes
// up before the listeners run and falls on a timer shortly after, so any
// writes they trigger do not bounce the snapshot back to the GM.
func (g *Globals) applySnapshot(p GlobalBoardsPayload) {
	g.mu.Lock()
	g.applying = true
	g.boards = append([]NamedBoard(nil), p.Boards...)
	if p.Current != "" {
		g.current = p.Current
	}
	if g.applyT != nil {
		g.applyT.Stop()
	}
	g.applyT = time.AfterFunc(applyWindow, func() {
		g.mu.Lock()
		g.applying = false
		g.mu.Unlock()
	})
	g.mu.Unlock()
	g.fireChange()
}

// applyCurrent installs an incoming selector change.
func (g *Globals) applyCurrent(id string) {
	g.mu.Lock()
	g.applying = true
	g.current = id
	if g.applyT != nil {
		g.applyT.Stop()
	}
	g.applyT = time.AfterFunc(applyWindow, func() {
		g.mu.Lock()
		g.applying = false
		g.mu.Unlock()
	})
	g.mu.Unlock()
	g.fireChange()
}

func (g *Globals) fireChange() {
	g.mu.Lock()
	listeners := append(([]func())(nil), g.onChange...)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
