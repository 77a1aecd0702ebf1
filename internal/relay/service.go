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
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/log"
)

// DefaultDebounce is the per-scene delay between the last mutation and
// the refresh broadcast. Rapid drag updates reset the timer, so a burst
// produces a single broadcast after it settles.
const DefaultDebounce = 100 * time.Millisecond

// Service applies routed mutations on the authoritative peer and keeps
// everyone else notified. One Service runs on every peer; the mutation
// handlers only ever execute on the GM because that is how the socket
// routes them, while refreshBoard and the snapshot actions run on the
// receivers.
type Service struct {
	sock   Socket
	store  Store
	ident  Identity
	logger *slog.Logger
	delay  time.Duration

	mu      sync.Mutex
	engines map[string]*board.Engine
	timers  map[string]*time.Timer

	onRefresh func(sceneID string)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDebounce overrides the broadcast delay.
func WithDebounce(d time.Duration) ServiceOption {
	return func(s *Service) { s.delay = d }
}

// WithOnRefresh installs the receiver hook invoked when another peer's
// mutation lands; the app reloads the scene and redraws from it.
func WithOnRefresh(fn func(sceneID string)) ServiceOption {
	return func(s *Service) { s.onRefresh = fn }
}

// NewService builds the protocol endpoint for this peer.
func NewService(sock Socket, store Store, ident Identity, opts ...ServiceOption) *Service {
	s := &Service{
		sock:    sock,
		store:   store,
		ident:   ident,
		logger:  log.WithComponent("relay"),
		delay:   DefaultDebounce,
		engines: make(map[string]*board.Engine),
		timers:  make(map[string]*time.Timer),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register wires every protocol action into the socket.
func (s *Service) Register() {
	mutations := map[string]Handler{
		ActionAddItem:           s.handleAddItem,
		ActionUpdateItem:        s.handleUpdateItem,
		ActionUpdateItems:       s.handleUpdateItems,
		ActionUpdateConnections: s.handleUpdateConnections,
		ActionUpdateFlag:        s.handleUpdateFlag,
		ActionDeleteItem:        s.handleDeleteItem,
		ActionAddConnection:     s.handleAddConnection,
		ActionUpdateConnection:  s.handleUpdateConnection,
		ActionDeleteConnection:  s.handleDeleteConnection,
		ActionClearBoard:        s.handleClearBoard,
		ActionBringToFront:      s.zOrderHandler((*board.Engine).BringToFront),
		ActionBringForward:      s.zOrderHandler((*board.Engine).BringForward),
		ActionSendBackward:      s.zOrderHandler((*board.Engine).SendBackward),
		ActionSendToBack:        s.zOrderHandler((*board.Engine).SendToBack),
		ActionCreateGroup:       s.handleCreateGroup,
		ActionUngroup:           s.handleUngroup,
		ActionBringGroupToFront: s.zOrderHandler((*board.Engine).BringGroupToFront),
		ActionSendGroupToBack:   s.zOrderHandler((*board.Engine).SendGroupToBack),
		ActionDuplicateItems:    s.handleDuplicateItems,
		ActionSetCurrentBoard:   s.handleSetCurrentBoard,
		ActionSetGlobalBoards:   s.handleSetGlobalBoards,
		ActionRefreshBoard:      s.handleRefreshBoard,
	}
	for action, h := range mutations {
		s.sock.Register(action, h)
	}
}

// Engine returns the scene's authoritative engine, loading the board
// from storage on first use. The forward migration runs on load; when it
// rewrote anything the migrated board is persisted straight back.
func (s *Service) Engine(ctx context.Context, sceneID string) (*board.Engine, error) {
	s.mu.Lock()
	eng, ok := s.engines[sceneID]
	s.mu.Unlock()
	if ok {
		return eng, nil
	}

	raw, err := s.store.GetFlag(ctx, sceneID, FlagBoard)
	if err != nil {
		return nil, err
	}
	b := &domain.Board{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, b); err != nil {
			return nil, err
		}
	}
	migrated := board.MigrateItems(b)
	eng = board.NewEngine(b)

	s.mu.Lock()
	if existing, ok := s.engines[sceneID]; ok {
		eng = existing
		migrated = false
	} else {
		s.engines[sceneID] = eng
	}
	s.mu.Unlock()

	if migrated && len(raw) > 0 {
		if err := s.persist(ctx, sceneID, eng); err != nil {
			s.logger.Error("persisting migrated board failed", "scene", sceneID, "error", err)
		} else {
			s.logger.Info("board migrated", "scene", sceneID)
		}
	}
	return eng, nil
}

// Invalidate drops the cached engine so the next read hits storage.
func (s *Service) Invalidate(sceneID string) {
	s.mu.Lock()
	delete(s.engines, sceneID)
	s.mu.Unlock()
}

func (s *Service) persist(ctx context.Context, sceneID string, eng *board.Engine) error {
	raw, err := json.Marshal(eng.Snapshot())
	if err != nil {
		return err
	}
	return s.store.SetFlag(ctx, sceneID, FlagBoard, raw)
}

// scheduleRefresh arms the per-scene trailing debounce. Every call
// resets the timer; the broadcast fires once the scene has been quiet
// for the full delay.
func (s *Service) scheduleRefresh(sceneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.timers[sceneID]; t != nil {
		t.Stop()
	}
	s.timers[sceneID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, sceneID)
		s.mu.Unlock()
		err := s.sock.ExecuteForOthers(context.Background(), ActionRefreshBoard, ScenePayload{Scene: sceneID})
		if err != nil {
			s.logger.Warn("refresh broadcast failed", "scene", sceneID, "error", err)
		}
	})
}

// CancelRefresh drops a pending broadcast for the scene.
func (s *Service) CancelRefresh(sceneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.timers[sceneID]; t != nil {
		t.Stop()
		delete(s.timers, sceneID)
	}
}

// Close cancels all pending broadcasts.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// mutate runs one storage-backed change and arms the refresh broadcast.
func (s *Service) mutate(ctx context.Context, sceneID string, fn func(*board.Engine) error) error {
	eng, err := s.Engine(ctx, sceneID)
	if err != nil {
		return err
	}
	if err := fn(eng); err != nil {
		return err
	}
	if err := s.persist(ctx, sceneID, eng); err != nil {
		return err
	}
	s.scheduleRefresh(sceneID)
	return nil
}

func (s *Service) handleAddItem(ctx context.Context, raw json.RawMessage) error {
	var p ItemPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		if p.Item.ZIndex == 0 {
			p.Item.ZIndex = eng.NextZ(p.Item.GroupID)
		}
		eng.AddItem(p.Item)
		return nil
	})
}

func (s *Service) handleUpdateItem(ctx context.Context, raw json.RawMessage) error {
	var p ItemUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.UpdateItem(p.Update.ID, p.Update.Changes)
	})
}

func (s *Service) handleUpdateItems(ctx context.Context, raw json.RawMessage) error {
	var p ItemUpdatesPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.UpdateItems(p.Updates)
	})
}

func (s *Service) handleUpdateConnections(ctx context.Context, raw json.RawMessage) error {
	var p ConnUpdatesPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.UpdateConnections(p.Updates)
	})
}

// handleUpdateFlag writes an arbitrary flag under the module namespace.
// Writes to the board flag replace the cached engine wholesale.
func (s *Service) handleUpdateFlag(ctx context.Context, raw json.RawMessage) error {
	var p FlagPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if err := s.store.SetFlag(ctx, p.Scene, p.Key, p.Value); err != nil {
		return err
	}
	if p.Key == FlagBoard {
		s.Invalidate(p.Scene)
	}
	s.scheduleRefresh(p.Scene)
	return nil
}

func (s *Service) handleDeleteItem(ctx context.Context, raw json.RawMessage) error {
	var p IDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.DeleteItem(p.ID)
	})
}

func (s *Service) handleAddConnection(ctx context.Context, raw json.RawMessage) error {
	var p ConnectionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		_, err := eng.AddConnection(p.From, p.To)
		return err
	})
}

func (s *Service) handleUpdateConnection(ctx context.Context, raw json.RawMessage) error {
	var p ConnUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.UpdateConnection(p.Update.ID, p.Update.Changes)
	})
}

func (s *Service) handleDeleteConnection(ctx context.Context, raw json.RawMessage) error {
	var p IDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.DeleteConnection(p.ID)
	})
}

func (s *Service) handleClearBoard(ctx context.Context, raw json.RawMessage) error {
	var p ScenePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		eng.ClearBoard()
		return nil
	})
}

// zOrderHandler adapts the engine's id-keyed layer moves, which all share
// one shape.
func (s *Service) zOrderHandler(move func(*board.Engine, string) error) Handler {
	return func(ctx context.Context, raw json.RawMessage) error {
		var p IDPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
			return move(eng, p.ID)
		})
	}
}

func (s *Service) handleCreateGroup(ctx context.Context, raw json.RawMessage) error {
	var p GroupPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		_, err := eng.CreateGroup(p.ItemIDs, p.Name)
		return err
	})
}

func (s *Service) handleUngroup(ctx context.Context, raw json.RawMessage) error {
	var p IDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		return eng.Ungroup(p.ID)
	})
}

func (s *Service) handleDuplicateItems(ctx context.Context, raw json.RawMessage) error {
	var p DuplicatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.mutate(ctx, p.Scene, func(eng *board.Engine) error {
		eng.DuplicateItems(p.IDs, p.DX, p.DY)
		return nil
	})
}

// handleSetCurrentBoard persists the selector on the GM and fans it out;
// every peer applies it to the process-wide state.
func (s *Service) handleSetCurrentBoard(ctx context.Context, raw json.RawMessage) error {
	var p CurrentBoardPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if s.ident.IsGM {
		val, err := json.Marshal(p.BoardID)
		if err != nil {
			return err
		}
		if err := s.store.SetSetting(ctx, SettingCurrentBoard, val); err != nil {
			return err
		}
		if err := s.sock.ExecuteForOthers(ctx, ActionSetCurrentBoard, p); err != nil {
			s.logger.Warn("selector broadcast failed", "error", err)
		}
	}
	if g := GlobalState(); g != nil {
		g.applyCurrent(p.BoardID)
	}
	return nil
}

// handleSetGlobalBoards persists the collection on the GM and fans it
// out; receivers install the snapshot under the reentrancy flag.
func (s *Service) handleSetGlobalBoards(ctx context.Context, raw json.RawMessage) error {
	var p GlobalBoardsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if s.ident.IsGM {
		val, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := s.store.SetSetting(ctx, SettingGlobalBoards, val); err != nil {
			return err
		}
		if err := s.sock.ExecuteForOthers(ctx, ActionSetGlobalBoards, p); err != nil {
			s.logger.Warn("boards broadcast failed", "error", err)
		}
	}
	if g := GlobalState(); g != nil {
		g.applySnapshot(p)
	}
	return nil
}

// handleRefreshBoard runs on receivers: forget the cached scene so the
// next read refetches, then let the app redraw.
func (s *Service) handleRefreshBoard(_ context.Context, raw json.RawMessage) error {
	var p ScenePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	s.Invalidate(p.Scene)
	if s.onRefresh != nil {
		s.onRefresh(p.Scene)
	}
	return nil
}

// LoadGlobals primes the process-wide state from settings, typically
// right after InitGlobals on startup.
func (s *Service) LoadGlobals(ctx context.Context) error {
	g := GlobalState()
	if g == nil {
		return nil
	}
	raw, err := s.store.GetSetting(ctx, SettingGlobalBoards)
	if err != nil {
		return err
	}
	var p GlobalBoardsPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
	}
	if cur, err := s.store.GetSetting(ctx, SettingCurrentBoard); err == nil && len(cur) > 0 {
		var id string
		if err := json.Unmarshal(cur, &id); err == nil {
			p.Current = id
		}
	}
	g.applySnapshot(p)
	return nil
}
