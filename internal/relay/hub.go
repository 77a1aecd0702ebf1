/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"corkboard/internal/log"
)

// Hub is the rendezvous point between peers: it owns no board state and
// only routes frames. GM-scoped frames go to the peer that joined with
// write authority, others-scoped frames to everyone but the sender.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	// Authenticate, when set, vets each upgrade before any frames flow
	// and returns the identity the connection is allowed to claim. The
	// join frame is clamped to that grant: a mismatched user id is
	// overwritten and a GM claim the grant does not carry is stripped.
	Authenticate func(*http.Request) (Identity, error)

	mu    sync.Mutex
	peers map[*hubPeer]struct{}
	gm    *hubPeer
}

type hubPeer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	ident   Identity
}

func (p *hubPeer) send(f Frame) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteJSON(f)
}

// NewHub returns an empty hub ready to serve websocket upgrades.
func NewHub() *Hub {
	return &Hub{
		logger: log.WithComponent("hub"),
		// Peers connect from the LAN with arbitrary origins.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		peers:    make(map[*hubPeer]struct{}),
	}
}

// ServeHTTP upgrades the request and pumps the peer until it leaves. The
// first frame must be a join announcing the peer's identity.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var grant *Identity
	if h.Authenticate != nil {
		id, err := h.Authenticate(r)
		if err != nil {
			h.logger.Warn("unauthorized peer", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		grant = &id
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var join Frame
	if err := conn.ReadJSON(&join); err != nil || join.Scope != ScopeJoin {
		h.logger.Warn("peer did not join", "remote", r.RemoteAddr)
		return
	}
	p := &hubPeer{conn: conn}
	if err := json.Unmarshal(join.Payload, &p.ident); err != nil {
		h.logger.Warn("bad join payload", "remote", r.RemoteAddr, "error", err)
		return
	}
	if grant != nil {
		if grant.UserID != "" && p.ident.UserID != grant.UserID {
			h.logger.Warn("join user clamped to grant", "claimed", p.ident.UserID, "granted", grant.UserID)
			p.ident.UserID = grant.UserID
		}
		if p.ident.IsGM && !grant.IsGM {
			h.logger.Warn("GM claim stripped", "user", p.ident.UserID)
			p.ident.IsGM = false
		}
	}

	h.register(p)
	defer h.unregister(p)

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Module != ModuleID {
			continue
		}
		f.Sender = p.ident.UserID
		h.route(p, f)
	}
}

func (h *Hub) register(p *hubPeer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	if p.ident.IsGM {
		h.gm = p
	}
	h.mu.Unlock()
	h.logger.Info("peer joined", "user", p.ident.UserID, "gm", p.ident.IsGM)
}

func (h *Hub) unregister(p *hubPeer) {
	h.mu.Lock()
	delete(h.peers, p)
	if h.gm == p {
		h.gm = nil
	}
	h.mu.Unlock()
	h.logger.Info("peer left", "user", p.ident.UserID)
}

func (h *Hub) route(from *hubPeer, f Frame) {
	h.mu.Lock()
	var targets []*hubPeer
	switch f.Scope {
	case ScopeGM:
		if h.gm != nil {
			targets = []*hubPeer{h.gm}
		}
	case ScopeOthers:
		for p := range h.peers {
			if p != from {
				targets = append(targets, p)
			}
		}
	}
	h.mu.Unlock()

	if f.Scope == ScopeGM && len(targets) == 0 {
		h.logger.Warn("no GM connected, dropping", "action", f.Action)
		return
	}
	for _, p := range targets {
		if err := p.send(f); err != nil {
			h.logger.Warn("delivery failed", "user", p.ident.UserID, "action", f.Action)
		}
	}
}
