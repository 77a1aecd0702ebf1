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
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"corkboard/internal/log"
)

// Frame scopes understood by the hub.
const (
	ScopeJoin   = "join"
	ScopeGM     = "gm"
	ScopeOthers = "others"
)

// Frame is the wire envelope relayed by the hub. The hub routes on Scope
// and never looks inside Payload.
type Frame struct {
	Module  string          `json:"module"`
	Scope   string          `json:"scope"`
	Action  string          `json:"action,omitempty"`
	Sender  string          `json:"sender,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSSocket is the hub-backed transport. Incoming frames dispatch their
// handlers on the read goroutine in arrival order, which is what gives
// the GM its serialization guarantee.
type WSSocket struct {
	ident  Identity
	logger *slog.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu       sync.RWMutex
	handlers map[string]Handler
	closed   bool
}

// DialOptions carries the optional transport settings for DialWith.
type DialOptions struct {
	// Token is presented as a bearer credential during the upgrade.
	// Hubs without token auth ignore it.
	Token string
	// TLSInsecure skips certificate verification, for self-signed
	// wss:// setups on a LAN.
	TLSInsecure bool
}

// Dial connects to a hub, announces this peer, and starts the read loop.
func Dial(ctx context.Context, url string, ident Identity) (*WSSocket, error) {
	return DialWith(ctx, url, ident, DialOptions{})
}

// DialWith is Dial with credentials and TLS settings.
func DialWith(ctx context.Context, url string, ident Identity, opts DialOptions) (*WSSocket, error) {
	dialer := *websocket.DefaultDialer
	if opts.TLSInsecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	var hdr http.Header
	if opts.Token != "" {
		hdr = http.Header{"Authorization": []string{"Bearer " + opts.Token}}
	}
	conn, resp, err := dialer.DialContext(ctx, url, hdr)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("hub rejected credentials: %w", err)
		}
		return nil, err
	}
	s := &WSSocket{
		ident:    ident,
		logger:   log.WithComponent("relay"),
		conn:     conn,
		handlers: make(map[string]Handler),
	}
	join, err := json.Marshal(ident)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := s.write(Frame{Module: ModuleID, Scope: ScopeJoin, Sender: ident.UserID, Payload: join}); err != nil {
		conn.Close()
		return nil, err
	}
	go s.readLoop()
	return s, nil
}

// Register stores the handler for an action, replacing any previous one.
func (s *WSSocket) Register(action string, h Handler) {
	s.mu.Lock()
	s.handlers[action] = h
	s.mu.Unlock()
}

// ExecuteAsGM sends the action to the authoritative peer.
func (s *WSSocket) ExecuteAsGM(ctx context.Context, action string, payload any) error {
	return s.execute(ctx, ScopeGM, action, payload)
}

// ExecuteForOthers sends the action to every peer except this one.
func (s *WSSocket) ExecuteForOthers(ctx context.Context, action string, payload any) error {
	return s.execute(ctx, ScopeOthers, action, payload)
}

func (s *WSSocket) execute(_ context.Context, scope, action string, payload any) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrTransportUnavailable
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.write(Frame{
		Module:  ModuleID,
		Scope:   scope,
		Action:  action,
		Sender:  s.ident.UserID,
		Payload: raw,
	})
}

func (s *WSSocket) write(f Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(f); err != nil {
		s.markClosed()
		return ErrTransportUnavailable
	}
	return nil
}

func (s *WSSocket) readLoop() {
	for {
		var f Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if !s.isClosed() {
				s.logger.Warn("connection lost", "error", err)
				s.markClosed()
			}
			return
		}
		if f.Module != ModuleID {
			continue
		}
		s.mu.RLock()
		h := s.handlers[f.Action]
		s.mu.RUnlock()
		if h == nil {
			s.logger.Warn("no handler registered", "action", f.Action)
			continue
		}
		if err := h(context.Background(), f.Payload); err != nil {
			s.logger.Error("handler failed", "action", f.Action, "error", err)
		}
	}
}

func (s *WSSocket) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *WSSocket) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Close shuts the connection down; pending executes fail as unavailable.
func (s *WSSocket) Close() error {
	s.markClosed()
	return s.conn.Close()
}
