/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package relay implements the GM-authoritative synchronization protocol:
// every mutation is routed to the one writing peer, applied against
// persistent storage there, and announced to everyone else through a
// debounced refresh broadcast.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ModuleID namespaces every frame and storage key of this module.
const ModuleID = "corkboard"

// ErrTransportUnavailable is returned when no socket connection exists.
// Callers log a warning and drop the mutation; the UI stays local-only.
var ErrTransportUnavailable = errors.New("relay: transport unavailable")

// Handler processes one incoming action payload.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Socket is the RPC surface the protocol runs on. ExecuteAsGM runs the
// registered handler on the authoritative peer; ExecuteForOthers runs it
// on every peer except the sender.
type Socket interface {
	Register(action string, h Handler)
	ExecuteAsGM(ctx context.Context, action string, payload any) error
	ExecuteForOthers(ctx context.Context, action string, payload any) error
}

// Identity describes the local user to the transport. IsGM grants write
// authority.
type Identity struct {
	UserID string `json:"userId"`
	IsGM   bool   `json:"isGM"`
}

// Loopback is the in-process socket used for solo sessions and tests: the
// local peer is the GM, so ExecuteAsGM invokes the handler inline and
// ExecuteForOthers has nobody to reach.
type Loopback struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewLoopback returns an empty in-process socket.
func NewLoopback() *Loopback {
	return &Loopback{handlers: make(map[string]Handler)}
}

// Register stores the handler for an action, replacing any previous one.
func (l *Loopback) Register(action string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[action] = h
}

// ExecuteAsGM runs the action handler synchronously on this peer.
func (l *Loopback) ExecuteAsGM(ctx context.Context, action string, payload any) error {
	l.mu.RLock()
	h, ok := l.handlers[action]
	l.mu.RUnlock()
	if !ok {
		return ErrTransportUnavailable
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h(ctx, raw)
}

// ExecuteForOthers is a no-op: a loopback session has no other peers.
func (l *Loopback) ExecuteForOthers(context.Context, string, any) error {
	return nil
}
