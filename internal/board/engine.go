/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board implements the mutation engine over a corkboard's retained
// scene model. All writes go through an Engine so that the authoritative
// writer, the renderer and the interaction layer observe one consistent
// board. Partial updates are JSON merge patches, matching the wire payloads
// the sync layer relays between clients.
package board

import (
	"fmt"
	"sync"

	"corkboard/internal/domain"
)

// Engine serializes access to a single board. Mutations take the write
// lock; View and Snapshot are safe to call from the render loop while a
// socket handler applies remote actions.
type Engine struct {
	mu sync.RWMutex
	b  *domain.Board
}

// NewEngine wraps a board. A nil board starts empty.
func NewEngine(b *domain.Board) *Engine {
	if b == nil {
		b = &domain.Board{}
	}
	return &Engine{b: b}
}

// Replace swaps in a new board wholesale, e.g. after a refresh from the
// authoritative writer.
func (e *Engine) Replace(b *domain.Board) {
	if b == nil {
		b = &domain.Board{}
	}
	e.mu.Lock()
	e.b = b
	e.mu.Unlock()
}

// View runs fn with the read lock held. fn must not retain the board.
func (e *Engine) View(fn func(*domain.Board)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.b)
}

// Snapshot returns a deep copy of the current board.
func (e *Engine) Snapshot() *domain.Board {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.b.Clone()
}

// NextZ returns the zIndex that places a new item on top of its bucket.
func (e *Engine) NextZ(groupID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return nextZLocked(e.b, groupID)
}

func nextZLocked(b *domain.Board, groupID string) int {
	idx := domain.BucketItems(b, groupID)
	if len(idx) == 0 {
		return 0
	}
	return b.Items[idx[len(idx)-1]].ZIndex + 1
}

// AddItem appends an item, assigning an id when the caller left it empty,
// and returns the stored record.
func (e *Engine) AddItem(it domain.Item) domain.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	if it.ID == "" {
		it.ID = domain.NewID()
	}
	e.b.Items = append(e.b.Items, it)
	return it
}

// ItemUpdate pairs an item id with a merge patch for bulk updates.
type ItemUpdate struct {
	ID      string         `json:"id"`
	Changes map[string]any `json:"changes"`
}

// UpdateItem merges a patch into the item. Keys mirror the serialized item;
// nested maps (notably "data") merge recursively, a JSON null clears an
// optional field.
func (e *Engine) UpdateItem(id string, changes map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return updateItemLocked(e.b, id, changes)
}

func updateItemLocked(b *domain.Board, id string, changes map[string]any) error {
	it := b.ItemByID(id)
	if it == nil {
		return fmt.Errorf("item %s not found", id)
	}
	if err := applyPatch(it, changes); err != nil {
		return fmt.Errorf("update item %s: %w", id, err)
	}
	it.ID = id
	return nil
}

// UpdateItems applies a batch of item patches. It stops at the first
// missing item, leaving earlier patches applied.
func (e *Engine) UpdateItems(updates []ItemUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, u := range updates {
		if err := updateItemLocked(e.b, u.ID, u.Changes); err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem removes the item and every connection that referenced it.
func (e *Engine) DeleteItem(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := e.b.Items
	at := -1
	for i := range items {
		if items[i].ID == id {
			at = i
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("item %s not found", id)
	}
	e.b.Items = append(items[:at], items[at+1:]...)

	kept := e.b.Connections[:0]
	for _, c := range e.b.Connections {
		if c.FromItem == id || c.ToItem == id {
			continue
		}
		kept = append(kept, c)
	}
	e.b.Connections = kept
	return nil
}

// AddConnection strings two items together and returns the new record.
// Both endpoints must resolve and differ.
func (e *Engine) AddConnection(fromID, toID string) (domain.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fromID == toID {
		return domain.Connection{}, fmt.Errorf("connection endpoints are the same item %s", fromID)
	}
	if e.b.ItemByID(fromID) == nil {
		return domain.Connection{}, fmt.Errorf("item %s not found", fromID)
	}
	if e.b.ItemByID(toID) == nil {
		return domain.Connection{}, fmt.Errorf("item %s not found", toID)
	}
	c := domain.Connection{ID: domain.NewID(), FromItem: fromID, ToItem: toID}
	e.b.Connections = append(e.b.Connections, c)
	return c, nil
}

// ConnectionUpdate pairs a connection id with a merge patch.
type ConnectionUpdate struct {
	ID      string         `json:"id"`
	Changes map[string]any `json:"changes"`
}

// UpdateConnection merges a patch into one connection.
func (e *Engine) UpdateConnection(id string, changes map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return updateConnectionLocked(e.b, id, changes)
}

func updateConnectionLocked(b *domain.Board, id string, changes map[string]any) error {
	c := b.ConnectionByID(id)
	if c == nil {
		return fmt.Errorf("connection %s not found", id)
	}
	if err := applyPatch(c, changes); err != nil {
		return fmt.Errorf("update connection %s: %w", id, err)
	}
	c.ID = id
	return nil
}

// UpdateConnections applies a batch of connection patches.
func (e *Engine) UpdateConnections(updates []ConnectionUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, u := range updates {
		if err := updateConnectionLocked(e.b, u.ID, u.Changes); err != nil {
			return err
		}
	}
	return nil
}

// DeleteConnection removes one connection.
func (e *Engine) DeleteConnection(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	conns := e.b.Connections
	for i := range conns {
		if conns[i].ID == id {
			e.b.Connections = append(conns[:i], conns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("connection %s not found", id)
}

// ClearBoard drops all items, connections and groups. Canvas settings such
// as the background stay.
func (e *Engine) ClearBoard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.b.Items = nil
	e.b.Connections = nil
	e.b.Groups = nil
}
