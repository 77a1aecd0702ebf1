/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"fmt"

	"corkboard/internal/domain"
)

// bucketOf resolves the bucket an item layers in, treating a dangling
// groupId as ungrouped.
func bucketOf(b *domain.Board, it *domain.Item) string {
	if it.GroupID != "" && b.GroupByID(it.GroupID) != nil {
		return it.GroupID
	}
	return ""
}

// BringToFront gives the item the maximum zIndex within its bucket.
func (e *Engine) BringToFront(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	it := e.b.ItemByID(id)
	if it == nil {
		return fmt.Errorf("item %s not found", id)
	}
	max, any := 0, false
	for _, j := range domain.BucketItems(e.b, bucketOf(e.b, it)) {
		o := &e.b.Items[j]
		if o.ID == id {
			continue
		}
		if !any || o.ZIndex > max {
			max, any = o.ZIndex, true
		}
	}
	if any {
		it.ZIndex = max + 1
	}
	return nil
}

// SendToBack gives the item the minimum zIndex within its bucket.
func (e *Engine) SendToBack(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	it := e.b.ItemByID(id)
	if it == nil {
		return fmt.Errorf("item %s not found", id)
	}
	min, any := 0, false
	for _, j := range domain.BucketItems(e.b, bucketOf(e.b, it)) {
		o := &e.b.Items[j]
		if o.ID == id {
			continue
		}
		if !any || o.ZIndex < min {
			min, any = o.ZIndex, true
		}
	}
	if any {
		it.ZIndex = min - 1
	}
	return nil
}

// BringForward swaps zIndex with the next item up in the bucket's sorted
// order; the topmost item stays put.
func (e *Engine) BringForward(id string) error {
	return e.swapNeighbor(id, +1)
}

// SendBackward swaps zIndex with the next item down; the bottom item stays.
func (e *Engine) SendBackward(id string) error {
	return e.swapNeighbor(id, -1)
}

func (e *Engine) swapNeighbor(id string, dir int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	it := e.b.ItemByID(id)
	if it == nil {
		return fmt.Errorf("item %s not found", id)
	}
	idx := domain.BucketItems(e.b, bucketOf(e.b, it))
	pos := -1
	for p, j := range idx {
		if e.b.Items[j].ID == id {
			pos = p
			break
		}
	}
	n := pos + dir
	if n < 0 || n >= len(idx) {
		return nil
	}
	other := &e.b.Items[idx[n]]
	it.ZIndex, other.ZIndex = other.ZIndex, it.ZIndex
	return nil
}

// BringGroupToFront layers the whole group above every other group and the
// ungrouped bucket.
func (e *Engine) BringGroupToFront(groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.b.GroupByID(groupID)
	if g == nil {
		return fmt.Errorf("group %s not found", groupID)
	}
	max := 0
	for _, o := range e.b.Groups {
		if o.ID != groupID && o.ZIndex > max {
			max = o.ZIndex
		}
	}
	g.ZIndex = max + 1
	return nil
}

// SendGroupToBack layers the whole group below every other group and the
// ungrouped bucket.
func (e *Engine) SendGroupToBack(groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.b.GroupByID(groupID)
	if g == nil {
		return fmt.Errorf("group %s not found", groupID)
	}
	min := 0
	for _, o := range e.b.Groups {
		if o.ID != groupID && o.ZIndex < min {
			min = o.ZIndex
		}
	}
	g.ZIndex = min - 1
	return nil
}
