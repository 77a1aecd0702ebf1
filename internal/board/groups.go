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

// CreateGroup assigns a fresh group to the listed items and appends its
// record at layer 0. Ids that do not resolve are skipped; at least one must.
func (e *Engine) CreateGroup(itemIDs []string, name string) (domain.Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := domain.Group{ID: domain.NewID(), Name: name}
	if g.Name == "" {
		g.Name = fmt.Sprintf("Group %d", len(e.b.Groups)+1)
	}
	n := 0
	for _, id := range itemIDs {
		if it := e.b.ItemByID(id); it != nil {
			it.GroupID = g.ID
			n++
		}
	}
	if n == 0 {
		return domain.Group{}, fmt.Errorf("no items to group")
	}
	e.b.Groups = append(e.b.Groups, g)
	return g, nil
}

// Ungroup removes the group record and clears groupId on its members.
// Members keep their zIndex, now layered in the ungrouped bucket.
func (e *Engine) Ungroup(groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	at := -1
	for i := range e.b.Groups {
		if e.b.Groups[i].ID == groupID {
			at = i
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("group %s not found", groupID)
	}
	e.b.Groups = append(e.b.Groups[:at], e.b.Groups[at+1:]...)
	for i := range e.b.Items {
		if e.b.Items[i].GroupID == groupID {
			e.b.Items[i].GroupID = ""
		}
	}
	return nil
}

// DuplicateItems clones the listed items with fresh ids at an offset and
// returns the clones. Ids that do not resolve are skipped. Clones keep
// their source zIndex; insertion order draws them above the originals.
func (e *Engine) DuplicateItems(ids []string, dx, dy float64) []domain.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []domain.Item
	for _, id := range ids {
		src := e.b.ItemByID(id)
		if src == nil {
			continue
		}
		c := src.Clone()
		c.ID = domain.NewID()
		c.X += dx
		c.Y += dy
		e.b.Items = append(e.b.Items, c)
		out = append(out, c)
	}
	return out
}
