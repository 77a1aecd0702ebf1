/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"

	"corkboard/internal/domain"
)

// clipApp marks clipboard payloads written by us.
const clipApp = "corkboard"

// clipPayload is the JSON document placed on the system clipboard by Copy.
// Connections are included only when both endpoints are part of the copy.
type clipPayload struct {
	App         string              `json:"app"`
	Items       []domain.Item       `json:"items"`
	Connections []domain.Connection `json:"connections"`
}

// readClipboard and writeClipboard are swapped out in tests.
var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

// Copy places the selected items, and the connections fully contained in
// the selection, on the system clipboard as JSON.
func (c *Controller) Copy() error {
	if len(c.selection) == 0 {
		return nil
	}
	b := c.eng.Snapshot()

	p := clipPayload{App: clipApp, Items: []domain.Item{}, Connections: []domain.Connection{}}
	for _, id := range c.selection {
		if it := b.ItemByID(id); it != nil {
			p.Items = append(p.Items, *it)
		}
	}
	for _, conn := range b.Connections {
		if c.isSelected(conn.FromItem) && c.isSelected(conn.ToItem) {
			p.Connections = append(p.Connections, conn)
		}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode clipboard payload: %w", err)
	}
	return writeClipboard(string(data))
}

// Paste inserts the clipboard payload with fresh ids, offset slightly from
// the copied position, and selects the new items. Clipboard content that is
// not one of our payloads is ignored.
func (c *Controller) Paste(ctx context.Context) error {
	text, err := readClipboard()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}

	var p clipPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil || p.App != clipApp {
		return nil
	}
	if len(p.Items) == 0 {
		return nil
	}

	idMap := make(map[string]string, len(p.Items))
	z := c.eng.NextZ("")
	pasted := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		oldID := it.ID
		it.ID = domain.NewID()
		it.X += pasteOffset
		it.Y += pasteOffset
		it.ZIndex = z
		it.GroupID = ""
		z++
		idMap[oldID] = it.ID
		pasted = append(pasted, it.ID)
		if err := c.mut.AddItem(ctx, c.sceneID, it); err != nil {
			return fmt.Errorf("paste item: %w", err)
		}
	}
	for _, conn := range p.Connections {
		from, to := idMap[conn.FromItem], idMap[conn.ToItem]
		if from == "" || to == "" {
			continue
		}
		if err := c.mut.AddConnection(ctx, c.sceneID, from, to); err != nil {
			return fmt.Errorf("paste connection: %w", err)
		}
	}

	c.SetSelection(pasted)
	c.renderer.Draw()
	return nil
}
