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

	"corkboard/internal/board"
	"corkboard/internal/domain"
)

// Action names routed over the socket. All of them coalesce to the GM
// except refreshBoard, which travels the other way.
const (
	ActionAddItem           = "addItem"
	ActionUpdateItem        = "updateItem"
	ActionUpdateItems       = "updateItems"
	ActionUpdateConnections = "updateConnections"
	ActionUpdateFlag        = "updateFlag"
	ActionDeleteItem        = "deleteItem"
	ActionAddConnection     = "addConnection"
	ActionUpdateConnection  = "updateConnection"
	ActionDeleteConnection  = "deleteConnection"
	ActionClearBoard        = "clearBoard"
	ActionBringToFront      = "bringToFront"
	ActionBringForward      = "bringForward"
	ActionSendBackward      = "sendBackward"
	ActionSendToBack        = "sendToBack"
	ActionCreateGroup       = "createGroup"
	ActionUngroup           = "ungroup"
	ActionBringGroupToFront = "bringGroupToFront"
	ActionSendGroupToBack   = "sendGroupToBack"
	ActionDuplicateItems    = "duplicateItems"
	ActionSetCurrentBoard   = "setCurrentBoardId"
	ActionSetGlobalBoards   = "setGlobalBoards"
	ActionRefreshBoard      = "refreshBoard"
)

// ScenePayload addresses an action at one scene.
type ScenePayload struct {
	Scene string `json:"sceneId"`
}

// ItemPayload carries a full item for addItem.
type ItemPayload struct {
	Scene string      `json:"sceneId"`
	Item  domain.Item `json:"item"`
}

// IDPayload addresses a single record by id (delete, z-order moves).
type IDPayload struct {
	Scene string `json:"sceneId"`
	ID    string `json:"id"`
}

// ItemUpdatePayload carries one merge-patch for updateItem.
type ItemUpdatePayload struct {
	Scene  string           `json:"sceneId"`
	Update board.ItemUpdate `json:"update"`
}

// ItemUpdatesPayload batches merge-patches for updateItems.
type ItemUpdatesPayload struct {
	Scene   string             `json:"sceneId"`
	Updates []board.ItemUpdate `json:"updates"`
}

// ConnectionPayload names the endpoints for addConnection.
type ConnectionPayload struct {
	Scene string `json:"sceneId"`
	From  string `json:"fromItem"`
	To    string `json:"toItem"`
}

// ConnUpdatePayload carries one merge-patch for updateConnection.
type ConnUpdatePayload struct {
	Scene  string                 `json:"sceneId"`
	Update board.ConnectionUpdate `json:"update"`
}

// ConnUpdatesPayload batches merge-patches for updateConnections.
type ConnUpdatesPayload struct {
	Scene   string                   `json:"sceneId"`
	Updates []board.ConnectionUpdate `json:"updates"`
}

// FlagPayload writes an arbitrary scene flag for updateFlag.
type FlagPayload struct {
	Scene string          `json:"sceneId"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// GroupPayload carries the member set for createGroup.
type GroupPayload struct {
	Scene   string   `json:"sceneId"`
	Name    string   `json:"name,omitempty"`
	ItemIDs []string `json:"itemIds"`
}

// DuplicatePayload carries the clone request for duplicateItems.
type DuplicatePayload struct {
	Scene string   `json:"sceneId"`
	IDs   []string `json:"ids"`
	DX    float64  `json:"dx"`
	DY    float64  `json:"dy"`
}

// CurrentBoardPayload selects the active board in the global collection.
type CurrentBoardPayload struct {
	BoardID string `json:"boardId"`
}

// GlobalBoardsPayload replaces the cross-scene boards collection.
type GlobalBoardsPayload struct {
	Boards  []NamedBoard `json:"boards"`
	Current string       `json:"currentBoardId,omitempty"`
}

// NamedBoard pairs a board's identity with its contents for the global
// collection, which lives in settings rather than scene flags.
type NamedBoard struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Board *domain.Board `json:"board"`
}

// Info strips the contents down to the listing entry.
func (n NamedBoard) Info() domain.BoardInfo {
	return domain.BoardInfo{ID: n.ID, Name: n.Name}
}
