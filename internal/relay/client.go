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
	"errors"
	"log/slog"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/log"
)

// Client issues mutations from this peer to the authoritative writer.
// The caller applies its optimistic local change first; when the
// transport is gone the mutation is logged and dropped so the session
// continues local-only.
type Client struct {
	sock   Socket
	logger *slog.Logger
}

// NewClient wraps a socket for the mutation side of the protocol.
func NewClient(sock Socket) *Client {
	return &Client{sock: sock, logger: log.WithComponent("relay")}
}

func (c *Client) send(ctx context.Context, action string, payload any) error {
	err := c.sock.ExecuteAsGM(ctx, action, payload)
	if errors.Is(err, ErrTransportUnavailable) {
		c.logger.Warn("dropping mutation, transport unavailable", "action", action)
		return nil
	}
	return err
}

func (c *Client) AddItem(ctx context.Context, sceneID string, it domain.Item) error {
	return c.send(ctx, ActionAddItem, ItemPayload{Scene: sceneID, Item: it})
}

func (c *Client) UpdateItem(ctx context.Context, sceneID, id string, changes map[string]any) error {
	return c.send(ctx, ActionUpdateItem, ItemUpdatePayload{
		Scene:  sceneID,
		Update: board.ItemUpdate{ID: id, Changes: changes},
	})
}

func (c *Client) UpdateItems(ctx context.Context, sceneID string, updates []board.ItemUpdate) error {
	return c.send(ctx, ActionUpdateItems, ItemUpdatesPayload{Scene: sceneID, Updates: updates})
}

func (c *Client) UpdateConnections(ctx context.Context, sceneID string, updates []board.ConnectionUpdate) error {
	return c.send(ctx, ActionUpdateConnections, ConnUpdatesPayload{Scene: sceneID, Updates: updates})
}

func (c *Client) UpdateFlag(ctx context.Context, sceneID, key string, value json.RawMessage) error {
	return c.send(ctx, ActionUpdateFlag, FlagPayload{Scene: sceneID, Key: key, Value: value})
}

func (c *Client) DeleteItem(ctx context.Context, sceneID, id string) error {
	return c.send(ctx, ActionDeleteItem, IDPayload{Scene: sceneID, ID: id})
}

func (c *Client) AddConnection(ctx context.Context, sceneID, fromID, toID string) error {
	return c.send(ctx, ActionAddConnection, ConnectionPayload{Scene: sceneID, From: fromID, To: toID})
}

func (c *Client) UpdateConnection(ctx context.Context, sceneID, id string, changes map[string]any) error {
	return c.send(ctx, ActionUpdateConnection, ConnUpdatePayload{
		Scene:  sceneID,
		Update: board.ConnectionUpdate{ID: id, Changes: changes},
	})
}

func (c *Client) DeleteConnection(ctx context.Context, sceneID, id string) error {
	return c.send(ctx, ActionDeleteConnection, IDPayload{Scene: sceneID, ID: id})
}

func (c *Client) ClearBoard(ctx context.Context, sceneID string) error {
	return c.send(ctx, ActionClearBoard, ScenePayload{Scene: sceneID})
}

func (c *Client) BringToFront(ctx context.Context, sceneID, id string) error {
	return c.send(ctx, ActionBringToFront, IDPayload{Scene: sceneID, ID: id})
}

func (c *Client) BringForward(ctx context.Context, sceneID, id string) error {
	return c.send(ctx, ActionBringForward, IDPayload{Scene: sceneID, ID: id})
}

func (c *Client) SendBackward(ctx context.Context, sceneID, id string) error {
	return c.send(ctx, ActionSendBackward, IDPayload{Scene: sceneID, ID: id})
}

func (c *Client) SendToBack(ctx context.Context, sceneID, id string) error {
	return c.send(ctx, ActionSendToBack, IDPayload{Scene: sceneID, ID: id})
}

func (c *Client) CreateGroup(ctx context.Context, sceneID, name string, itemIDs []string) error {
	return c.send(ctx, ActionCreateGroup, GroupPayload{Scene: sceneID, Name: name, ItemIDs: itemIDs})
}

func (c *Client) Ungroup(ctx context.Context, sceneID, groupID string) error {
	return c.send(ctx, ActionUngroup, IDPayload{Scene: sceneID, ID: groupID})
}

func (c *Client) BringGroupToFront(ctx context.Context, sceneID, groupID string) error {
	return c.send(ctx, ActionBringGroupToFront, IDPayload{Scene: sceneID, ID: groupID})
}

func (c *Client) SendGroupToBack(ctx context.Context, sceneID, groupID string) error {
	return c.send(ctx, ActionSendGroupToBack, IDPayload{Scene: sceneID, ID: groupID})
}

func (c *Client) DuplicateItems(ctx context.Context, sceneID string, ids []string, dx, dy float64) error {
	return c.send(ctx, ActionDuplicateItems, DuplicatePayload{Scene: sceneID, IDs: ids, DX: dx, DY: dy})
}

func (c *Client) SetCurrentBoard(ctx context.Context, boardID string) error {
	return c.send(ctx, ActionSetCurrentBoard, CurrentBoardPayload{BoardID: boardID})
}

func (c *Client) SetGlobalBoards(ctx context.Context, boards []NamedBoard, current string) error {
	return c.send(ctx, ActionSetGlobalBoards, GlobalBoardsPayload{Boards: boards, Current: current})
}
