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
)

// Storage keys under the module namespace.
const (
	// FlagBoard is the per-scene flag holding the scene's board.
	FlagBoard = "board"
	// SettingGlobalBoards holds the cross-scene boards collection.
	SettingGlobalBoards = "globalBoards"
	// SettingCurrentBoard holds the active board selector.
	SettingCurrentBoard = "currentBoardId"
)

// Store is the persistence surface the GM writes through: scene-scoped
// flags plus a small cross-scene settings table. A missing key reads as
// (nil, nil).
type Store interface {
	GetFlag(ctx context.Context, sceneID, key string) (json.RawMessage, error)
	SetFlag(ctx context.Context, sceneID, key string, value json.RawMessage) error
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)
	SetSetting(ctx context.Context, key string, value json.RawMessage) error
}
