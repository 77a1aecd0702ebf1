/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory keeps flags and settings in process. It backs solo sessions and
// tests; nothing survives a restart.
type Memory struct {
	mu       sync.RWMutex
	flags    map[string]map[string]json.RawMessage
	settings map[string]json.RawMessage
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		flags:    make(map[string]map[string]json.RawMessage),
		settings: make(map[string]json.RawMessage),
	}
}

func (m *Memory) GetFlag(_ context.Context, sceneID, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scene, ok := m.flags[sceneID]
	if !ok {
		return nil, nil
	}
	v, ok := scene[key]
	if !ok {
		return nil, nil
	}
	return cloneRaw(v), nil
}

func (m *Memory) SetFlag(_ context.Context, sceneID, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		if scene, ok := m.flags[sceneID]; ok {
			delete(scene, key)
			if len(scene) == 0 {
				delete(m.flags, sceneID)
			}
		}
		return nil
	}
	scene, ok := m.flags[sceneID]
	if !ok {
		scene = make(map[string]json.RawMessage)
		m.flags[sceneID] = scene
	}
	scene[key] = cloneRaw(value)
	return nil
}

func (m *Memory) GetSetting(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	if !ok {
		return nil, nil
	}
	return cloneRaw(v), nil
}

func (m *Memory) SetSetting(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.settings, key)
		return nil
	}
	m.settings[key] = cloneRaw(value)
	return nil
}

// Scenes lists the ids of scenes that hold at least one flag.
func (m *Memory) Scenes(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.flags))
	for id := range m.flags {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// cloneRaw copies raw JSON so callers cannot alias store-internal buffers.
func cloneRaw(v json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), v...)
}
