/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import "corkboard/internal/domain"

// MigrateItems rewrites legacy image records in place. Image dimensions
// used to be written at creation time; they now derive from the preset and
// the actual image aspect, so stale stored dimensions are moved aside to
// _oldWidth/_oldHeight and the live fields cleared. Runs on every board
// read; reports whether anything changed so the authoritative writer can
// persist the rewrite. Already-migrated records and records without legacy
// dimensions are left untouched.
func MigrateItems(b *domain.Board) bool {
	changed := false
	for i := range b.Items {
		it := &b.Items[i]
		if it.Type != domain.ItemImage || it.MigrationApplied {
			continue
		}
		if it.Data.Width == nil && it.Data.Height == nil {
			continue
		}
		it.Data.OldWidth = it.Data.Width
		it.Data.OldHeight = it.Data.Height
		it.Data.Width = nil
		it.Data.Height = nil
		it.MigrationApplied = true
		changed = true
	}
	return changed
}

// Migrate applies MigrateItems under the engine's write lock.
func (e *Engine) Migrate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MigrateItems(e.b)
}
