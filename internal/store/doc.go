/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store implements the flag and settings persistence backends the
// relay service writes through: scene-scoped flags (the board payloads) plus a
// small cross-scene settings table (global boards, current board selector).
// Three backends share one contract: an in-process memory store for tests and
// solo sessions, an embedded SQLite database (WAL, CGO-free driver) as the
// local default, and a PostgreSQL store for shared deployments. The SQLite
// backend additionally caches board thumbnail PNGs keyed by content revision.
package store
