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
	"strings"
)

// Store is the persistence surface shared by all backends. It satisfies the
// relay service's storage contract; a missing key reads as (nil, nil), and
// setting a nil value deletes the key. Scenes lists the ids that hold at
// least one flag, and Ping is the readiness probe the daemon exposes.
type Store interface {
	GetFlag(ctx context.Context, sceneID, key string) (json.RawMessage, error)
	SetFlag(ctx context.Context, sceneID, key string, value json.RawMessage) error
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)
	SetSetting(ctx context.Context, key string, value json.RawMessage) error
	Scenes(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open dispatches on the DSN shape: empty or "memory" yields the in-process
// store, a postgres:// URL the PostgreSQL store, and anything else is treated
// as a SQLite database file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || dsn == "memory" || dsn == "memory://":
		return NewMemory(), nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	default:
		return OpenSQLite(dsn)
	}
}
