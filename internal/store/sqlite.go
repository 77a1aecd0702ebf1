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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "corkboard/internal/log"
	"corkboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DefaultDBFileName is the database file created when the configured
	// store path is a directory.
	DefaultDBFileName = "corkboard.sqlite"

	// sqliteSchemaVersion tracks the embedded schema. Bump it when you make
	// breaking schema changes and add a migration step.
	sqliteSchemaVersion = 2
)

// SQLite is the default local store: a single WAL-mode database file holding
// flags, settings and the thumbnail cache. Safe for concurrent use through
// database/sql.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database at path, enables WAL mode and
// brings the schema up to date. A directory path gets DefaultDBFileName
// appended.
func OpenSQLite(path string) (*SQLite, error) {
	l := applog.WithOperation(applog.WithComponent("store"), "sqlite_open")
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultDBFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	// URI with shared cache and busy timeout; forward slashes for the URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: one writer connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	s := &SQLite{db: db, path: path, logger: applog.WithComponent("store")}
	if err := s.ensureMetaAndVersion(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("store ready", slog.String("path", path))
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

// DB exposes the underlying handle for maintenance tooling.
func (s *SQLite) DB() *sql.DB { return s.db }

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, sqliteSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations.
		if _, err := s.db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	ddl := []string{
		// Scene-scoped flags. value is raw JSON.
		`CREATE TABLE IF NOT EXISTS flags (
			scene_id   TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY(scene_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_flags_scene ON flags(scene_id);`,

		// Cross-scene settings.
		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,

		// Board thumbnail cache, keyed by content revision and size.
		`CREATE TABLE IF NOT EXISTS thumbs (
			board_id    TEXT    NOT NULL,
			rev         TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			png_blob    BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			updated_at  TEXT    NOT NULL,
			last_access TEXT,
			PRIMARY KEY(board_id, rev, w, h)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_thumbs_access ON thumbs(last_access);`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to sqliteSchemaVersion.
func (s *SQLite) runMigrations(ctx context.Context) error {
	var cur int
	if err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > sqliteSchemaVersion {
		// Never downgrade a newer file.
		return nil
	}
	for cur < sqliteSchemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// v1 files predate the thumbnail cache.
			tx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE TABLE IF NOT EXISTS thumbs (
					board_id    TEXT    NOT NULL,
					rev         TEXT    NOT NULL,
					w           INTEGER NOT NULL,
					h           INTEGER NOT NULL,
					png_blob    BLOB    NOT NULL,
					size        INTEGER NOT NULL,
					updated_at  TEXT    NOT NULL,
					last_access TEXT,
					PRIMARY KEY(board_id, rev, w, h)
				);`,
				`CREATE INDEX IF NOT EXISTS idx_thumbs_access ON thumbs(last_access);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step; leave as-is.
		}
		cur = next
	}
	return nil
}

// language=SQL
// dialect=SQLite
const getFlagSQL = `SELECT value FROM flags WHERE scene_id = ? AND key = ?`

// language=SQL
// dialect=SQLite
const upsertFlagSQL = `INSERT INTO flags(scene_id, key, value, updated_at) VALUES(?, ?, ?, ?)
	ON CONFLICT(scene_id, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`

// language=SQL
// dialect=SQLite
const deleteFlagSQL = `DELETE FROM flags WHERE scene_id = ? AND key = ?`

// language=SQL
// dialect=SQLite
const getSettingSQL = `SELECT value FROM settings WHERE key = ?`

// language=SQL
// dialect=SQLite
const upsertSettingSQL = `INSERT INTO settings(key, value, updated_at) VALUES(?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`

// language=SQL
// dialect=SQLite
const deleteSettingSQL = `DELETE FROM settings WHERE key = ?`

// language=SQL
// dialect=SQLite
const listScenesSQL = `SELECT DISTINCT scene_id FROM flags ORDER BY scene_id`

func (s *SQLite) GetFlag(ctx context.Context, sceneID, key string) (json.RawMessage, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, getFlagSQL, sceneID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flag %s/%s: %w", sceneID, key, err)
	}
	return v, nil
}

func (s *SQLite) SetFlag(ctx context.Context, sceneID, key string, value json.RawMessage) error {
	if value == nil {
		if _, err := s.db.ExecContext(ctx, deleteFlagSQL, sceneID, key); err != nil {
			return fmt.Errorf("delete flag %s/%s: %w", sceneID, key, err)
		}
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, upsertFlagSQL, sceneID, key, []byte(value), now); err != nil {
		return fmt.Errorf("set flag %s/%s: %w", sceneID, key, err)
	}
	return nil
}

func (s *SQLite) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, getSettingSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLite) SetSetting(ctx context.Context, key string, value json.RawMessage) error {
	if value == nil {
		if _, err := s.db.ExecContext(ctx, deleteSettingSQL, key); err != nil {
			return fmt.Errorf("delete setting %s: %w", key, err)
		}
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, upsertSettingSQL, key, []byte(value), now); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// Scenes lists the ids of scenes that hold at least one flag.
func (s *SQLite) Scenes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listScenesSQL)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
