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
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	applog "corkboard/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres backs shared deployments where several GMs (or a hub plus tools)
// point at one database. Values live in JSONB columns; writes are upserts.
type Postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenPostgres connects, pings and applies embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	l := applog.WithOperation(applog.WithComponent("store"), "postgres_open")
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("migrate failed", slog.Any("err", err))
		return nil, fmt.Errorf("migrate: %w", err)
	}
	l.Info("store ready")
	return &Postgres{db: db, logger: applog.WithComponent("store")}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

// DB exposes the underlying handle for maintenance tooling.
func (p *Postgres) DB() *sql.DB { return p.db }

// applyMigrations applies embedded SQL migrations in filename order and
// records each applied version.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, fname := range files {
		version, err := parseMigrationVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		sqlText := string(b)
		if strings.TrimSpace(sqlText) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, version, fname); err != nil {
			return fmt.Errorf("record %s: %w", fname, err)
		}
	}
	return nil
}

func parseMigrationVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) == 0 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}

func (p *Postgres) GetFlag(ctx context.Context, sceneID, key string) (json.RawMessage, error) {
	var v []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM flags WHERE scene_id=$1 AND key=$2`, sceneID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flag %s/%s: %w", sceneID, key, err)
	}
	return v, nil
}

func (p *Postgres) SetFlag(ctx context.Context, sceneID, key string, value json.RawMessage) error {
	if value == nil {
		if _, err := p.db.ExecContext(ctx,
			`DELETE FROM flags WHERE scene_id=$1 AND key=$2`, sceneID, key); err != nil {
			return fmt.Errorf("delete flag %s/%s: %w", sceneID, key, err)
		}
		return nil
	}
	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO flags(scene_id, key, value, updated_at) VALUES($1, $2, $3, now())
		ON CONFLICT (scene_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`,
		sceneID, key, []byte(value)); err != nil {
		return fmt.Errorf("set flag %s/%s: %w", sceneID, key, err)
	}
	return nil
}

func (p *Postgres) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	var v []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

func (p *Postgres) SetSetting(ctx context.Context, key string, value json.RawMessage) error {
	if value == nil {
		if _, err := p.db.ExecContext(ctx,
			`DELETE FROM settings WHERE key=$1`, key); err != nil {
			return fmt.Errorf("delete setting %s: %w", key, err)
		}
		return nil
	}
	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO settings(key, value, updated_at) VALUES($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`,
		key, []byte(value)); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// Scenes lists the ids of scenes that hold at least one flag.
func (p *Postgres) Scenes(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT DISTINCT scene_id FROM flags ORDER BY scene_id`)
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
