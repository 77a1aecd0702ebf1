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
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Thumbnail cache on the SQLite store. Thumbs are keyed by board id, a
// caller-supplied content revision (typically a hash of the board JSON) and
// the raster size, so a stale revision never serves. Total bytes are capped
// with least-recently-used eviction.

// GetThumb returns the cached PNG for the key, or nil when absent, and
// touches its access time.
func (s *SQLite) GetThumb(ctx context.Context, boardID, rev string, w, h int) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT png_blob FROM thumbs WHERE board_id=? AND rev=? AND w=? AND h=?`,
		boardID, rev, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumb: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = s.db.ExecContext(ctx,
		`UPDATE thumbs SET last_access=? WHERE board_id=? AND rev=? AND w=? AND h=?`,
		now, boardID, rev, w, h)
	return blob, nil
}

// PutThumb upserts a thumbnail, drops superseded revisions of the same board
// and size, and evicts least-recently-used rows past the byte cap.
func (s *SQLite) PutThumb(ctx context.Context, boardID, rev string, w, h int, png []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO thumbs(board_id, rev, w, h, png_blob, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(board_id, rev, w, h) DO UPDATE SET png_blob=excluded.png_blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		boardID, rev, w, h, png, len(png), now, now)
	if err != nil {
		return fmt.Errorf("upsert thumb: %w", err)
	}
	// A new revision makes earlier ones for the same board and size garbage.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM thumbs WHERE board_id=? AND w=? AND h=? AND rev<>?`,
		boardID, w, h, rev); err != nil {
		return fmt.Errorf("drop stale thumbs: %w", err)
	}
	capBytes := MaxThumbBytesFromEnv()
	if capBytes > 0 {
		if err := s.evictThumbsToFit(ctx, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreateThumb fetches a thumbnail or generates and stores it with the
// provided generator.
func (s *SQLite) GetOrCreateThumb(ctx context.Context, boardID, rev string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := s.GetThumb(ctx, boardID, rev, w, h); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := s.PutThumb(ctx, boardID, rev, w, h, data); err != nil {
		return nil, err
	}
	return data, nil
}

// evictThumbsToFit deletes least-recently-used rows until total size <= capBytes.
func (s *SQLite) evictThumbsToFit(ctx context.Context, capBytes int64) error {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return fmt.Errorf("sum thumbs size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT rowid, size FROM thumbs ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]int64, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM thumbs WHERE rowid IN (`
	args := make([]any, len(victims))
	for i, v := range victims {
		if i > 0 {
			q += ","
		}
		q += "?"
		args[i] = v
	}
	q += ")"
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("evict thumbs: %w", err)
	}
	return nil
}

// TotalThumbBytes returns total bytes tracked by thumbs.size.
func (s *SQLite) TotalThumbBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxThumbBytesFromEnv reads CKB_THUMBS_MAX_BYTES, defaulting to 64MB if unset.
func MaxThumbBytesFromEnv() int64 {
	v := os.Getenv("CKB_THUMBS_MAX_BYTES")
	if v == "" {
		return 64 * 1024 * 1024
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 64 * 1024 * 1024
	}
	return n
}
