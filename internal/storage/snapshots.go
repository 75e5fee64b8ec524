/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// language=SQL
// dialect=SQLite
const insertCrashSnapshotSQL = `INSERT INTO crash_snapshots(ts, content) VALUES (?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestCrashSnapshotSQL = `SELECT ts, content FROM crash_snapshots ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const pruneCrashSnapshotsSQL = `DELETE FROM crash_snapshots WHERE id NOT IN (
	SELECT id FROM crash_snapshots ORDER BY ts DESC LIMIT ?
)`

// SaveCrashSnapshot persists the serialized document state captured on an
// abnormal shutdown. It is meant for recovery on the next start, not as part
// of the regular version history.
func SaveCrashSnapshot(ctx context.Context, db *sql.DB, content []byte, ts time.Time) error {
	_, err := db.ExecContext(ctx, insertCrashSnapshotSQL, ts.UTC().Format(time.RFC3339Nano), content)
	return err
}

// LatestCrashSnapshot returns the most recent crash snapshot, or nil content
// when none exists.
func LatestCrashSnapshot(ctx context.Context, db *sql.DB) ([]byte, time.Time, error) {
	var tsStr string
	var content []byte
	err := db.QueryRowContext(ctx, selectLatestCrashSnapshotSQL).Scan(&tsStr, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return content, time.Time{}, nil
	}
	return content, ts, nil
}

// AutosaveCrashSnapshot stores the in-memory document of the handle into the
// project's crash snapshot table. Returns the index path the snapshot went
// to. Used by the panic handler, so it opens its own connection.
func AutosaveCrashSnapshot(ph *ProjectHandle) (string, error) {
	if ph == nil {
		return "", errors.New("nil ProjectHandle")
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()
	content, err := json.Marshal(ph.Manifest.Document)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SaveCrashSnapshot(ctx, db, content, time.Now()); err != nil {
		return "", err
	}
	return IndexPath(ph.Root), nil
}

// PruneCrashSnapshots keeps at most keepLast snapshots and deletes older ones.
func PruneCrashSnapshots(ctx context.Context, db *sql.DB, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := db.ExecContext(ctx, pruneCrashSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
