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
	"errors"
	"fmt"
	"time"

	"goscreenwriter/internal/autosave"
)

// language=SQL
// dialect=SQLite
const insertSaveRecordSQL = `INSERT INTO save_records(document_id, title, content, major, minor, kind, description, saved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSaveRecordSQL = `SELECT document_id, title, content, major, minor, kind, description, saved_at
FROM save_records WHERE document_id = ? ORDER BY major DESC, minor DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSaveRecordsSQL = `SELECT document_id, title, content, major, minor, kind, description, saved_at
FROM save_records WHERE document_id = ? ORDER BY major DESC, minor DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneSaveRecordsSQL = `DELETE FROM save_records WHERE document_id = ? AND kind = ? AND id NOT IN (
	SELECT id FROM save_records WHERE document_id = ? ORDER BY major DESC, minor DESC LIMIT ?
)`

// IndexStore is the version history backed by the embedded index database.
// It satisfies the autosave persistence contract.
type IndexStore struct {
	db *sql.DB
}

// NewIndexStore wraps an open index database.
func NewIndexStore(db *sql.DB) *IndexStore { return &IndexStore{db: db} }

// Save appends one version row.
func (s *IndexStore) Save(ctx context.Context, rec autosave.SaveRecord) error {
	_, err := s.db.ExecContext(ctx, insertSaveRecordSQL,
		rec.DocumentID, rec.Title, rec.Content, rec.Major, rec.Minor,
		rec.Kind, rec.Description, rec.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert save record %s: %w", rec.Version(), err)
	}
	return nil
}

// Load returns the highest-versioned record for the document.
func (s *IndexStore) Load(ctx context.Context, documentID string) (autosave.SaveRecord, error) {
	row := s.db.QueryRowContext(ctx, selectLatestSaveRecordSQL, documentID)
	rec, err := scanSaveRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return autosave.SaveRecord{}, autosave.ErrNotFound
	}
	if err != nil {
		return autosave.SaveRecord{}, fmt.Errorf("load save record: %w", err)
	}
	return rec, nil
}

// List returns up to limit most recent versions of the document, newest
// first.
func (s *IndexStore) List(ctx context.Context, documentID string, limit int) ([]autosave.SaveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listSaveRecordsSQL, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list save records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []autosave.SaveRecord
	for rows.Next() {
		rec, err := scanSaveRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune deletes autosave rows beyond the keepLast most recent versions.
// Milestone commits are never pruned.
func (s *IndexStore) Prune(ctx context.Context, documentID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, pruneSaveRecordsSQL, documentID, autosave.KindAutosave, documentID, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune save records: %w", err)
	}
	return res.RowsAffected()
}

func scanSaveRecord(scan func(dest ...any) error) (autosave.SaveRecord, error) {
	var rec autosave.SaveRecord
	var desc sql.NullString
	var savedAt string
	if err := scan(&rec.DocumentID, &rec.Title, &rec.Content, &rec.Major, &rec.Minor, &rec.Kind, &desc, &savedAt); err != nil {
		return autosave.SaveRecord{}, err
	}
	rec.Description = desc.String
	if ts, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
		rec.SavedAt = ts
	}
	return rec, nil
}
