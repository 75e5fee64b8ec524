/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"goscreenwriter/internal/autosave"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// language=SQL
// dialect=PostgreSQL
const pgInsertSaveRecordSQL = `INSERT INTO save_records(document_id, title, content, major, minor, kind, description, saved_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// language=SQL
// dialect=PostgreSQL
const pgSelectLatestSaveRecordSQL = `SELECT document_id, title, content, major, minor, kind, COALESCE(description,''), saved_at
FROM save_records WHERE document_id = $1 ORDER BY major DESC, minor DESC LIMIT 1`

// PgStore persists save records directly in PostgreSQL, for setups where the
// editor talks to the shared database without the HTTP server in between.
// It satisfies the same persistence contract as the embedded index store.
type PgStore struct {
	db *sql.DB
}

// DSNFromEnv resolves the PostgreSQL DSN from GSW_PG_DSN or DATABASE_URL.
func DSNFromEnv() string {
	if v := os.Getenv("GSW_PG_DSN"); v != "" {
		return v
	}
	return os.Getenv("DATABASE_URL")
}

// OpenPgStore connects to PostgreSQL and ensures the schema exists.
func OpenPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PgStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PgStore) Close() error { return s.db.Close() }

// Save appends one version row.
func (s *PgStore) Save(ctx context.Context, rec autosave.SaveRecord) error {
	_, err := s.db.ExecContext(ctx, pgInsertSaveRecordSQL,
		rec.DocumentID, rec.Title, rec.Content, rec.Major, rec.Minor,
		rec.Kind, rec.Description, rec.SavedAt)
	if err != nil {
		return fmt.Errorf("insert save record %s: %w", rec.Version(), err)
	}
	return nil
}

// Load returns the highest-versioned record for the document.
func (s *PgStore) Load(ctx context.Context, documentID string) (autosave.SaveRecord, error) {
	var rec autosave.SaveRecord
	row := s.db.QueryRowContext(ctx, pgSelectLatestSaveRecordSQL, documentID)
	err := row.Scan(&rec.DocumentID, &rec.Title, &rec.Content, &rec.Major, &rec.Minor,
		&rec.Kind, &rec.Description, &rec.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return autosave.SaveRecord{}, autosave.ErrNotFound
	}
	if err != nil {
		return autosave.SaveRecord{}, fmt.Errorf("load save record: %w", err)
	}
	return rec, nil
}
