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
	"fmt"

	"goscreenwriter/internal/autocomplete"
	"goscreenwriter/internal/screenplay"
)

// language=SQL
// dialect=SQLite
const upsertLearnedTermSQL = `INSERT INTO learned_terms(role, term, line_no) VALUES (?, ?, ?)
ON CONFLICT(role, term) DO UPDATE SET line_no = excluded.line_no`

// language=SQL
// dialect=SQLite
const listLearnedTermsSQL = `SELECT role, term, line_no FROM learned_terms ORDER BY role, line_no`

// SaveLearnedTerm persists one learned autocomplete term for a role.
func SaveLearnedTerm(ctx context.Context, db *sql.DB, role screenplay.Role, term string, lineNo int) error {
	if _, err := db.ExecContext(ctx, upsertLearnedTermSQL, role.Tag(), term, lineNo); err != nil {
		return fmt.Errorf("save learned term: %w", err)
	}
	return nil
}

// LoadLearnedTerms replays all persisted terms into the index. Rows with a
// role tag the current build does not know are skipped.
func LoadLearnedTerms(ctx context.Context, db *sql.DB, idx *autocomplete.Index) error {
	rows, err := db.QueryContext(ctx, listLearnedTermsSQL)
	if err != nil {
		return fmt.Errorf("list learned terms: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var tag, term string
		var lineNo int
		if err := rows.Scan(&tag, &term, &lineNo); err != nil {
			return err
		}
		role, ok := screenplay.RoleFromTag(tag)
		if !ok {
			continue
		}
		idx.Learn(role, term, lineNo)
	}
	return rows.Err()
}
