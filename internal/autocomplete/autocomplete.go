/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package autocomplete suggests completions for per-role term sets: a small
// static vocabulary plus terms learned from the user's own script.
package autocomplete

import (
	"strings"
	"sync"
	"time"

	"goscreenwriter/internal/screenplay"
)

// Term is a learned vocabulary entry with the document line it came from,
// used for adjacency tie-breaking.
type Term struct {
	Text   string
	LineNo int
}

// staticTerms is the fixed per-role vocabulary.
var staticTerms = map[screenplay.Role][]string{
	screenplay.RoleHeader: {
		"INT. ", "EXT. ", "INT./EXT. ", "EST. ",
	},
	screenplay.RoleDirections: {
		"(beat)", "(CONT'D)", "(V.O.)", "(O.S.)", "(whispering)",
	},
}

type cacheKey struct {
	role   screenplay.Role
	prefix string
}

type cacheEntry struct {
	text string
	ok   bool
}

// Index answers prefix lookups over per-role term sets with a small cache
// that is cleared on a fixed interval and on learned-term insertion.
type Index struct {
	mu      sync.Mutex
	learned map[screenplay.Role][]Term
	cache   map[cacheKey]cacheEntry
	ttl     time.Duration
	timer   *time.Timer
	closed  bool
}

// NewIndex creates an index whose cache clears every ttl. Non-positive ttl
// falls back to 30s.
func NewIndex(ttl time.Duration) *Index {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	idx := &Index{
		learned: make(map[screenplay.Role][]Term),
		cache:   make(map[cacheKey]cacheEntry),
		ttl:     ttl,
	}
	idx.timer = time.AfterFunc(ttl, idx.sweep)
	return idx
}

func (x *Index) sweep() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return
	}
	x.cache = make(map[cacheKey]cacheEntry)
	x.timer.Reset(x.ttl)
}

// Close stops the cache-clean timer.
func (x *Index) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	if x.timer != nil {
		x.timer.Stop()
	}
}

// Learn records a term the user accepted for a role, remembering the line
// it appeared on. Duplicates update the line number. Cached results for the
// role are invalidated.
func (x *Index) Learn(role screenplay.Role, term string, lineNo int) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	terms := x.learned[role]
	for i := range terms {
		if strings.EqualFold(terms[i].Text, term) {
			terms[i].LineNo = lineNo
			x.invalidateRoleLocked(role)
			return
		}
	}
	x.learned[role] = append(terms, Term{Text: term, LineNo: lineNo})
	x.invalidateRoleLocked(role)
}

func (x *Index) invalidateRoleLocked(role screenplay.Role) {
	for k := range x.cache {
		if k.role == role {
			delete(x.cache, k)
		}
	}
}

// Suggest returns the best completion for the prefix under the role, or
// false when nothing matches. Matching is case-insensitive; a term equal to
// the prefix is not suggested. Ties prefer terms learned on lines adjacent
// to nearLine, then document order.
func (x *Index) Suggest(role screenplay.Role, prefix string, nearLine int) (string, bool) {
	if strings.TrimSpace(prefix) == "" {
		return "", false
	}
	key := cacheKey{role: role, prefix: strings.ToUpper(prefix)}

	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.cache[key]; ok {
		return e.text, e.ok
	}

	best, found := x.pickLocked(role, prefix, nearLine)
	x.cache[key] = cacheEntry{text: best, ok: found}
	return best, found
}

func (x *Index) pickLocked(role screenplay.Role, prefix string, nearLine int) (string, bool) {
	up := strings.ToUpper(prefix)
	match := func(term string) bool {
		ut := strings.ToUpper(term)
		return strings.HasPrefix(ut, up) && ut != up
	}

	// Learned terms first; adjacency breaks ties among them.
	var best string
	bestDist := -1
	for _, t := range x.learned[role] {
		if !match(t.Text) {
			continue
		}
		dist := t.LineNo - nearLine
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = t.Text
			bestDist = dist
		}
	}
	if bestDist >= 0 {
		return best, true
	}
	for _, t := range staticTerms[role] {
		if match(t) {
			return t, true
		}
	}
	return "", false
}
