/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package autocomplete

import (
	"testing"
	"time"

	"goscreenwriter/internal/screenplay"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex(time.Hour)
	t.Cleanup(idx.Close)
	return idx
}

func TestStaticVocabulary(t *testing.T) {
	idx := newTestIndex(t)
	got, ok := idx.Suggest(screenplay.RoleHeader, "IN", 0)
	if !ok || got != "INT. " {
		t.Fatalf("header suggest: %q ok=%v, want INT.", got, ok)
	}
	got, ok = idx.Suggest(screenplay.RoleDirections, "(v", 0)
	if !ok || got != "(V.O.)" {
		t.Fatalf("directions suggest: %q ok=%v", got, ok)
	}
}

func TestExactMatchNotSuggested(t *testing.T) {
	idx := newTestIndex(t)
	idx.Learn(screenplay.RoleSpeaker, "MARLOW", 3)
	if got, ok := idx.Suggest(screenplay.RoleSpeaker, "marlow", 0); ok {
		t.Fatalf("exact match suggested: %q", got)
	}
	// A strict prefix of the learned term still completes.
	if got, ok := idx.Suggest(screenplay.RoleSpeaker, "MARL", 0); !ok || got != "MARLOW" {
		t.Fatalf("prefix suggest: %q ok=%v", got, ok)
	}
}

func TestLearnedTermsBeatStatic(t *testing.T) {
	idx := newTestIndex(t)
	idx.Learn(screenplay.RoleHeader, "INT. LIGHTHOUSE - NIGHT", 12)
	got, ok := idx.Suggest(screenplay.RoleHeader, "INT", 10)
	if !ok || got != "INT. LIGHTHOUSE - NIGHT" {
		t.Fatalf("learned term not preferred: %q ok=%v", got, ok)
	}
}

func TestAdjacencyBreaksTies(t *testing.T) {
	idx := newTestIndex(t)
	idx.Learn(screenplay.RoleSpeaker, "MARLOW", 5)
	idx.Learn(screenplay.RoleSpeaker, "MARGOT", 80)

	if got, _ := idx.Suggest(screenplay.RoleSpeaker, "MAR", 7); got != "MARLOW" {
		t.Fatalf("near line 7: %q, want MARLOW", got)
	}
	if got, _ := idx.Suggest(screenplay.RoleSpeaker, "MAR", 78); got != "MARGOT" {
		t.Fatalf("near line 78: %q, want MARGOT", got)
	}
}

func TestDocumentOrderBreaksRemainingTies(t *testing.T) {
	idx := newTestIndex(t)
	// Same distance from line 10; the one learned first wins.
	idx.Learn(screenplay.RoleSpeaker, "ANNA", 8)
	idx.Learn(screenplay.RoleSpeaker, "ANDREI", 12)
	if got, _ := idx.Suggest(screenplay.RoleSpeaker, "AN", 10); got != "ANNA" {
		t.Fatalf("equidistant tie: %q, want ANNA", got)
	}
}

func TestRolesAreIsolated(t *testing.T) {
	idx := newTestIndex(t)
	idx.Learn(screenplay.RoleSpeaker, "MARLOW", 3)
	if got, ok := idx.Suggest(screenplay.RoleDialog, "MAR", 0); ok {
		t.Fatalf("speaker term leaked into dialog: %q", got)
	}
}

func TestEmptyPrefixNoSuggestion(t *testing.T) {
	idx := newTestIndex(t)
	idx.Learn(screenplay.RoleSpeaker, "MARLOW", 3)
	if got, ok := idx.Suggest(screenplay.RoleSpeaker, "  ", 0); ok {
		t.Fatalf("blank prefix suggested %q", got)
	}
}

func TestLearnInvalidatesCachedMiss(t *testing.T) {
	idx := newTestIndex(t)
	if _, ok := idx.Suggest(screenplay.RoleSpeaker, "MAR", 0); ok {
		t.Fatalf("unexpected hit on empty index")
	}
	// The miss is now cached; learning must clear it.
	idx.Learn(screenplay.RoleSpeaker, "MARLOW", 3)
	if got, ok := idx.Suggest(screenplay.RoleSpeaker, "MAR", 0); !ok || got != "MARLOW" {
		t.Fatalf("cache served stale miss: %q ok=%v", got, ok)
	}
}

func TestTTLSweepClearsCache(t *testing.T) {
	idx := NewIndex(15 * time.Millisecond)
	defer idx.Close()
	idx.Suggest(screenplay.RoleHeader, "IN", 0)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		idx.mu.Lock()
		n := len(idx.cache)
		idx.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache never cleared by sweep")
}

func TestLearnUpdatesLineNumber(t *testing.T) {
	idx := newTestIndex(t)
	idx.Learn(screenplay.RoleSpeaker, "MARLOW", 5)
	idx.Learn(screenplay.RoleSpeaker, "MARGOT", 6)
	// Re-learning MARLOW far away flips the adjacency winner.
	idx.Learn(screenplay.RoleSpeaker, "marlow", 100)
	if got, _ := idx.Suggest(screenplay.RoleSpeaker, "MAR", 7); got != "MARGOT" {
		t.Fatalf("line update ignored: %q, want MARGOT", got)
	}
}
