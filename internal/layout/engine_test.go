/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"reflect"
	"strconv"
	"testing"

	"goscreenwriter/internal/screenplay"
)

// countHinter reads the occupied line count from the line text, so tests
// can spell out heights directly.
type countHinter struct{}

func (countHinter) OccupiedLines(l screenplay.Line) int {
	if n, err := strconv.Atoi(l.Text); err == nil && n > 0 {
		return n
	}
	return 1
}

func mkLine(role screenplay.Role, occ int) screenplay.Line {
	return screenplay.Line{Role: role, Text: strconv.Itoa(occ)}
}

func repeat(role screenplay.Role, occ, n int) []screenplay.Line {
	out := make([]screenplay.Line, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mkLine(role, occ))
	}
	return out
}

func checkPartition(t *testing.T, e *Engine, lines []screenplay.Line, pages []Page) {
	t.Helper()
	if len(lines) == 0 {
		if len(pages) != 0 {
			t.Fatalf("pages for empty input: %v", pages)
		}
		return
	}
	// Contiguous and exhaustive.
	next := 0
	total := 0
	for i, p := range pages {
		if p.Start != next {
			t.Fatalf("page %d starts at %d, want %d", i, p.Start, next)
		}
		if p.End <= p.Start {
			t.Fatalf("page %d empty: %+v", i, p)
		}
		next = p.End
		total += p.LineCount
	}
	if next != len(lines) {
		t.Fatalf("pages end at %d, want %d", next, len(lines))
	}
	if occ := e.Occupied(lines); total != occ {
		t.Fatalf("sum of page line counts %d != total occupied %d", total, occ)
	}
}

func TestSpeakerDialogPairKeptWithinAllowance(t *testing.T) {
	// Capacity 54, allowance 2: 53 filled lines + speaker(1) + dialog(2)
	// stay together (53+3=56 <= 56) rather than split.
	e := NewEngine(54, 2, countHinter{})
	lines := repeat(screenplay.RoleAction, 1, 53)
	lines = append(lines, mkLine(screenplay.RoleSpeaker, 1), mkLine(screenplay.RoleDialog, 2))
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	if len(pages) != 1 {
		t.Fatalf("expected a single page, got %v", pages)
	}
	if pages[0].LineCount != 56 {
		t.Fatalf("page line count %d, want 56", pages[0].LineCount)
	}
}

func TestPlainOverflowBreaksPage(t *testing.T) {
	e := NewEngine(54, 2, countHinter{})
	lines := repeat(screenplay.RoleAction, 1, 60)
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %v", pages)
	}
	if pages[0].LineCount != 54 || pages[1].LineCount != 6 {
		t.Fatalf("unexpected split: %v", pages)
	}
}

func TestPairMovedTogetherWhenAllowanceExceeded(t *testing.T) {
	// Page nearly full; speaker fits but its dialog exceeds even the
	// allowance. Both move to the next page; the speaker is never the last
	// line of a page ahead of its dialog.
	e := NewEngine(10, 1, countHinter{})
	lines := []screenplay.Line{
		mkLine(screenplay.RoleAction, 9),
		mkLine(screenplay.RoleSpeaker, 1),
		mkLine(screenplay.RoleDialog, 3),
	}
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %v", pages)
	}
	if pages[0].End != 1 {
		t.Fatalf("first page should hold only the action line: %v", pages)
	}
	if pages[1].Start != 1 || pages[1].End != 3 {
		t.Fatalf("speaker/dialog pair split: %v", pages)
	}
}

func TestOverflowingSpeakerTakesDialogWithinAllowance(t *testing.T) {
	e := NewEngine(10, 2, countHinter{})
	lines := []screenplay.Line{
		mkLine(screenplay.RoleAction, 10),
		mkLine(screenplay.RoleSpeaker, 1),
		mkLine(screenplay.RoleDialog, 1),
	}
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	if len(pages) != 1 {
		t.Fatalf("expected the pair to ride the allowance: %v", pages)
	}
	if pages[0].LineCount != 12 {
		t.Fatalf("line count %d, want 12", pages[0].LineCount)
	}
}

func TestLoneSpeakerPageMaySplitWhenPairOverflowsAllowance(t *testing.T) {
	// The pair alone exceeds capacity+allowance; the split is permitted.
	e := NewEngine(10, 1, countHinter{})
	lines := []screenplay.Line{
		mkLine(screenplay.RoleSpeaker, 4),
		mkLine(screenplay.RoleDialog, 9),
	}
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %v", pages)
	}
}

func TestSingleOversizedLineOccupiesOwnPage(t *testing.T) {
	e := NewEngine(10, 2, countHinter{})
	lines := []screenplay.Line{
		mkLine(screenplay.RoleAction, 25),
		mkLine(screenplay.RoleAction, 1),
	}
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %v", pages)
	}
	if pages[0].LineCount != 25 {
		t.Fatalf("oversized line not isolated: %v", pages)
	}
}

func TestComputeBreaksIdempotent(t *testing.T) {
	e := NewEngine(12, 2, countHinter{})
	var lines []screenplay.Line
	pattern := []struct {
		role screenplay.Role
		occ  int
	}{
		{screenplay.RoleHeader, 1}, {screenplay.RoleAction, 3},
		{screenplay.RoleSpeaker, 1}, {screenplay.RoleDialog, 4},
		{screenplay.RoleAction, 2}, {screenplay.RoleSpeaker, 1},
		{screenplay.RoleDialog, 2}, {screenplay.RoleChapterBreak, 1},
	}
	for i := 0; i < 6; i++ {
		for _, p := range pattern {
			lines = append(lines, mkLine(p.role, p.occ))
		}
	}
	a := e.ComputeBreaks(lines)
	b := e.ComputeBreaks(lines)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("breaks differ across identical runs:\n%v\n%v", a, b)
	}
	checkPartition(t, e, lines, a)
}

func TestSpeakerNeverLastBeforeDialog(t *testing.T) {
	e := NewEngine(12, 2, countHinter{})
	var lines []screenplay.Line
	for i := 0; i < 40; i++ {
		lines = append(lines, mkLine(screenplay.RoleAction, 1+i%3))
		if i%4 == 0 {
			lines = append(lines,
				mkLine(screenplay.RoleSpeaker, 1),
				mkLine(screenplay.RoleDialog, 1+i%5))
		}
	}
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	h := countHinter{}
	for _, p := range pages {
		last := p.End - 1
		if last+1 >= len(lines) {
			continue
		}
		if lines[last].Role == screenplay.RoleSpeaker && lines[last+1].Role == screenplay.RoleDialog {
			pair := h.OccupiedLines(lines[last]) + h.OccupiedLines(lines[last+1])
			if pair <= e.Capacity+e.Allowance {
				t.Fatalf("speaker split from dialog at index %d (pages %v)", last, pages)
			}
		}
	}
}

func TestNoPageExceedsCapacityPlusAllowance(t *testing.T) {
	e := NewEngine(12, 2, countHinter{})
	var lines []screenplay.Line
	for i := 0; i < 30; i++ {
		lines = append(lines, mkLine(screenplay.RoleAction, 1+i%4))
		if i%5 == 0 {
			lines = append(lines,
				mkLine(screenplay.RoleSpeaker, 1),
				mkLine(screenplay.RoleDialog, 2))
		}
	}
	pages := e.ComputeBreaks(lines)
	checkPartition(t, e, lines, pages)
	for _, p := range pages {
		if p.LineCount > e.Capacity+e.Allowance {
			t.Fatalf("page exceeds cap+allowance: %+v", p)
		}
	}
}

func TestRecomputeStoresPartition(t *testing.T) {
	e := NewEngine(10, 2, countHinter{})
	lines := repeat(screenplay.RoleAction, 1, 15)
	got := e.Recompute(lines)
	if !reflect.DeepEqual(got, e.Pages()) {
		t.Fatalf("Pages() does not match Recompute result")
	}
	// Shrinking input discards trailing page containers.
	got = e.Recompute(lines[:5])
	if len(got) != 1 {
		t.Fatalf("expected 1 page after shrink, got %v", got)
	}
}

func TestEmptyInput(t *testing.T) {
	e := NewEngine(10, 2, countHinter{})
	if pages := e.ComputeBreaks(nil); pages != nil {
		t.Fatalf("expected nil pages, got %v", pages)
	}
}
