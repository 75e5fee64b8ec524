/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import "testing"

const sampleScript = `INT. STATION - NIGHT

Rain hammers the platform.

MARA:
(quietly)
We missed it.

JONAS
No. It missed us.

===  Part Two

EXT. FIELD - DAWN
`

func rolesOf(d *Document) []Role {
	var out []Role
	for _, ln := range d.Lines() {
		out = append(out, ln.Role)
	}
	return out
}

func TestParseBasicScript(t *testing.T) {
	d, errs := Parse("doc-1", "The Long Night", sampleScript)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	want := []Role{
		RoleHeader, RoleAction,
		RoleSpeaker, RoleDirections, RoleDialog,
		RoleSpeaker, RoleDialog,
		RoleChapterBreak, RoleHeader,
	}
	got := rolesOf(d)
	if len(got) != len(want) {
		t.Fatalf("got %d lines (%v), want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d role %v, want %v (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestParseSpeakerColonStripped(t *testing.T) {
	d, _ := Parse("d", "t", "INT. A\n\nMARA:\nhello")
	for _, ln := range d.Lines() {
		if ln.Role == RoleSpeaker && ln.Text != "MARA" {
			t.Fatalf("speaker text %q", ln.Text)
		}
	}
}

func TestParseChapterBreakTitle(t *testing.T) {
	d, _ := Parse("d", "t", "INT. A\n\n=== Act II")
	lines := d.Lines()
	last := lines[len(lines)-1]
	if last.Role != RoleChapterBreak || last.Text != "Act II" {
		t.Fatalf("chapter line %+v", last)
	}
}

func TestParseContinuationAppends(t *testing.T) {
	d, _ := Parse("d", "t", "INT. A\n\nMARA\nfirst part\n  second part")
	lines := d.Lines()
	last := lines[len(lines)-1]
	if last.Role != RoleDialog || last.Text != "first part\nsecond part" {
		t.Fatalf("continuation line %+v", last)
	}
}

func TestParsePrependsHeaderWhenMissing(t *testing.T) {
	d, _ := Parse("d", "t", "He runs.")
	first, _ := d.LineAt(0)
	if first.Role != RoleHeader || first.Text != "" {
		t.Fatalf("expected empty header prefix, got %+v", first)
	}
	second, _ := d.LineAt(1)
	if second.Role != RoleAction || second.Text != "He runs." {
		t.Fatalf("action line %+v", second)
	}
}

func TestParseEmptyInput(t *testing.T) {
	d, errs := Parse("d", "t", "")
	if len(errs) != 0 {
		t.Fatalf("errors on empty input: %v", errs)
	}
	if d.Len() != 1 {
		t.Fatalf("len=%d", d.Len())
	}
}
