/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import "strings"

// Document owns the ordered line sequence of one screenplay. It is never
// empty: the first line always carries RoleHeader and is cleared rather
// than deleted. The document knows nothing about pages; pagination is a
// derived view computed elsewhere.
//
// A Document has exactly one logical owner (the editing session); all other
// components receive copies via Lines().
type Document struct {
	id     string
	title  string
	lines  []Line
	nextID LineID
}

// NewDocument creates a document with a single empty header line.
func NewDocument(id, title string) *Document {
	d := &Document{id: id, title: title, nextID: 1}
	d.lines = []Line{{ID: d.takeID(), Role: RoleHeader}}
	return d
}

func (d *Document) takeID() LineID {
	id := d.nextID
	d.nextID++
	return id
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the screenplay title.
func (d *Document) Title() string { return d.title }

// SetTitle replaces the screenplay title.
func (d *Document) SetTitle(title string) { d.title = title }

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Lines returns a copy of the line sequence for read-only consumers.
func (d *Document) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// LineAt returns the line at index i.
func (d *Document) LineAt(i int) (Line, bool) {
	if i < 0 || i >= len(d.lines) {
		return Line{}, false
	}
	return d.lines[i], true
}

// IndexOf returns the index of the line with the given id, or -1.
func (d *Document) IndexOf(id LineID) int {
	for i := range d.lines {
		if d.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// SetText replaces the text of the identified line.
func (d *Document) SetText(id LineID, text string) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	d.lines[i].Text = text
	return true
}

// SetRole assigns a new role to the identified line. The first line is
// structurally protected: reassigning it away from RoleHeader is a no-op.
// Invalid roles are rejected.
func (d *Document) SetRole(id LineID, role Role) bool {
	if !role.Valid() {
		return false
	}
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	if i == 0 && role != RoleHeader {
		return false
	}
	d.lines[i].Role = role
	return true
}

// InsertAfter inserts a new line with the given role and text directly
// after the identified line and returns the new line's id.
func (d *Document) InsertAfter(id LineID, role Role, text string) (LineID, bool) {
	if !role.Valid() {
		return 0, false
	}
	i := d.IndexOf(id)
	if i < 0 {
		return 0, false
	}
	nl := Line{ID: d.takeID(), Role: role, Text: text}
	d.lines = append(d.lines, Line{})
	copy(d.lines[i+2:], d.lines[i+1:])
	d.lines[i+1] = nl
	return nl.ID, true
}

// Commit finalizes the identified line and creates the next one after it,
// with the role given by the commit transition table. Returns the new
// line's id and role.
func (d *Document) Commit(id LineID) (LineID, Role, bool) {
	i := d.IndexOf(id)
	if i < 0 {
		return 0, RoleAction, false
	}
	next := NextOnCommit(d.lines[i].Role, false)
	nid, _ := d.InsertAfter(id, next, "")
	return nid, next, true
}

// Delete removes the identified line. The first line is never removed; it
// is cleared instead and the call reports false.
func (d *Document) Delete(id LineID) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	if i == 0 {
		d.lines[0].Text = ""
		return false
	}
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
	return true
}

// Merge appends the identified line's text onto its predecessor and removes
// it. Merging the first line is a no-op.
func (d *Document) Merge(id LineID) bool {
	i := d.IndexOf(id)
	if i <= 0 {
		return false
	}
	prev := &d.lines[i-1]
	if d.lines[i].Text != "" {
		if prev.Text != "" {
			prev.Text += "\n"
		}
		prev.Text += d.lines[i].Text
	}
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
	return true
}

// Chapters lists the titles of chapter-break lines in document order.
func (d *Document) Chapters() []string {
	var out []string
	for i := range d.lines {
		if d.lines[i].Role == RoleChapterBreak {
			out = append(out, strings.TrimSpace(d.lines[i].Text))
		}
	}
	return out
}

// restore replaces the line sequence wholesale; used by the codec when
// rebuilding a document from a snapshot. The sequence is normalized so the
// first line is always a header.
func (d *Document) restore(lines []Line) {
	if len(lines) == 0 {
		lines = []Line{{Role: RoleHeader}}
	}
	lines[0].Role = RoleHeader
	maxID := LineID(0)
	for i := range lines {
		if lines[i].ID == 0 || lines[i].ID <= maxID {
			lines[i].ID = maxID + 1
		}
		if lines[i].ID > maxID {
			maxID = lines[i].ID
		}
	}
	d.lines = lines
	d.nextID = maxID + 1
}
