/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"encoding/json"
	"fmt"
)

// The serialized document format: a flat ordered sequence of role-tagged
// text segments plus a layout summary. Round-tripping recovers the exact
// role sequence and text.

// Segment is one line on the wire, tagged with the role's wire tag.
type Segment struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// LayoutSummary is the derived layout metadata stored alongside content.
// Pages themselves are never persisted; they are recomputed on load.
type LayoutSummary struct {
	PageCount int      `json:"pageCount"`
	Chapters  []string `json:"chapters,omitempty"`
}

// SerializedDocument is the persisted shape of a screenplay document.
type SerializedDocument struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Segments []Segment     `json:"segments"`
	Layout   LayoutSummary `json:"layout"`
}

// Encode converts a document plus layout summary into its serialized form.
func Encode(d *Document, summary LayoutSummary) SerializedDocument {
	sd := SerializedDocument{
		ID:       d.ID(),
		Title:    d.Title(),
		Segments: make([]Segment, 0, d.Len()),
		Layout:   summary,
	}
	for _, ln := range d.Lines() {
		sd.Segments = append(sd.Segments, Segment{Role: ln.Role.Tag(), Text: ln.Text})
	}
	return sd
}

// Decode rebuilds a document from its serialized form. Unknown role tags
// are an error; an empty segment list yields the minimal one-header
// document.
func Decode(sd SerializedDocument) (*Document, error) {
	lines := make([]Line, 0, len(sd.Segments))
	for i, seg := range sd.Segments {
		role, ok := RoleFromTag(seg.Role)
		if !ok {
			return nil, fmt.Errorf("segment %d: unknown role tag %q", i, seg.Role)
		}
		lines = append(lines, Line{Role: role, Text: seg.Text})
	}
	d := &Document{id: sd.ID, title: sd.Title}
	d.restore(lines)
	return d, nil
}

// Marshal serializes a document with its layout summary to JSON bytes.
func Marshal(d *Document, summary LayoutSummary) ([]byte, error) {
	return json.Marshal(Encode(d, summary))
}

// Unmarshal parses JSON bytes back into a document and layout summary.
func Unmarshal(data []byte) (*Document, LayoutSummary, error) {
	var sd SerializedDocument
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, LayoutSummary{}, fmt.Errorf("parse document: %w", err)
	}
	d, err := Decode(sd)
	if err != nil {
		return nil, LayoutSummary{}, err
	}
	return d, sd.Layout, nil
}
