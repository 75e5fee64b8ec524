/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package screenplay defines the core document model: lines with semantic
// roles, the format rules that drive role transitions, the serialized
// document format, and a plain-text import parser.
package screenplay

// Role is the semantic category of a script line. It determines formatting,
// flow behavior on commit, and pagination classification.
type Role int

const (
	RoleHeader Role = iota // scene heading
	RoleAction
	RoleSpeaker
	RoleDialog
	RoleDirections // parenthetical direction
	RoleChapterBreak
)

var roleTags = map[Role]string{
	RoleHeader:       "header",
	RoleAction:       "action",
	RoleSpeaker:      "speaker",
	RoleDialog:       "dialog",
	RoleDirections:   "directions",
	RoleChapterBreak: "chapter-break",
}

var tagRoles = map[string]Role{}

func init() {
	for r, t := range roleTags {
		tagRoles[t] = r
	}
}

// Tag returns the wire tag for the role ("header", "action", ...).
func (r Role) Tag() string {
	if t, ok := roleTags[r]; ok {
		return t
	}
	return "action"
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := roleTags[r]
	return ok
}

func (r Role) String() string { return r.Tag() }

// RoleFromTag resolves a wire tag back to a Role.
func RoleFromTag(tag string) (Role, bool) {
	r, ok := tagRoles[tag]
	return r, ok
}

// LineID is an opaque per-document line identifier. IDs are never reused
// within a document.
type LineID int64

// Line is a single script line: an id, a role, and the raw text. Text may
// contain embedded newlines from merges.
type Line struct {
	ID   LineID `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`
}
