/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"bufio"
	"regexp"
	"strings"
)

// ParseError reports a position-tagged problem found during import.
type ParseError struct {
	Line    int
	Message string
}

// Parse imports plain screenplay text into a Document.
// Supported conventions (minimal, Fountain-inspired):
//   - Scene headings: lines starting with "#", or with INT/EXT/EST/I/E
//     prefixes ("INT. KITCHEN - DAY").
//   - Chapter breaks: lines of three or more "=" with an optional title.
//   - Speakers: short upper-case lines (optionally ending in ":").
//   - Parentheticals: "(whispering)" directly after a speaker or dialog.
//   - Dialog: any line following a speaker or parenthetical.
//   - Continuations: lines indented by 2+ spaces append to the previous
//     dialog or action line.
//   - Everything else is action. Blank lines separate blocks.
func Parse(id, title, input string) (*Document, []ParseError) {
	var (
		lines []Line
		errs  []ParseError
	)

	reHeading := regexp.MustCompile(`(?i)^(INT|EXT|EST|I/E)[\s./]`)
	reHash := regexp.MustCompile(`^#+\s*(.*)$`)
	reChapter := regexp.MustCompile(`^={3,}\s*(.*)$`)
	reParen := regexp.MustCompile(`^\(.+\)$`)
	reSpeaker := regexp.MustCompile(`^[A-Z][A-Z0-9 .'\-]{0,39}:?$`)

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	lastRole := RoleAction
	haveLast := false

	add := func(role Role, text string) {
		lines = append(lines, Line{Role: role, Text: text})
		lastRole = role
		haveLast = true
	}

	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")

		// Continuation line (indented) appends to the previous block.
		if strings.HasPrefix(raw, "  ") && haveLast && len(lines) > 0 &&
			(lastRole == RoleDialog || lastRole == RoleAction) {
			if cont := strings.TrimSpace(raw); cont != "" {
				last := &lines[len(lines)-1]
				if last.Text != "" {
					last.Text += "\n"
				}
				last.Text += cont
			}
			continue
		}

		trim := strings.TrimSpace(raw)
		if trim == "" {
			haveLast = false
			continue
		}

		if m := reChapter.FindStringSubmatch(trim); m != nil {
			add(RoleChapterBreak, strings.TrimSpace(m[1]))
			continue
		}
		if m := reHash.FindStringSubmatch(trim); m != nil {
			add(RoleHeader, strings.TrimSpace(m[1]))
			continue
		}
		if reHeading.MatchString(trim) {
			add(RoleHeader, trim)
			continue
		}
		if reParen.MatchString(trim) && haveLast && (lastRole == RoleSpeaker || lastRole == RoleDialog) {
			add(RoleDirections, trim)
			continue
		}
		if haveLast && (lastRole == RoleSpeaker || lastRole == RoleDirections) {
			add(RoleDialog, trim)
			continue
		}
		if reSpeaker.MatchString(trim) {
			add(RoleSpeaker, strings.TrimSuffix(trim, ":"))
			continue
		}
		add(RoleAction, trim)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, ParseError{Line: lineNo, Message: err.Error()})
	}

	// The document invariant wants a header first; scripts that open with
	// something else get an empty heading prepended rather than a coerced
	// role.
	if len(lines) == 0 || lines[0].Role != RoleHeader {
		lines = append([]Line{{Role: RoleHeader}}, lines...)
	}

	d := &Document{id: id, title: title}
	d.restore(lines)
	return d, errs
}
