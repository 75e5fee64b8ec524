/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout derives page partitions from the document's line sequence.
// Heights come from deterministic per-line estimates rather than a rendering
// surface, so pagination is reproducible in tests and headless hosts.
package layout

import (
	"strings"
	"unicode/utf8"

	"goscreenwriter/internal/screenplay"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// HeightHinter reports how many page lines a script line occupies once
// wrapped. The result is never less than the line's explicit newline count
// plus one.
type HeightHinter interface {
	OccupiedLines(l screenplay.Line) int
}

// defaultColumns is the per-role wrap budget in monospace columns, matching
// standard screenplay margins on US Letter with a 10-pitch face.
var defaultColumns = map[screenplay.Role]int{
	screenplay.RoleHeader:       61,
	screenplay.RoleAction:       61,
	screenplay.RoleSpeaker:      38,
	screenplay.RoleDialog:       35,
	screenplay.RoleDirections:   29,
	screenplay.RoleChapterBreak: 61,
}

// Columns returns the wrap budget for a role in monospace columns.
func Columns(r screenplay.Role) int {
	if c, ok := defaultColumns[r]; ok {
		return c
	}
	return defaultColumns[screenplay.RoleAction]
}

// Estimator is the default HeightHinter: a character-wrap estimate using a
// fixed column budget per role.
type Estimator struct {
	columns map[screenplay.Role]int
}

// NewEstimator returns an estimator with the standard column budgets.
func NewEstimator() *Estimator {
	return &Estimator{columns: defaultColumns}
}

func (e *Estimator) colsFor(r screenplay.Role) int {
	if c, ok := e.columns[r]; ok && c > 0 {
		return c
	}
	return defaultColumns[screenplay.RoleAction]
}

// OccupiedLines sums the wrapped rows of every explicit line in the text.
// An empty segment still occupies one row, so the result is always at least
// newlines+1.
func (e *Estimator) OccupiedLines(l screenplay.Line) int {
	cols := e.colsFor(l.Role)
	total := 0
	for _, seg := range strings.Split(l.Text, "\n") {
		n := utf8.RuneCountInString(seg)
		rows := (n + cols - 1) / cols
		if rows < 1 {
			rows = 1
		}
		total += rows
	}
	return total
}

// MeasuredHinter wraps by measured pixel width instead of rune count, using
// a deterministic bitmap face. It exists for hosts that want measurement-
// derived hints; Estimator remains the default policy.
type MeasuredHinter struct {
	face font.Face
}

// NewMeasuredHinter returns a hinter backed by the fixed 7x13 face.
func NewMeasuredHinter() *MeasuredHinter {
	return &MeasuredHinter{face: basicfont.Face7x13}
}

func (m *MeasuredHinter) OccupiedLines(l screenplay.Line) int {
	d := &font.Drawer{Face: m.face}
	// 7px advance per cell for Face7x13.
	maxWidth := Columns(l.Role) * 7
	total := 0
	for _, seg := range strings.Split(l.Text, "\n") {
		w := int(d.MeasureString(seg) >> 6)
		rows := (w + maxWidth - 1) / maxWidth
		if rows < 1 {
			rows = 1
		}
		total += rows
	}
	return total
}
