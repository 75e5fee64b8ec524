/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"log/slog"

	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/screenplay"
)

// Page is a derived, non-owned view over the document's line sequence:
// the half-open index range [Start, End) and the occupied line count of
// the range. Pages are contiguous and exhaustive.
type Page struct {
	Start     int
	End       int
	LineCount int
}

// Engine partitions a line sequence into capacity-bounded pages. A bounded
// overflow allowance keeps a speaker line and its immediately following
// dialog on the same page instead of splitting the pair.
type Engine struct {
	Capacity  int
	Allowance int

	hinter HeightHinter
	pages  []Page
	log    *slog.Logger
}

// NewEngine creates an engine. Non-positive capacity falls back to 54 and a
// negative allowance to 0; a nil hinter gets the default estimator.
func NewEngine(capacity, allowance int, hinter HeightHinter) *Engine {
	if capacity <= 0 {
		capacity = 54
	}
	if allowance < 0 {
		allowance = 0
	}
	if hinter == nil {
		hinter = NewEstimator()
	}
	return &Engine{
		Capacity:  capacity,
		Allowance: allowance,
		hinter:    hinter,
		log:       applog.WithComponent("layout"),
	}
}

// Occupied returns the total occupied line count of the sequence.
func (e *Engine) Occupied(lines []screenplay.Line) int {
	total := 0
	for i := range lines {
		total += e.hinter.OccupiedLines(lines[i])
	}
	return total
}

// ComputeBreaks walks the lines in order and produces the page partition.
// It is a pure function of the line sequence: calling it twice on unchanged
// input yields identical breaks.
func (e *Engine) ComputeBreaks(lines []screenplay.Line) []Page {
	if len(lines) == 0 {
		return nil
	}
	occ := make([]int, len(lines))
	for i := range lines {
		occ[i] = e.hinter.OccupiedLines(lines[i])
	}

	var pages []Page
	start, count, i := 0, 0, 0
	for i < len(lines) {
		n := occ[i]
		if count == 0 || count+n <= e.Capacity {
			// A single line taller than the capacity still occupies its
			// own page (count == 0 accepts it unconditionally).
			count += n
			i++
			continue
		}

		// Adding line i would exceed the capacity.
		if lines[i].Role == screenplay.RoleSpeaker && i+1 < len(lines) &&
			lines[i+1].Role == screenplay.RoleDialog &&
			count+n+occ[i+1] <= e.Capacity+e.Allowance {
			// The speaker and its dialog both fit within the allowance.
			count += n + occ[i+1]
			i += 2
			continue
		}
		if lines[i].Role == screenplay.RoleDialog && i > start &&
			lines[i-1].Role == screenplay.RoleSpeaker {
			if count+n <= e.Capacity+e.Allowance {
				count += n
				i++
				continue
			}
			if i-1 > start {
				// The pair does not fit even with the allowance; close the
				// page before the speaker so the pair moves together.
				pages = append(pages, Page{Start: start, End: i - 1, LineCount: count - occ[i-1]})
				start = i - 1
				count = occ[i-1]
				continue
			}
			// The speaker is alone on this page and the pair still
			// overflows the allowance; splitting is permitted.
		}

		pages = append(pages, Page{Start: start, End: i, LineCount: count})
		start = i
		count = 0
	}
	pages = append(pages, Page{Start: start, End: len(lines), LineCount: count})
	return pages
}

// Recompute applies ComputeBreaks and stores the result as the current
// partition, reusing page containers where possible and discarding unused
// trailing ones. Pages that still exceed capacity+allowance (a single
// oversized line) are kept and logged as a warning; rendering continues
// with the oversized page.
func (e *Engine) Recompute(lines []screenplay.Line) []Page {
	breaks := e.ComputeBreaks(lines)
	e.pages = e.pages[:0]
	for _, p := range breaks {
		if p.LineCount > e.Capacity+e.Allowance {
			e.log.Warn("page exceeds capacity",
				slog.Int("start", p.Start),
				slog.Int("lines", p.LineCount),
				slog.Int("capacity", e.Capacity),
				slog.Int("allowance", e.Allowance))
		}
		e.pages = append(e.pages, p)
	}
	return e.pages
}

// Pages returns the current partition from the last Recompute.
func (e *Engine) Pages() []Page { return e.pages }
