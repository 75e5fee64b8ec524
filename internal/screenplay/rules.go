/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

// Format rules: the commit transition table and the manual cycle order.
// Both lookups are total; unknown roles fall back to the documented
// defaults instead of failing.

var commitFlow = map[Role]Role{
	RoleHeader:       RoleAction,
	RoleAction:       RoleAction,
	RoleSpeaker:      RoleDialog,
	RoleDialog:       RoleSpeaker,
	RoleDirections:   RoleDialog,
	RoleChapterBreak: RoleHeader,
}

// cycleOrder is the circular order used for manual role cycling.
// RoleChapterBreak is reachable only programmatically, not via cycling.
var cycleOrder = [...]Role{RoleAction, RoleSpeaker, RoleDialog, RoleHeader, RoleDirections}

// NextOnCommit returns the role a newly committed line receives when the
// current line has the given role. An unknown role yields RoleHeader for an
// empty document and RoleAction otherwise.
func NextOnCommit(current Role, docEmpty bool) Role {
	if next, ok := commitFlow[current]; ok {
		return next
	}
	if docEmpty {
		return RoleHeader
	}
	return RoleAction
}

// NextOnCycle walks the cycle order from the current role. Any non-zero
// direction is reduced to its sign; an unrecognized current role resets to
// RoleAction.
func NextOnCycle(current Role, direction int) Role {
	idx := -1
	for i, r := range cycleOrder {
		if r == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return RoleAction
	}
	step := 1
	if direction < 0 {
		step = -1
	}
	n := len(cycleOrder)
	return cycleOrder[((idx+step)%n+n)%n]
}

// CycleLength returns the number of roles in the cycle order.
func CycleLength() int { return len(cycleOrder) }
