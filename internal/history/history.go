/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history provides bounded undo/redo over full document snapshots.
// Snapshot blobs are opaque to the manager; callers serialize the document
// (content plus layout summary) before pushing.
package history

import (
	"bytes"
	"sync"
)

// State is the observable history status delivered to subscribers after
// every push/undo/redo.
type State struct {
	CanUndo bool
	CanRedo bool
	Current []byte
}

// Subscriber receives state notifications. Subscribers must not call back
// into the manager's mutating methods; pushes made while a notification is
// being delivered for undo/redo are suppressed by the replay guard.
type Subscriber func(State)

// Manager keeps bounded undo/redo stacks of snapshots. It is safe for
// concurrent use, though the editing model is single-threaded.
type Manager struct {
	mu         sync.Mutex
	current    []byte
	undo       [][]byte
	redo       [][]byte
	max        int
	processing bool
	subs       []Subscriber
}

// NewManager creates a manager capped at max undo entries. Non-positive max
// falls back to 100.
func NewManager(max int) *Manager {
	if max <= 0 {
		max = 100
	}
	return &Manager{max: max}
}

// Subscribe registers a state listener.
func (m *Manager) Subscribe(s Subscriber) {
	m.mu.Lock()
	m.subs = append(m.subs, s)
	m.mu.Unlock()
}

// Push records a new snapshot. It is a no-op when the snapshot equals the
// current one (content equality) or while an undo/redo is replaying. The
// previous current snapshot moves onto the undo stack, the redo stack is
// cleared, and the oldest undo entries drop off past the cap.
func (m *Manager) Push(snapshot []byte) {
	m.mu.Lock()
	if m.processing || bytes.Equal(snapshot, m.current) {
		m.mu.Unlock()
		return
	}
	if m.current != nil {
		m.undo = append(m.undo, m.current)
		if len(m.undo) > m.max {
			// FIFO eviction of the oldest entry, not an error.
			m.undo = append(m.undo[:0], m.undo[len(m.undo)-m.max:]...)
		}
	}
	m.current = append([]byte(nil), snapshot...)
	m.redo = m.redo[:0]
	st := m.stateLocked()
	subs := append([]Subscriber(nil), m.subs...)
	m.mu.Unlock()
	notify(subs, st)
}

// Undo steps back one snapshot and returns it, or nil/false when the undo
// stack is empty. The replay guard is held across the notification.
func (m *Manager) Undo() ([]byte, bool) {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return nil, false
	}
	m.processing = true
	m.redo = append(m.redo, m.current)
	m.current = m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	snap := m.current
	st := m.stateLocked()
	subs := append([]Subscriber(nil), m.subs...)
	m.mu.Unlock()
	notify(subs, st)
	m.mu.Lock()
	m.processing = false
	m.mu.Unlock()
	return append([]byte(nil), snap...), true
}

// Redo steps forward one snapshot; symmetric to Undo.
func (m *Manager) Redo() ([]byte, bool) {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return nil, false
	}
	m.processing = true
	m.undo = append(m.undo, m.current)
	m.current = m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	snap := m.current
	st := m.stateLocked()
	subs := append([]Subscriber(nil), m.subs...)
	m.mu.Unlock()
	notify(subs, st)
	m.mu.Lock()
	m.processing = false
	m.mu.Unlock()
	return append([]byte(nil), snap...), true
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Current returns the current snapshot, or nil when nothing was pushed yet.
func (m *Manager) Current() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return append([]byte(nil), m.current...)
}

// Depth returns the undo and redo stack sizes for diagnostics.
func (m *Manager) Depth() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

func (m *Manager) stateLocked() State {
	return State{
		CanUndo: len(m.undo) > 0,
		CanRedo: len(m.redo) > 0,
		Current: append([]byte(nil), m.current...),
	}
}

func notify(subs []Subscriber, st State) {
	for _, s := range subs {
		s(st)
	}
}
