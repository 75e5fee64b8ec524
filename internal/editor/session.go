/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor owns the editing session: one document wired to the layout
// engine, the undo history, the autosave pipeline, and the autocomplete
// index. Every edit runs the same sequence: mutate the document, recompute
// pagination, push a history snapshot, then schedule an autosave.
package editor

import (
	"context"
	"log/slog"
	"sync"

	"goscreenwriter/internal/autocomplete"
	"goscreenwriter/internal/autosave"
	"goscreenwriter/internal/history"
	"goscreenwriter/internal/layout"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/screenplay"
)

// Session coordinates one open screenplay. All event methods are serialized
// on an internal mutex; collaborators are notified outside document
// mutation.
type Session struct {
	mu      sync.Mutex
	doc     *screenplay.Document
	engine  *layout.Engine
	history *history.Manager
	saver   *autosave.Saver
	suggest *autocomplete.Index
	log     *slog.Logger
}

// NewSession wires a document to its collaborators. Any collaborator except
// the engine may be nil, in which case its concern is skipped. The initial
// state is recomputed and recorded as the history baseline.
func NewSession(doc *screenplay.Document, engine *layout.Engine, hist *history.Manager, saver *autosave.Saver, idx *autocomplete.Index) *Session {
	if engine == nil {
		engine = layout.NewEngine(0, 0, nil)
	}
	s := &Session{
		doc:     doc,
		engine:  engine,
		history: hist,
		saver:   saver,
		suggest: idx,
		log:     applog.WithComponent("editor"),
	}
	s.mu.Lock()
	s.engine.Recompute(s.doc.Lines())
	if snap, err := s.snapshotLocked(); err == nil && s.history != nil {
		s.history.Push(snap)
	}
	s.learnAllLocked()
	s.mu.Unlock()
	return s
}

// Document returns the session's document. Callers must treat it as
// read-only; all mutation goes through session events.
func (s *Session) Document() *screenplay.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Pages returns the current page partition.
func (s *Session) Pages() []layout.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Pages()
}

// Summary returns the derived layout metadata for the current state.
func (s *Session) Summary() screenplay.LayoutSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

// Commit finalizes a line and opens the next one with the role the commit
// flow prescribes. Committed speaker and header text feeds the autocomplete
// vocabulary.
func (s *Session) Commit(id screenplay.LineID) (screenplay.LineID, screenplay.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.IndexOf(id)
	if i < 0 {
		return 0, screenplay.RoleAction, false
	}
	committed, _ := s.doc.LineAt(i)
	nid, role, ok := s.doc.Commit(id)
	if !ok {
		return 0, screenplay.RoleAction, false
	}
	s.learnLocked(committed.Role, committed.Text, i)
	s.afterMutationLocked()
	return nid, role, true
}

// Cycle reassigns a line's role to the next one in cycle order. The first
// line stays a header; cycling it reports the header role unchanged.
func (s *Session) Cycle(id screenplay.LineID, direction int) (screenplay.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.IndexOf(id)
	if i < 0 {
		return screenplay.RoleAction, false
	}
	ln, _ := s.doc.LineAt(i)
	next := screenplay.NextOnCycle(ln.Role, direction)
	if !s.doc.SetRole(id, next) {
		return ln.Role, true
	}
	s.afterMutationLocked()
	return next, true
}

// SetText replaces a line's text.
func (s *Session) SetText(id screenplay.LineID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.SetText(id, text) {
		return false
	}
	s.afterMutationLocked()
	return true
}

// InsertAfter inserts a new line after the identified one.
func (s *Session) InsertAfter(id screenplay.LineID, role screenplay.Role, text string) (screenplay.LineID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nid, ok := s.doc.InsertAfter(id, role, text)
	if !ok {
		return 0, false
	}
	s.afterMutationLocked()
	return nid, true
}

// Delete removes a line. The first line is cleared instead of removed; that
// still counts as a mutation.
func (s *Session) Delete(id screenplay.LineID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.doc.Delete(id)
	s.afterMutationLocked()
	return removed
}

// Merge folds a line into its predecessor.
func (s *Session) Merge(id screenplay.LineID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.Merge(id) {
		return false
	}
	s.afterMutationLocked()
	return true
}

// Undo restores the previous history snapshot. The restore does not create
// new history; pagination is recomputed and an autosave is scheduled for
// the restored state.
func (s *Session) Undo() bool { return s.replay(func() ([]byte, bool) { return s.history.Undo() }) }

// Redo restores the next history snapshot; symmetric to Undo.
func (s *Session) Redo() bool { return s.replay(func() ([]byte, bool) { return s.history.Redo() }) }

func (s *Session) replay(step func() ([]byte, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return false
	}
	snap, ok := step()
	if !ok {
		return false
	}
	doc, _, err := screenplay.Unmarshal(snap)
	if err != nil {
		s.log.Error("history snapshot unreadable", slog.Any("err", err))
		return false
	}
	s.doc = doc
	s.engine.Recompute(s.doc.Lines())
	if s.saver != nil {
		s.saver.Trigger(snap)
	}
	return true
}

// Suggest proposes a completion for the prefix under the line's role.
func (s *Session) Suggest(id screenplay.LineID, prefix string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suggest == nil {
		return "", false
	}
	i := s.doc.IndexOf(id)
	if i < 0 {
		return "", false
	}
	ln, _ := s.doc.LineAt(i)
	return s.suggest.Suggest(ln.Role, prefix, i)
}

// Flush forces any pending autosave through immediately.
func (s *Session) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Flush(ctx)
}

// CommitVersion snapshots the current state and persists it as a milestone.
func (s *Session) CommitVersion(ctx context.Context, description string) error {
	s.mu.Lock()
	snap, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if s.saver == nil {
		return nil
	}
	return s.saver.CommitVersion(ctx, snap, description)
}

// Snapshot serializes the current document with its layout summary.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close flushes the autosave pipeline and releases timers.
func (s *Session) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	err := s.saver.Flush(ctx)
	s.saver.Close()
	return err
}

// afterMutationLocked runs the fixed post-edit sequence: recompute the page
// partition, push the snapshot onto the history, schedule an autosave.
func (s *Session) afterMutationLocked() {
	s.engine.Recompute(s.doc.Lines())
	snap, err := s.snapshotLocked()
	if err != nil {
		s.log.Error("snapshot failed", slog.Any("err", err))
		return
	}
	if s.history != nil {
		s.history.Push(snap)
	}
	if s.saver != nil {
		s.saver.Trigger(snap)
	}
}

func (s *Session) summaryLocked() screenplay.LayoutSummary {
	return screenplay.LayoutSummary{
		PageCount: len(s.engine.Pages()),
		Chapters:  s.doc.Chapters(),
	}
}

func (s *Session) snapshotLocked() ([]byte, error) {
	return screenplay.Marshal(s.doc, s.summaryLocked())
}

func (s *Session) learnLocked(role screenplay.Role, text string, lineNo int) {
	if s.suggest == nil || text == "" {
		return
	}
	switch role {
	case screenplay.RoleSpeaker, screenplay.RoleHeader, screenplay.RoleDirections:
		s.suggest.Learn(role, text, lineNo)
	}
}

// learnAllLocked seeds the autocomplete vocabulary from an opened document.
func (s *Session) learnAllLocked() {
	if s.suggest == nil {
		return
	}
	for i, ln := range s.doc.Lines() {
		s.learnLocked(ln.Role, ln.Text, i)
	}
}
