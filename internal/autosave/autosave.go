/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package autosave persists document snapshots with debounce and versioning.
// Every distinct autosave bumps the minor version; an explicit milestone
// commit bumps the major version and resets minor to zero. The authoritative
// copy lives with the persistence collaborator behind the Store interface.
package autosave

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	applog "goscreenwriter/internal/log"
)

// Status is the save-state reported to the status-display collaborator.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Record kinds.
const (
	KindAutosave  = "autosave"
	KindMilestone = "milestone"
)

// Precondition failures surfaced synchronously to the caller.
var (
	ErrMissingID    = errors.New("document id is required before saving")
	ErrMissingTitle = errors.New("document title is required before saving")
	ErrNotFound     = errors.New("save record not found")
)

// SaveRecord is one persisted document version.
type SaveRecord struct {
	DocumentID  string
	Title       string
	Content     []byte
	Major       int
	Minor       int
	Kind        string
	Description string
	SavedAt     time.Time
}

// Version returns the "major.minor" string form, e.g. "2.7".
func (r SaveRecord) Version() string { return fmt.Sprintf("%d.%d", r.Major, r.Minor) }

// Store is the persistence collaborator contract. Load returns ErrNotFound
// (possibly wrapped) when no record exists for the document.
type Store interface {
	Save(ctx context.Context, rec SaveRecord) error
	Load(ctx context.Context, documentID string) (SaveRecord, error)
}

// Config tunes the saver. Zero durations fall back to the defaults.
type Config struct {
	Debounce      time.Duration // autosave delay after the last trigger
	StatusDisplay time.Duration // how long saved/error stays before idle
	StatusSink    func(Status)  // optional status-display collaborator
}

// Saver debounces persistence of document snapshots. Only the scheduling of
// the next save is cancellable; an in-flight save call is never cancelled
// mid-way, and a failed save waits for the next content change instead of
// retrying on its own.
type Saver struct {
	mu          sync.Mutex
	store       Store
	cfg         Config
	log         *slog.Logger
	docID       string
	title       string
	major       int
	minor       int
	lastSaved   []byte
	pending     []byte
	timer       *time.Timer
	statusTimer *time.Timer
	saves       int // persistence call counter, for diagnostics
}

// NewSaver creates a saver over the given store.
func NewSaver(store Store, cfg Config) *Saver {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 1500 * time.Millisecond
	}
	if cfg.StatusDisplay <= 0 {
		cfg.StatusDisplay = 1200 * time.Millisecond
	}
	return &Saver{store: store, cfg: cfg, log: applog.WithComponent("autosave")}
}

// SetDocument binds the saver to a document identity and version baseline.
func (s *Saver) SetDocument(id, title string, major, minor int, lastSaved []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docID = id
	s.title = title
	s.major = major
	s.minor = minor
	s.lastSaved = append([]byte(nil), lastSaved...)
}

// SetTitle updates the bound title.
func (s *Saver) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Version returns the current "major.minor" string.
func (s *Saver) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%d.%d", s.major, s.minor)
}

// Saves returns how many persistence calls were attempted.
func (s *Saver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Trigger schedules an autosave of the given content. Any pending timer is
// cancelled first, so only the most recent request survives the debounce
// window.
func (s *Saver) Trigger(content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append([]byte(nil), content...)
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.Error("autosave failed", slog.Any("err", err))
		}
	})
}

// Flush performs the pending autosave immediately. It is a no-op when the
// pending content equals the last saved state. Precondition failures are
// returned synchronously; transient store failures surface through the
// status sink and are retried by the next natural trigger.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending == nil || bytes.Equal(s.pending, s.lastSaved) {
		s.mu.Unlock()
		return nil
	}
	if err := s.preconditionsLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	rec := SaveRecord{
		DocumentID: s.docID,
		Title:      s.title,
		Content:    append([]byte(nil), s.pending...),
		Major:      s.major,
		Minor:      s.minor + 1,
		Kind:       KindAutosave,
		SavedAt:    time.Now().UTC(),
	}
	s.saves++
	s.setStatusLocked(StatusSaving)
	s.mu.Unlock()

	err := s.store.Save(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// lastSaved stays put so the next trigger retries the same diff.
		s.setStatusLocked(StatusError)
		s.scheduleIdleLocked()
		return fmt.Errorf("save version %s: %w", rec.Version(), err)
	}
	s.minor = rec.Minor
	s.lastSaved = rec.Content
	s.setStatusLocked(StatusSaved)
	s.scheduleIdleLocked()
	s.log.Debug("autosaved", slog.String("version", rec.Version()), slog.Int("bytes", len(rec.Content)))
	return nil
}

// CommitVersion persists the given content immediately as a milestone:
// major+1, minor reset to 0, tagged with the description. The debounce is
// bypassed and any pending autosave of the same content is absorbed.
func (s *Saver) CommitVersion(ctx context.Context, content []byte, description string) error {
	s.mu.Lock()
	if err := s.preconditionsLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	rec := SaveRecord{
		DocumentID:  s.docID,
		Title:       s.title,
		Content:     append([]byte(nil), content...),
		Major:       s.major + 1,
		Minor:       0,
		Kind:        KindMilestone,
		Description: description,
		SavedAt:     time.Now().UTC(),
	}
	s.saves++
	s.setStatusLocked(StatusSaving)
	s.mu.Unlock()

	err := s.store.Save(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.setStatusLocked(StatusError)
		s.scheduleIdleLocked()
		return fmt.Errorf("commit version %s: %w", rec.Version(), err)
	}
	s.major = rec.Major
	s.minor = 0
	s.lastSaved = rec.Content
	s.pending = append([]byte(nil), content...)
	s.setStatusLocked(StatusSaved)
	s.scheduleIdleLocked()
	s.log.Info("milestone committed", slog.String("version", rec.Version()), slog.String("desc", description))
	return nil
}

// Close cancels pending timers.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
}

func (s *Saver) preconditionsLocked() error {
	if s.docID == "" {
		return ErrMissingID
	}
	if s.title == "" {
		return ErrMissingTitle
	}
	return nil
}

func (s *Saver) setStatusLocked(st Status) {
	if s.cfg.StatusSink != nil {
		s.cfg.StatusSink(st)
	}
}

// scheduleIdleLocked reverts the visible status to idle after the display
// delay, cancel-and-reschedule like the save debounce.
func (s *Saver) scheduleIdleLocked() {
	if s.cfg.StatusSink == nil {
		return
	}
	if s.statusTimer != nil {
		s.statusTimer.Stop()
	}
	s.statusTimer = time.AfterFunc(s.cfg.StatusDisplay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.setStatusLocked(StatusIdle)
	})
}
