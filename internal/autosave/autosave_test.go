/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu      sync.Mutex
	records []SaveRecord
	failSet bool
}

func (m *memStore) Save(_ context.Context, rec SaveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("backend unavailable")
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Load(_ context.Context, documentID string) (SaveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].DocumentID == documentID {
			return m.records[i], nil
		}
	}
	return SaveRecord{}, ErrNotFound
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memStore) last() SaveRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[len(m.records)-1]
}

func (m *memStore) setFail(v bool) {
	m.mu.Lock()
	m.failSet = v
	m.mu.Unlock()
}

func newTestSaver(store *memStore, sink func(Status)) *Saver {
	s := NewSaver(store, Config{Debounce: 20 * time.Millisecond, StatusDisplay: 20 * time.Millisecond, StatusSink: sink})
	s.SetDocument("doc-1", "The Long Night", 1, 0, nil)
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestDebounceCoalescesRapidTriggers(t *testing.T) {
	store := &memStore{}
	s := newTestSaver(store, nil)
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.Trigger([]byte{'v', byte('0' + i)})
	}
	waitFor(t, func() bool { return store.count() == 1 })
	// Give any stray timers a chance to misfire.
	time.Sleep(60 * time.Millisecond)
	if store.count() != 1 {
		t.Fatalf("persistence calls = %d, want 1", store.count())
	}
	if string(store.last().Content) != "v4" {
		t.Fatalf("saved content %q, want the last trigger's", store.last().Content)
	}
}

func TestIdenticalContentSkipsPersistence(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, Config{Debounce: time.Hour})
	s.SetDocument("doc-1", "t", 1, 3, []byte("same"))

	s.Trigger([]byte("same"))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("persistence calls = %d, want 0", store.count())
	}
	if s.Version() != "1.3" {
		t.Fatalf("version changed on no-op: %s", s.Version())
	}
}

func TestAutosaveBumpsMinor(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, Config{Debounce: time.Hour})
	s.SetDocument("doc-1", "t", 2, 6, nil)

	s.Trigger([]byte("draft"))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := store.last().Version(); got != "2.7" {
		t.Fatalf("record version %s, want 2.7", got)
	}
	if s.Version() != "2.7" {
		t.Fatalf("saver version %s, want 2.7", s.Version())
	}
}

func TestCommitVersionLaw(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, Config{Debounce: time.Hour})
	s.SetDocument("doc-1", "t", 2, 7, nil)

	if err := s.CommitVersion(context.Background(), []byte("final"), "first full draft"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	rec := store.last()
	if rec.Major != 3 || rec.Minor != 0 {
		t.Fatalf("milestone version %d.%d, want 3.0", rec.Major, rec.Minor)
	}
	if rec.Kind != KindMilestone || rec.Description != "first full draft" {
		t.Fatalf("milestone metadata %+v", rec)
	}
	if s.Version() != "3.0" {
		t.Fatalf("saver version %s", s.Version())
	}
}

func TestFailedSaveKeepsDiffForRetry(t *testing.T) {
	store := &memStore{}
	var statuses []Status
	var mu sync.Mutex
	s := NewSaver(store, Config{Debounce: time.Hour, StatusDisplay: 10 * time.Millisecond,
		StatusSink: func(st Status) { mu.Lock(); statuses = append(statuses, st); mu.Unlock() }})
	s.SetDocument("doc-1", "t", 1, 0, nil)

	store.setFail(true)
	s.Trigger([]byte("draft"))
	if err := s.Flush(context.Background()); err == nil {
		t.Fatalf("expected error from failing store")
	}
	if store.count() != 0 {
		t.Fatalf("record stored despite failure")
	}

	store.setFail(false)
	s.Trigger([]byte("draft"))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("retry did not persist")
	}
	if got := store.last().Version(); got != "1.1" {
		t.Fatalf("retry version %s, want 1.1", got)
	}

	mu.Lock()
	defer mu.Unlock()
	sawError := false
	for _, st := range statuses {
		if st == StatusError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("error status never reported: %v", statuses)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := &memStore{}
	var mu sync.Mutex
	var statuses []Status
	s := newTestSaver(store, func(st Status) { mu.Lock(); statuses = append(statuses, st); mu.Unlock() })
	defer s.Close()

	s.Trigger([]byte("draft"))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(statuses) >= 3
	})
	mu.Lock()
	defer mu.Unlock()
	if statuses[0] != StatusSaving || statuses[1] != StatusSaved || statuses[2] != StatusIdle {
		t.Fatalf("status sequence %v, want saving/saved/idle", statuses)
	}
}

func TestSavePreconditions(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, Config{Debounce: time.Hour})

	s.SetDocument("", "t", 1, 0, nil)
	s.Trigger([]byte("x"))
	if err := s.Flush(context.Background()); !errors.Is(err, ErrMissingID) {
		t.Fatalf("missing id: %v", err)
	}

	s.SetDocument("doc-1", "", 1, 0, nil)
	if err := s.CommitVersion(context.Background(), []byte("x"), "d"); !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("missing title: %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("store touched despite precondition failure")
	}
}
