// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package sequencer issues the monotonically increasing identifiers
// handed out when entities are constructed without an explicit one:
// relation IDs, storage indices, action, notice and change IDs.
//
// Juju assigns these identifiers model-wide, so the default sequencer
// is process-wide too. Tests that need deterministic identifiers reset
// it between runs, or inject their own instance.
package sequencer

import (
	"strconv"
	"sync"
)

// Sequencer issues identifiers for the entity kinds that juju numbers
// model-wide. The zero value is ready to use and safe for concurrent
// access.
type Sequencer struct {
	mu           sync.Mutex
	relationID   int
	storageIndex int
	actionID     int
	noticeID     int
	changeID     int
}

// New returns a fresh Sequencer with all counters at their initial
// values.
func New() *Sequencer {
	return &Sequencer{}
}

// NextRelationID returns the next juju-wide relation ID, starting
// from 1.
func (s *Sequencer) NextRelationID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationID++
	return s.relationID
}

// NextStorageIndex returns the next storage index. Storage indices
// start at 0.
func (s *Sequencer) NextStorageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.storageIndex
	s.storageIndex++
	return cur
}

// NextActionID returns the next action ID. Juju currently numbers
// actions, but has used UUIDs in the past, so the ID is a string.
func (s *Sequencer) NextActionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionID++
	return strconv.Itoa(s.actionID)
}

// NextNoticeID returns the next Pebble notice ID, starting from "1".
func (s *Sequencer) NextNoticeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noticeID++
	return strconv.Itoa(s.noticeID)
}

// NextChangeID returns the next Pebble change ID, starting from 1.
func (s *Sequencer) NextChangeID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeID++
	return s.changeID
}

// Reset winds every counter back to its initial value.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationID = 0
	s.storageIndex = 0
	s.actionID = 0
	s.noticeID = 0
	s.changeID = 0
}

var defaultSequencer = New()

// Default returns the process-wide sequencer used by entity
// constructors that are not handed an explicit one.
func Default() *Sequencer {
	return defaultSequencer
}

// NextRelationID returns the next relation ID from the default
// sequencer.
func NextRelationID() int {
	return defaultSequencer.NextRelationID()
}

// NextStorageIndex returns the next storage index from the default
// sequencer.
func NextStorageIndex() int {
	return defaultSequencer.NextStorageIndex()
}

// NextActionID returns the next action ID from the default sequencer.
func NextActionID() string {
	return defaultSequencer.NextActionID()
}

// NextNoticeID returns the next notice ID from the default sequencer.
func NextNoticeID() string {
	return defaultSequencer.NextNoticeID()
}

// NextChangeID returns the next change ID from the default sequencer.
func NextChangeID() int {
	return defaultSequencer.NextChangeID()
}

// Reset winds the default sequencer back to its initial values.
func Reset() {
	defaultSequencer.Reset()
}
