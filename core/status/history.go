// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// Namespace identifies the entity a status record belongs to.
type Namespace struct {
	// Kind is the entity kind, "application" or "unit".
	Kind string
	// ID is the entity identifier, such as a unit name.
	ID string
}

// String returns the namespace as kind (id), or just the kind if no ID
// is set.
func (n Namespace) String() string {
	if n.ID == "" {
		return n.Kind
	}
	return n.Kind + " (" + n.ID + ")"
}

// Record is one status transition observed during a run.
type Record struct {
	Namespace Namespace
	Status    StatusInfo
	Time      time.Time
}

// History is an append-only register of status transitions. A run
// records every status the charm sets, in order, so tests can assert
// on the full trajectory rather than just the final value.
type History struct {
	mu      sync.Mutex
	clock   clock.Clock
	records []Record
}

// NewHistory returns a History stamping records with the given clock.
func NewHistory(clk clock.Clock) *History {
	return &History{clock: clk}
}

// RecordStatus appends a status transition for the given namespace.
func (h *History) RecordStatus(ns Namespace, s StatusInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, Record{
		Namespace: ns,
		Status:    s,
		Time:      h.clock.Now(),
	})
}

// All returns every record in insertion order.
func (h *History) All() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Namespace returns the statuses recorded for the given namespace, in
// insertion order.
func (h *History) Namespace(ns Namespace) []StatusInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []StatusInfo
	for _, rec := range h.records {
		if rec.Namespace == ns {
			out = append(out, rec.Status)
		}
	}
	return out
}
