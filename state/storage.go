// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
)

// Storage is one attached storage instance. Detached storage is not
// modelled: absence from the State means detached.
type Storage struct {
	// Name is the storage name from the charm metadata.
	Name string

	// Index distinguishes instances of the same storage name. The
	// (Name, Index) pair is the instance identity.
	Index int
}

// NewStorage returns an attached storage instance with the next free
// index.
func NewStorage(name string) *Storage {
	return NewStorageAt(name, sequencer.NextStorageIndex())
}

// NewStorageAt returns an attached storage instance with an explicit
// index.
func NewStorageAt(name string, index int) *Storage {
	return &Storage{
		Name:  name,
		Index: index,
	}
}

// AttachedEvent returns the storage-attached event for this
// instance.
func (s *Storage) AttachedEvent() *Event {
	return NewEvent(hooks.NormalizeName(s.Name)+hooks.StorageAttachedSuffix, WithStorage(s))
}

// DetachingEvent returns the storage-detaching event for this
// instance.
func (s *Storage) DetachingEvent() *Event {
	return NewEvent(hooks.NormalizeName(s.Name)+hooks.StorageDetachingSuffix, WithStorage(s))
}
