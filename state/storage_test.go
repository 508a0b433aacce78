// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"github.com/juju/testing"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

type storageSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&storageSuite{})

func (s *storageSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	sequencer.Reset()
}

func (s *storageSuite) TestNewStorageAssignsIndexes(c *gc.C) {
	first := state.NewStorage("data")
	second := state.NewStorage("data")

	c.Check(first.Index, gc.Equals, 0)
	c.Check(second.Index, gc.Equals, 1)
}

func (s *storageSuite) TestNewStorageAt(c *gc.C) {
	storage := state.NewStorageAt("data", 7)
	c.Check(storage.Name, gc.Equals, "data")
	c.Check(storage.Index, gc.Equals, 7)
}

func (s *storageSuite) TestEventSugar(c *gc.C) {
	storage := state.NewStorage("my-data")

	attached := storage.AttachedEvent()
	c.Check(attached.Name(), gc.Equals, "my_data_storage_attached")
	c.Check(attached.Kind(), gc.Equals, hooks.Storage)
	c.Check(attached.Storage(), gc.Equals, storage)

	detaching := storage.DetachingEvent()
	c.Check(detaching.Name(), gc.Equals, "my_data_storage_detaching")
	c.Check(detaching.Storage(), gc.Equals, storage)
}
