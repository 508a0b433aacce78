// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"github.com/juju/testing"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/state"
)

type storedStateSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&storedStateSuite{})

func (s *storedStateSuite) TestNewStoredStateDefaults(c *gc.C) {
	stored := state.NewStoredState(state.StoredStateArgs{OwnerPath: "MyCharm"})

	c.Check(stored.Name, gc.Equals, "_stored")
	c.Check(stored.Content, gc.NotNil)
	c.Check(stored.DataTypeName, gc.Equals, "StoredStateData")
	c.Check(stored.HandlePath(), gc.Equals, "MyCharm/StoredStateData[_stored]")
}

func (s *storedStateSuite) TestHandlePathWithEmptyOwner(c *gc.C) {
	stored := state.NewStoredState(state.StoredStateArgs{})
	c.Check(stored.HandlePath(), gc.Equals, "/StoredStateData[_stored]")
}

func (s *storedStateSuite) TestHandlePathNestedOwner(c *gc.C) {
	stored := state.NewStoredState(state.StoredStateArgs{
		OwnerPath: "MyCharm/SomeLib",
		Name:      "counters",
	})
	c.Check(stored.HandlePath(), gc.Equals, "MyCharm/SomeLib/StoredStateData[counters]")
}

func (s *storedStateSuite) TestDeferredEventName(c *gc.C) {
	deferred := &state.DeferredEvent{HandlePath: "MyCharm/on/update_status[3]"}
	c.Check(deferred.Name(), gc.Equals, "update_status")

	deferred = &state.DeferredEvent{HandlePath: "MyCharm/on/start"}
	c.Check(deferred.Name(), gc.Equals, "start")
}
