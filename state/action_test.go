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

type actionSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&actionSuite{})

func (s *actionSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	sequencer.Reset()
}

func (s *actionSuite) TestNewActionDefaults(c *gc.C) {
	action := state.NewAction(state.ActionArgs{Name: "do-backup"})

	c.Check(action.Name, gc.Equals, "do-backup")
	c.Check(action.Params, gc.NotNil)
	c.Check(action.ID, gc.Equals, "1")

	second := state.NewAction(state.ActionArgs{Name: "restore"})
	c.Check(second.ID, gc.Equals, "2")
}

func (s *actionSuite) TestEvent(c *gc.C) {
	action := state.NewAction(state.ActionArgs{
		Name:   "do-backup",
		Params: map[string]interface{}{"compression": "gzip"},
	})

	event := action.Event()
	c.Check(event.Name(), gc.Equals, "do_backup_action")
	c.Check(event.Kind(), gc.Equals, hooks.Action)
	c.Check(event.Action(), gc.Equals, action)
	c.Check(event.Prefix(), gc.Equals, "do_backup")
}
