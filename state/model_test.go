// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/utils/v4"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/state"
)

type modelSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&modelSuite{})

func (s *modelSuite) TestNewModelDefaults(c *gc.C) {
	model := state.NewModel(state.ModelArgs{})

	c.Check(model.Name, gc.Matches, `[a-z0-9]{20}`)
	c.Check(utils.IsValidUUIDString(model.UUID), jc.IsTrue)
	c.Check(model.Type, gc.Equals, state.ModelKubernetes)
	c.Check(model.CloudSpec, gc.IsNil)

	other := state.NewModel(state.ModelArgs{})
	c.Check(other.Name, gc.Not(gc.Equals), model.Name)
	c.Check(other.UUID, gc.Not(gc.Equals), model.UUID)
}

func (s *modelSuite) TestNewModelExplicit(c *gc.C) {
	model := state.NewModel(state.ModelArgs{
		Name: "prod",
		UUID: "deadbeef-0bad-400d-8000-4b1d0d06f00d",
		Type: state.ModelLXD,
	})
	c.Check(model.Name, gc.Equals, "prod")
	c.Check(model.UUID, gc.Equals, "deadbeef-0bad-400d-8000-4b1d0d06f00d")
	c.Check(model.Type, gc.Equals, state.ModelLXD)
}

func (s *modelSuite) TestNewCloudSpecDefaults(c *gc.C) {
	spec := state.NewCloudSpec(state.CloudSpecArgs{Type: "lxd"})
	c.Check(spec.Type, gc.Equals, "lxd")
	c.Check(spec.Name, gc.Equals, "localhost")

	named := state.NewCloudSpec(state.CloudSpecArgs{Type: "ec2", Name: "aws"})
	c.Check(named.Name, gc.Equals, "aws")
}
